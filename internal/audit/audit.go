// Package audit wraps service calls with START/END log lines and records every
// login attempt. Wrapped calls never observe the interceptor: results and
// errors pass through untouched and audit failures are only logged.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"storefront/internal/identity"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenLength is the number of hex characters in a correlation token.
const TokenLength = 6

const anonymous = "anonymous"

// Principal is implemented by credential-carrying arguments so that calls made
// before a session exists can still be attributed.
type Principal interface {
	AuditPrincipal() string
}

// Redactor lets an argument replace itself with a value that is safe to log.
type Redactor interface {
	Redacted() any
}

// Interceptor is stateless across calls; one instance serves all requests.
type Interceptor struct {
	log   *zap.Logger
	store repositories.AuditRepository
	now   func() time.Time
}

// NewInterceptor creates an Interceptor. store may be nil to only log.
func NewInterceptor(log *zap.Logger, store repositories.AuditRepository) *Interceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interceptor{log: log, store: store, now: time.Now}
}

// NewToken returns a short random correlation token.
func NewToken() string {
	id := uuid.New().String()
	return id[len(id)-TokenLength:]
}

// Site renders the label of an operation as "<package>.<Type>:<Method>()".
func Site(target any, method string) string {
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return method + "()"
	}
	return fmt.Sprintf("%s:%s()", t.String(), method)
}

// Call runs fn as the auditable operation target.method invoked with args.
// A START line is written before fn and an END line only if fn succeeds.
func Call[T any](ctx context.Context, i *Interceptor, target any, method string, args []any, fn func() (T, error)) (T, error) {
	if i == nil {
		return fn()
	}

	token := NewToken()
	site := Site(target, method)
	who := resolveIdentity(ctx, args)
	payload := serialize(args)

	i.log.Info("audit",
		zap.String("token", token),
		zap.String("phase", string(models.AuditStart)),
		zap.String("site", site),
		zap.String("identity", who),
		zap.String("args", payload),
	)
	i.record(token, models.AuditStart, site, who, payload)

	result, err := fn()
	if err != nil {
		return result, err
	}

	response := serialize(result)
	i.log.Info("audit",
		zap.String("token", token),
		zap.String("phase", string(models.AuditEnd)),
		zap.String("site", site),
		zap.String("identity", who),
		zap.String("response", response),
	)
	i.record(token, models.AuditEnd, site, who, response)
	return result, nil
}

// Run is Call for operations that only return an error.
func Run(ctx context.Context, i *Interceptor, target any, method string, args []any, fn func() error) error {
	_, err := Call(ctx, i, target, method, args, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Authentication records a login attempt before credentials are verified.
// The claimed identity comes from the first argument. It never fails or panics.
func (i *Interceptor) Authentication(target any, method string, args ...any) {
	if i == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			i.log.Warn("audit: authentication logging failed", zap.Any("panic", r))
		}
	}()

	token := NewToken()
	site := Site(target, method)
	claimed := anonymous
	if len(args) > 0 {
		claimed = principalOf(args[0])
	}
	payload := serialize(args)

	i.log.Info("audit",
		zap.String("token", token),
		zap.String("phase", string(models.AuditAuth)),
		zap.String("site", site),
		zap.String("identity", claimed),
		zap.String("args", payload),
	)
	i.record(token, models.AuditAuth, site, claimed, payload)
}

// Events returns the stored events of one correlation token.
func (i *Interceptor) Events(token string) ([]models.AuditEvent, error) {
	if i == nil || i.store == nil {
		return nil, nil
	}
	return i.store.GetByToken(token)
}

// record appends an event; failures are logged and swallowed.
func (i *Interceptor) record(token string, phase models.AuditPhase, site, who, payload string) {
	if i.store == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			i.log.Warn("audit: event store panicked", zap.String("token", token), zap.Any("panic", r))
		}
	}()

	err := i.store.Append(&models.AuditEvent{
		Token:     token,
		Phase:     phase,
		Site:      site,
		Identity:  who,
		Payload:   payload,
		CreatedAt: i.now(),
	})
	if err != nil {
		i.log.Warn("audit: failed to store event",
			zap.String("token", token),
			zap.String("phase", string(phase)),
			zap.Error(err),
		)
	}
}

func resolveIdentity(ctx context.Context, args []any) string {
	if id, ok := identity.From(ctx); ok {
		return id.Username
	}
	if len(args) > 0 {
		return principalOf(args[0])
	}
	return anonymous
}

func principalOf(arg any) string {
	if p, ok := arg.(Principal); ok {
		if name := p.AuditPrincipal(); name != "" {
			return name
		}
	}
	return anonymous
}

func serialize(v any) string {
	if args, ok := v.([]any); ok {
		safe := make([]any, len(args))
		for idx, a := range args {
			safe[idx] = redact(a)
		}
		v = safe
	} else {
		v = redact(v)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<unserializable: %v>", err)
	}
	return string(b)
}

func redact(v any) any {
	if r, ok := v.(Redactor); ok {
		return r.Redacted()
	}
	return v
}
