package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() *config.Config {
	return &config.Config{
		AppPort:        ":0",
		AppEnv:         "test",
		DatabaseDriver: "sqlite",
		DatabaseDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		JWTSecret:      "test_jwt_secret",
		TokenTTL:       time.Hour,
		LoginRateLimit: 1,
		LoginRateBurst: 1,
		SeedCatalog:    true,
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) (*application, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	a, err := newApplication(cfg, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.close() })
	return a, logs
}

func get(t *testing.T, a *application, path string) (int, string) {
	t.Helper()
	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthCheck(t *testing.T) {
	a, _ := newTestApplication(t, testConfig())

	status, body := get(t, a, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"status":"healthy"`)
	assert.Contains(t, body, `"rabbitmq":"disabled"`)
	assert.Nil(t, a.mq)
}

func TestSeededCatalogIsPublic(t *testing.T) {
	a, logs := newTestApplication(t, testConfig())

	status, body := get(t, a, "/api/v1/products")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Chanel No 5")
	assert.Equal(t, 4, logs.FilterMessage("seeded product").Len())
	assert.Equal(t, 1, logs.FilterMessage("HTTP Request").FilterField(zap.String("path", "/api/v1/products")).Len())

	// Seeding an already populated catalog is a no-op.
	seedCatalog(repositories.NewGORMProductRepository(a.db), a.log)
	assert.Equal(t, 4, logs.FilterMessage("seeded product").Len())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a, _ := newTestApplication(t, testConfig())

	for _, path := range []string{"/api/v1/cart", "/api/v1/orders/mine", "/api/v1/users"} {
		status, _ := get(t, a, path)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}

	status, body := get(t, a, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "message")
}

func TestLoginIsRateLimited(t *testing.T) {
	a, _ := newTestApplication(t, testConfig())

	var codes []int
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"ghost","password":"whatever"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := a.app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestOrderEventHandler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handle := orderEventHandler(zap.New(core))

	err := handle(rabbitmq.OrderPlacedKey, []byte(`{"orderId":3,"username":"alice","totalPrice":150,"productIds":["a","b"]}`))
	require.NoError(t, err)
	entries := logs.FilterMessage("order event received").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].ContextMap()["username"])
	assert.EqualValues(t, 2, entries[0].ContextMap()["items"])

	assert.Error(t, handle(rabbitmq.OrderPlacedKey, []byte("not json")))
	assert.NoError(t, handle("order.cancelled", []byte("ignored")))
}

func TestNewApplicationRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseDriver = "oracle"
	_, err := newApplication(cfg, zap.NewNop())
	assert.Error(t, err)
}
