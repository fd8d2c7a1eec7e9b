package repositories

import (
	"sync"
	"time"

	"storefront/internal/models"
)

// MemoryAuditRepository is an in-memory implementation of AuditRepository.
// It is used when audit events do not need to survive a restart.
type MemoryAuditRepository struct {
	events []models.AuditEvent
	mu     sync.RWMutex
}

// NewMemoryAuditRepository creates a new instance of MemoryAuditRepository.
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

// Append stores a copy of event and assigns its ID.
func (r *MemoryAuditRepository) Append(event *models.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = uint(len(r.events) + 1)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, *event)
	return nil
}

// GetByToken returns the events sharing a correlation token.
func (r *MemoryAuditRepository) GetByToken(token string) ([]models.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.AuditEvent
	for _, e := range r.events {
		if e.Token == token {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every stored event in write order.
func (r *MemoryAuditRepository) All() []models.AuditEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AuditEvent, len(r.events))
	copy(out, r.events)
	return out
}
