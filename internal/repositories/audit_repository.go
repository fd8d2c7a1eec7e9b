package repositories

import (
	"fmt"
	"storefront/internal/models"

	"gorm.io/gorm"
)

// AuditRepository is the append-only store for audit events.
type AuditRepository interface {
	Append(event *models.AuditEvent) error
	GetByToken(token string) ([]models.AuditEvent, error)
}

// GORMAuditRepository is a GORM implementation of AuditRepository.
type GORMAuditRepository struct {
	db *gorm.DB
}

// NewGORMAuditRepository creates a new instance of GORMAuditRepository.
func NewGORMAuditRepository(db *gorm.DB) *GORMAuditRepository {
	return &GORMAuditRepository{db: db}
}

// Append inserts event. Existing events are never touched.
func (r *GORMAuditRepository) Append(event *models.AuditEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// GetByToken returns the events sharing a correlation token in write order.
func (r *GORMAuditRepository) GetByToken(token string) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	if err := r.db.Where("token = ?", token).Order("id").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit events for token %s: %w", token, err)
	}
	return events, nil
}
