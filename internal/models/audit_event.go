package models

import "time"

// AuditPhase marks where in an intercepted call an event was written.
type AuditPhase string

const (
	AuditStart AuditPhase = "START"
	AuditEnd   AuditPhase = "END"
	AuditAuth  AuditPhase = "AUTH"
)

// AuditEvent is an append-only record of an intercepted call or login attempt.
type AuditEvent struct {
	ID        uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Token     string     `json:"token" gorm:"index;type:varchar(16);not null"`
	Phase     AuditPhase `json:"phase" gorm:"type:varchar(8);not null"`
	Site      string     `json:"site" gorm:"type:varchar(255)"`
	Identity  string     `json:"identity" gorm:"index;type:varchar(255)"`
	Payload   string     `json:"payload"`
	CreatedAt time.Time  `json:"createdAt"`
}
