package models

import (
	"time"

	"gorm.io/datatypes"
)

// OutboxEvent is a persisted side effect awaiting relay to the message bus.
// Events are written in the same transaction scope as the state change that
// produced them and delivered at-least-once; consumers must be idempotent on
// EventID.
type OutboxEvent struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	EventID      string            `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	Subject      string            `gorm:"size:128;not null" json:"subject"`
	Payload      datatypes.JSONMap `gorm:"type:json" json:"payload"`
	Attempts     int               `gorm:"not null;default:0" json:"attempts"`
	DispatchedAt *time.Time        `json:"dispatched_at"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Outbox subjects published by the interview lifecycle.
const (
	SubjectInterviewScheduled = "hireflow.interview.scheduled"
	SubjectInterviewCompleted = "hireflow.interview.completed"
	SubjectInterviewMissed    = "hireflow.interview.missed"
	SubjectInterviewAbandoned = "hireflow.interview.abandoned"
	SubjectInterviewCancelled = "hireflow.interview.cancelled"
)
