package models

import (
	"time"

	"gorm.io/datatypes"
)

// CandidateActivity is an append-only audit record of pipeline and interview
// events for one candidate. Rows are never mutated or deleted.
type CandidateActivity struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	CandidateID uint              `gorm:"not null;index" json:"candidate_id"`
	Type        string            `gorm:"size:64;not null" json:"type"`
	OldValue    string            `gorm:"size:255" json:"old_value,omitempty"`
	NewValue    string            `gorm:"size:255" json:"new_value,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	Notes       string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Activity types written by the interview lifecycle.
const (
	ActivityInterviewScheduled   = "interview_scheduled"
	ActivityInterviewRescheduled = "interview_rescheduled"
	ActivityInterviewStarted     = "interview_started"
	ActivityInterviewCompleted   = "interview_completed"
	ActivityInterviewMissed      = "interview_missed"
	ActivityInterviewAbandoned   = "interview_abandoned"
	ActivityInterviewExpired     = "interview_expired"
	ActivityInterviewCancelled   = "interview_cancelled"
	ActivityStageChanged         = "stage_changed"
)
