package models

import (
	"time"

	"gorm.io/datatypes"
)

// RubricAspect is a single weighted evaluation criterion for one question.
type RubricAspect struct {
	Aspect    string  `json:"aspect"`
	Weight    float64 `json:"weight"`
	Excellent string  `json:"excellent"`
	Good      string  `json:"good"`
	NeedsWork string  `json:"needs_work"`
}

// Question is one prompt within an interview. Answer fields are populated
// during submission and become immutable once the owning interview reaches a
// terminal status.
type Question struct {
	ID               uint                                      `gorm:"primaryKey" json:"id"`
	InterviewID      uint                                      `gorm:"not null;index" json:"interview_id"`
	Position         int                                       `gorm:"not null" json:"position"`
	Prompt           string                                    `gorm:"type:text;not null" json:"prompt"`
	Category         string                                    `gorm:"size:64" json:"category"`
	Difficulty       string                                    `gorm:"size:32" json:"difficulty"`
	EstimatedMinutes int                                       `gorm:"not null;default:5" json:"estimated_minutes"`
	Rubric           datatypes.JSONType[[]RubricAspect]        `json:"rubric"`
	CandidateAnswer  string                                    `gorm:"type:text" json:"candidate_answer,omitempty"`
	AnsweredAt       *time.Time                                `json:"answered_at"`
	TimeSpentSeconds int                                       `json:"time_spent_seconds"`
	AIScore          *float64                                  `json:"ai_score"`
	AIFeedback       string                                    `gorm:"type:text" json:"ai_feedback,omitempty"`
	AIBreakdown      datatypes.JSONMap                         `gorm:"type:json" json:"ai_breakdown,omitempty"`
	EvaluationStatus string                                    `gorm:"size:32;not null;default:pending" json:"evaluation_status"`
	CreatedAt        time.Time                                 `json:"created_at"`
	UpdatedAt        time.Time                                 `json:"updated_at"`
}

// Per-question evaluation outcomes. A defaulted evaluation means the scoring
// service was unavailable and a neutral score was substituted; reviewers see
// the distinction.
const (
	EvaluationStatusPending   = "pending"
	EvaluationStatusScored    = "scored"
	EvaluationStatusDefaulted = "defaulted"
)

// IsAnswered reports whether the candidate provided an answer.
func (q Question) IsAnswered() bool {
	return q.CandidateAnswer != ""
}
