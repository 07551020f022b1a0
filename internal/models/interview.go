package models

import (
	"time"

	"gorm.io/datatypes"
)

// Interview represents a scheduled, token-gated AI interview for a candidate
// applying to a job. The access token is the only credential for the public
// candidate-facing flow.
type Interview struct {
	ID                uint                         `gorm:"primaryKey" json:"id"`
	CandidateID       uint                         `gorm:"not null;index:idx_interviews_candidate_job" json:"candidate_id"`
	JobID             uint                         `gorm:"not null;index:idx_interviews_candidate_job" json:"job_id"`
	AccessToken       string                       `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Status            string                       `gorm:"size:32;not null;index" json:"status"`
	ScheduledAt       *time.Time                   `json:"scheduled_at"`
	ExpiresAt         *time.Time                   `json:"expires_at"`
	StartedAt         *time.Time                   `json:"started_at"`
	CompletedAt       *time.Time                   `json:"completed_at"`
	DurationMinutes   int                          `gorm:"not null;default:45" json:"duration_minutes"`
	QuestionsAnswered int                          `gorm:"not null;default:0" json:"questions_answered"`
	OverallScore      *int                         `json:"overall_score"`
	Recommendation    string                       `gorm:"size:32" json:"recommendation,omitempty"`
	Summary           string                       `gorm:"type:text" json:"summary,omitempty"`
	Strengths         datatypes.JSONSlice[string]  `json:"strengths,omitempty"`
	Concerns          datatypes.JSONSlice[string]  `json:"concerns,omitempty"`
	ReviewedAt        *time.Time                   `json:"reviewed_at"`
	CreatedAt         time.Time                    `json:"created_at"`
	UpdatedAt         time.Time                    `json:"updated_at"`
	Candidate         Candidate                    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"candidate"`
	Job               Job                          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"job"`
	Questions         []Question                   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// Interview lifecycle statuses.
const (
	InterviewStatusPending    = "pending"
	InterviewStatusScheduled  = "scheduled"
	InterviewStatusReady      = "ready"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"
	InterviewStatusExpired    = "expired"
	InterviewStatusMissed     = "missed"
	InterviewStatusAbandoned  = "abandoned"
	InterviewStatusCancelled  = "cancelled"
)

// Recommendation tiers derived from the aggregated score.
const (
	RecommendationStrongYes = "strong_yes"
	RecommendationYes       = "yes"
	RecommendationMaybe     = "maybe"
	RecommendationNo        = "no"
	RecommendationStrongNo  = "strong_no"
)

// statusTransitions is the directed transition graph of the interview
// lifecycle. Terminal statuses have no outgoing edges; the review flag on a
// completed interview is orthogonal and not part of this graph.
var statusTransitions = map[string][]string{
	InterviewStatusPending:    {InterviewStatusReady, InterviewStatusExpired, InterviewStatusCancelled},
	InterviewStatusScheduled:  {InterviewStatusScheduled, InterviewStatusReady, InterviewStatusMissed, InterviewStatusExpired, InterviewStatusCancelled},
	InterviewStatusReady:      {InterviewStatusScheduled, InterviewStatusInProgress, InterviewStatusMissed, InterviewStatusExpired, InterviewStatusCancelled},
	InterviewStatusInProgress: {InterviewStatusCompleted, InterviewStatusAbandoned},
}

var terminalStatuses = map[string]struct{}{
	InterviewStatusCompleted: {},
	InterviewStatusExpired:   {},
	InterviewStatusMissed:    {},
	InterviewStatusAbandoned: {},
	InterviewStatusCancelled: {},
}

// CanTransition reports whether the lifecycle graph permits moving from one
// status to another.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether the given status permits no further
// transitions.
func IsTerminalStatus(status string) bool {
	_, ok := terminalStatuses[status]
	return ok
}

// IsTerminal reports whether the interview reached a terminal status.
func (i Interview) IsTerminal() bool {
	return IsTerminalStatus(i.Status)
}

// IsExpiredAt reports whether the interview's expiry has passed.
func (i Interview) IsExpiredAt(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// MinutesUntilStart returns how many whole minutes remain before the
// candidate may start, given the early-start grace period. Zero means the
// window is open. Interviews without a scheduled time may start immediately.
func (i Interview) MinutesUntilStart(now time.Time, grace time.Duration) int {
	if i.ScheduledAt == nil {
		return 0
	}
	opensAt := i.ScheduledAt.Add(-grace)
	if !now.Before(opensAt) {
		return 0
	}
	remaining := opensAt.Sub(now)
	minutes := int(remaining / time.Minute)
	if remaining%time.Minute > 0 {
		minutes++
	}
	return minutes
}

// RecommendationForScore maps an overall score (0-100) onto the five-tier
// hiring verdict. Deterministic and pure.
func RecommendationForScore(score int) string {
	switch {
	case score >= 85:
		return RecommendationStrongYes
	case score >= 70:
		return RecommendationYes
	case score >= 55:
		return RecommendationMaybe
	case score >= 40:
		return RecommendationNo
	default:
		return RecommendationStrongNo
	}
}
