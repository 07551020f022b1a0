package models

import "time"

// Candidate represents an applicant moving through the hiring pipeline.
type Candidate struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone            string    `gorm:"size:32" json:"phone,omitempty"`
	Stage            string    `gorm:"size:32;not null;default:applied" json:"stage"`
	ProfileSummary   string    `gorm:"type:text" json:"profile_summary,omitempty"`
	InterviewScore   *int      `json:"interview_score"`
	InterviewSummary string    `gorm:"type:text" json:"interview_summary,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Pipeline stages in their fixed forward ordering. Stage progression is its
// own small state machine, independent of the interview lifecycle.
const (
	StageApplied   = "applied"
	StageScreening = "screening"
	StageInterview = "interview"
	StageOffer     = "offer"
	StageHired     = "hired"
)

var stageRank = map[string]int{
	StageApplied:   0,
	StageScreening: 1,
	StageInterview: 2,
	StageOffer:     3,
	StageHired:     4,
}

// StageRank returns the position of a stage in the pipeline ordering, or -1
// for unknown stages.
func StageRank(stage string) int {
	rank, ok := stageRank[stage]
	if !ok {
		return -1
	}
	return rank
}

// AdvanceStage returns the later of the two stages. Progression is
// advance-only: a target earlier than the current stage never moves the
// candidate backward. Unknown stages are ignored.
func AdvanceStage(current, target string) string {
	currentRank := StageRank(current)
	targetRank := StageRank(target)
	if targetRank < 0 {
		return current
	}
	if targetRank > currentRank {
		return target
	}
	return current
}
