package dto

import (
	"time"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

// PreflightResponse is the read-only "can I start" projection for the public
// candidate flow. It never mutates interview state.
type PreflightResponse struct {
	CanStart          bool       `json:"can_start"`
	Reason            string     `json:"reason,omitempty"`
	Status            string     `json:"status"`
	ScheduledAt       *time.Time `json:"scheduled_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
	MinutesUntilStart int        `json:"minutes_until_start,omitempty"`
}

// QuestionView is the candidate-facing projection of a question; rubric and
// evaluation fields are withheld.
type QuestionView struct {
	ID               uint   `json:"id"`
	Position         int    `json:"position"`
	Prompt           string `json:"prompt"`
	Category         string `json:"category"`
	Difficulty       string `json:"difficulty"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Answered         bool   `json:"answered"`
}

// StartInterviewRequest carries the optional force flag for staff-assisted
// early starts.
type StartInterviewRequest struct {
	ForceStart bool `json:"force_start"`
}

// StartInterviewResponse returns the material the candidate needs to begin.
type StartInterviewResponse struct {
	InterviewID     uint           `json:"interview_id"`
	Questions       []QuestionView `json:"questions"`
	DurationMinutes int            `json:"duration_minutes"`
	ExpiresAt       *time.Time     `json:"expires_at"`
}

// SaveAnswerRequest persists one answer draft.
type SaveAnswerRequest struct {
	Answer           string `json:"answer" validate:"required"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"omitempty,min=0"`
}

// SaveAnswerResponse acknowledges a durable answer write.
type SaveAnswerResponse struct {
	QuestionID        uint      `json:"question_id"`
	QuestionsAnswered int       `json:"questions_answered"`
	SavedAt           time.Time `json:"saved_at"`
}

// SubmittedAnswer is one answer in a final submission.
type SubmittedAnswer struct {
	QuestionID       uint   `json:"question_id" validate:"required"`
	Answer           string `json:"answer"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"omitempty,min=0"`
}

// SubmitInterviewRequest finalizes the interview with all answers.
type SubmitInterviewRequest struct {
	Answers []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

// SubmitInterviewResponse reports the final verdict.
type SubmitInterviewResponse struct {
	InterviewID    uint   `json:"interview_id"`
	Status         string `json:"status"`
	OverallScore   int    `json:"overall_score"`
	Recommendation string `json:"recommendation"`
	Summary        string `json:"summary"`
}

// NewQuestionView converts a model into its candidate-facing projection.
func NewQuestionView(model models.Question) QuestionView {
	return QuestionView{
		ID:               model.ID,
		Position:         model.Position,
		Prompt:           model.Prompt,
		Category:         model.Category,
		Difficulty:       model.Difficulty,
		EstimatedMinutes: model.EstimatedMinutes,
		Answered:         model.IsAnswered(),
	}
}

// NewQuestionViewSlice converts a slice of questions into views.
func NewQuestionViewSlice(questions []models.Question) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, NewQuestionView(question))
	}

	return views
}
