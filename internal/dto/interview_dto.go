package dto

import (
	"time"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

// ScheduleInterviewRequest describes the payload for scheduling an interview.
// An absent scheduled_at means the interview may start immediately.
type ScheduleInterviewRequest struct {
	CandidateID     uint    `json:"candidate_id" validate:"required"`
	JobID           uint    `json:"job_id" validate:"required"`
	ScheduledAt     *string `json:"scheduled_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DurationMinutes int     `json:"duration_minutes" validate:"omitempty,min=15,max=180"`
	SendInvite      bool    `json:"send_immediate_invite"`
	CustomMessage   string  `json:"custom_message" validate:"omitempty,max=2000"`
	Timezone        string  `json:"timezone" validate:"omitempty,max=64"`
}

// RescheduleInterviewRequest moves a scheduled interview to a new time.
type RescheduleInterviewRequest struct {
	ScheduledAt string `json:"scheduled_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// InterviewResponse is the serialized representation returned to staff.
type InterviewResponse struct {
	ID                uint       `json:"id"`
	CandidateID       uint       `json:"candidate_id"`
	CandidateName     string     `json:"candidate_name,omitempty"`
	JobID             uint       `json:"job_id"`
	JobTitle          string     `json:"job_title,omitempty"`
	Status            string     `json:"status"`
	ScheduledAt       *time.Time `json:"scheduled_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
	StartedAt         *time.Time `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	DurationMinutes   int        `json:"duration_minutes"`
	QuestionsAnswered int        `json:"questions_answered"`
	OverallScore      *int       `json:"overall_score"`
	Recommendation    string     `json:"recommendation,omitempty"`
	Summary           string     `json:"summary,omitempty"`
	Strengths         []string   `json:"strengths,omitempty"`
	Concerns          []string   `json:"concerns,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ScheduleInterviewResponse carries the created interview and its public link.
type ScheduleInterviewResponse struct {
	Interview          InterviewResponse `json:"interview"`
	PublicLink         string            `json:"public_link"`
	QuestionsGenerated bool              `json:"questions_generated"`
}

// InterviewListRequest filters the admin interview listing.
type InterviewListRequest struct {
	CandidateID *uint   `json:"candidate_id"`
	JobID       *uint   `json:"job_id"`
	Status      *string `json:"status"`
	Page        int     `json:"page"`
	PageSize    int     `json:"page_size"`
}

// InterviewListResponse is a paged collection of interviews.
type InterviewListResponse struct {
	Items      []InterviewResponse `json:"items"`
	Pagination PaginationMeta      `json:"pagination"`
}

// PaginationMeta describes paging information for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewInterviewResponse converts a model into a DTO.
func NewInterviewResponse(model models.Interview) InterviewResponse {
	response := InterviewResponse{
		ID:                model.ID,
		CandidateID:       model.CandidateID,
		JobID:             model.JobID,
		Status:            model.Status,
		ScheduledAt:       model.ScheduledAt,
		ExpiresAt:         model.ExpiresAt,
		StartedAt:         model.StartedAt,
		CompletedAt:       model.CompletedAt,
		DurationMinutes:   model.DurationMinutes,
		QuestionsAnswered: model.QuestionsAnswered,
		OverallScore:      model.OverallScore,
		Recommendation:    model.Recommendation,
		Summary:           model.Summary,
		Strengths:         []string(model.Strengths),
		Concerns:          []string(model.Concerns),
		ReviewedAt:        model.ReviewedAt,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}

	if model.Candidate.ID != 0 {
		response.CandidateName = model.Candidate.Name
	}
	if model.Job.ID != 0 {
		response.JobTitle = model.Job.Title
	}

	return response
}

// NewInterviewResponseSlice converts a slice of models into DTOs.
func NewInterviewResponseSlice(interviews []models.Interview) []InterviewResponse {
	responses := make([]InterviewResponse, 0, len(interviews))
	for _, interview := range interviews {
		responses = append(responses, NewInterviewResponse(interview))
	}

	return responses
}
