package dto

import (
	"time"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

// CandidateActivityResponse is one audit trail entry.
type CandidateActivityResponse struct {
	ID          uint                   `json:"id"`
	CandidateID uint                   `json:"candidate_id"`
	Type        string                 `json:"type"`
	OldValue    string                 `json:"old_value,omitempty"`
	NewValue    string                 `json:"new_value,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Notes       string                 `json:"notes,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// CandidateActivityListResponse is a paged activity feed.
type CandidateActivityListResponse struct {
	Items      []CandidateActivityResponse `json:"items"`
	Pagination PaginationMeta              `json:"pagination"`
}

// NewCandidateActivityResponse converts a model into a DTO.
func NewCandidateActivityResponse(model models.CandidateActivity) CandidateActivityResponse {
	return CandidateActivityResponse{
		ID:          model.ID,
		CandidateID: model.CandidateID,
		Type:        model.Type,
		OldValue:    model.OldValue,
		NewValue:    model.NewValue,
		Metadata:    model.Metadata,
		Notes:       model.Notes,
		CreatedAt:   model.CreatedAt,
	}
}
