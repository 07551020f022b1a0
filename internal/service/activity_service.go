package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
)

// ActivityEntry captures the details required to persist one audit record.
type ActivityEntry struct {
	CandidateID uint
	Type        string
	OldValue    string
	NewValue    string
	Metadata    map[string]interface{}
	Notes       string
}

// ActivityRecorder defines behaviour for appending to the candidate audit
// trail. Records are append-only; failures are logged but never block the
// state change that produced them.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
	BatchRecord(ctx context.Context, entries []ActivityEntry) error
}

// ActivityService exposes methods to append and query the audit trail.
type ActivityService interface {
	ActivityRecorder
	ListForCandidate(ctx context.Context, candidateID uint, page, pageSize int, activityType string) (dto.CandidateActivityListResponse, error)
}

type activityService struct {
	repo   repository.CandidateActivityRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.CandidateActivityRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	model, err := buildActivityModel(entry)
	if err != nil {
		return err
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Uint("candidate_id", entry.CandidateID).Msg("failed to persist activity record")
		return err
	}

	return nil
}

func (s *activityService) BatchRecord(ctx context.Context, entries []ActivityEntry) error {
	records := make([]models.CandidateActivity, 0, len(entries))
	for _, entry := range entries {
		model, err := buildActivityModel(entry)
		if err != nil {
			return err
		}
		records = append(records, model)
	}

	if err := s.repo.BatchCreate(ctx, records); err != nil {
		s.logger.Error().Err(err).Int("count", len(records)).Msg("failed to persist activity batch")
		return err
	}

	return nil
}

func (s *activityService) ListForCandidate(ctx context.Context, candidateID uint, page, pageSize int, activityType string) (dto.CandidateActivityListResponse, error) {
	filter := repository.CandidateActivityFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     strings.TrimSpace(activityType),
	}

	entries, total, err := s.repo.ListByCandidate(ctx, candidateID, filter)
	if err != nil {
		return dto.CandidateActivityListResponse{}, err
	}

	responses := make([]dto.CandidateActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewCandidateActivityResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(page, 1),
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.CandidateActivityListResponse{Items: responses, Pagination: pagination}, nil
}

func buildActivityModel(entry ActivityEntry) (models.CandidateActivity, error) {
	if entry.CandidateID == 0 {
		return models.CandidateActivity{}, fmt.Errorf("candidate id is required")
	}
	if strings.TrimSpace(entry.Type) == "" {
		return models.CandidateActivity{}, fmt.Errorf("activity type is required")
	}

	return models.CandidateActivity{
		CandidateID: entry.CandidateID,
		Type:        strings.ToLower(strings.TrimSpace(entry.Type)),
		OldValue:    entry.OldValue,
		NewValue:    entry.NewValue,
		Metadata:    sanitizeMetadata(entry.Metadata),
		Notes:       entry.Notes,
	}, nil
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
