package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
)

// AccessService gates candidate access to an interview. The public link puts
// the access token in the route itself; staff tooling uses the numeric id
// plus a token query parameter. Both failure shapes collapse into the same
// ErrInvalidToken so callers cannot probe which part was wrong.
type AccessService interface {
	Authorize(ctx context.Context, routeID, token string) (models.Interview, error)
	Preflight(ctx context.Context, routeID, token string) (dto.PreflightResponse, error)
	Start(ctx context.Context, routeID, token string, forceStart bool) (dto.StartInterviewResponse, error)
}

type accessService struct {
	interviews repository.InterviewRepository
	questions  repository.QuestionRepository
	activity   ActivityRecorder
	logger     zerolog.Logger
	now        func() time.Time
	policy     LifecyclePolicy
}

// NewAccessService constructs an AccessService instance.
func NewAccessService(interviews repository.InterviewRepository, questions repository.QuestionRepository, activity ActivityRecorder, logger zerolog.Logger, policy LifecyclePolicy) AccessService {
	return &accessService{
		interviews: interviews,
		questions:  questions,
		activity:   activity,
		logger:     logger.With().Str("component", "access_service").Logger(),
		now:        time.Now,
		policy:     policy,
	}
}

func (s *accessService) Authorize(ctx context.Context, routeID, token string) (models.Interview, error) {
	routeID = strings.TrimSpace(routeID)
	token = strings.TrimSpace(token)

	if token == "" {
		return s.lookupByToken(ctx, routeID)
	}

	return s.lookupByIDAndToken(ctx, routeID, token)
}

// lookupByToken serves the public-link pattern where the route segment is the
// bearer token itself.
func (s *accessService) lookupByToken(ctx context.Context, token string) (models.Interview, error) {
	if token == "" {
		return models.Interview{}, ErrInvalidToken
	}

	interview, err := s.interviews.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Interview{}, ErrInvalidToken
		}
		return models.Interview{}, err
	}

	return interview, nil
}

// lookupByIDAndToken serves the internal pattern of a numeric interview id
// accompanied by the token as a query parameter.
func (s *accessService) lookupByIDAndToken(ctx context.Context, routeID, token string) (models.Interview, error) {
	id, err := strconv.ParseUint(routeID, 10, 64)
	if err != nil {
		return models.Interview{}, ErrInvalidToken
	}

	interview, err := s.interviews.GetByIDAndToken(ctx, uint(id), token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Interview{}, ErrInvalidToken
		}
		return models.Interview{}, err
	}

	return interview, nil
}

func (s *accessService) Preflight(ctx context.Context, routeID, token string) (dto.PreflightResponse, error) {
	interview, err := s.Authorize(ctx, routeID, token)
	if err != nil {
		return dto.PreflightResponse{}, err
	}

	now := s.now()
	response := dto.PreflightResponse{
		Status:      interview.Status,
		ScheduledAt: interview.ScheduledAt,
		ExpiresAt:   interview.ExpiresAt,
	}

	switch {
	case interview.IsTerminal():
		response.Reason = "interview is " + interview.Status
	case interview.Status == models.InterviewStatusInProgress:
		response.Reason = "interview already started"
	case interview.IsExpiredAt(now):
		response.Reason = "interview has expired"
	default:
		if minutes := interview.MinutesUntilStart(now, s.policy.GracePeriod); minutes > 0 {
			response.Reason = "interview has not opened yet"
			response.MinutesUntilStart = minutes
		} else {
			response.CanStart = true
		}
	}

	return response, nil
}

func (s *accessService) Start(ctx context.Context, routeID, token string, forceStart bool) (dto.StartInterviewResponse, error) {
	interview, err := s.Authorize(ctx, routeID, token)
	if err != nil {
		return dto.StartInterviewResponse{}, err
	}

	now := s.now()

	// Force start bypasses the grace window, never the expiry.
	if interview.IsExpiredAt(now) {
		if _, err := s.interviews.UpdateIfStatus(ctx, interview.ID, interview.Status, map[string]interface{}{
			"status": models.InterviewStatusExpired,
		}); err != nil {
			s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to expire interview on start")
		}
		return dto.StartInterviewResponse{}, ErrInterviewExpired
	}

	if interview.Status != models.InterviewStatusScheduled && interview.Status != models.InterviewStatusReady {
		return dto.StartInterviewResponse{}, &InvalidStatusError{Operation: "start", Current: interview.Status}
	}

	if !forceStart {
		if minutes := interview.MinutesUntilStart(now, s.policy.GracePeriod); minutes > 0 {
			return dto.StartInterviewResponse{}, &TooEarlyError{MinutesUntilStart: minutes}
		}
	}

	affected, err := s.interviews.UpdateIfStatus(ctx, interview.ID, interview.Status, map[string]interface{}{
		"status":     models.InterviewStatusInProgress,
		"started_at": now,
	})
	if err != nil {
		return dto.StartInterviewResponse{}, err
	}
	if affected == 0 {
		return dto.StartInterviewResponse{}, ErrConflict
	}

	if err := s.activity.Record(ctx, ActivityEntry{
		CandidateID: interview.CandidateID,
		Type:        models.ActivityInterviewStarted,
		OldValue:    interview.Status,
		NewValue:    models.InterviewStatusInProgress,
		Metadata:    map[string]interface{}{"interview_id": interview.ID, "forced": forceStart},
	}); err != nil {
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to record start activity")
	}

	questions, err := s.questions.ListByInterview(ctx, interview.ID)
	if err != nil {
		return dto.StartInterviewResponse{}, err
	}

	s.logger.Info().Uint("interview_id", interview.ID).Bool("forced", forceStart).Msg("interview started")

	return dto.StartInterviewResponse{
		InterviewID:     interview.ID,
		Questions:       dto.NewQuestionViewSlice(questions),
		DurationMinutes: interview.DurationMinutes,
		ExpiresAt:       interview.ExpiresAt,
	}, nil
}
