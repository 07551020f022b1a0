package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
	"github.com/noah-isme/hireflow-go-api/pkg/ai"
)

const (
	minQuestionCount = 8
	maxQuestionCount = 10
)

// ScheduleService orchestrates interview creation and the staff-facing
// lifecycle operations (reschedule, cancel, review).
type ScheduleService interface {
	Schedule(ctx context.Context, payload dto.ScheduleInterviewRequest) (dto.ScheduleInterviewResponse, error)
	Reschedule(ctx context.Context, id uint, payload dto.RescheduleInterviewRequest) (dto.InterviewResponse, error)
	Cancel(ctx context.Context, id uint) (dto.InterviewResponse, error)
	MarkReviewed(ctx context.Context, id uint) (dto.InterviewResponse, error)
	Get(ctx context.Context, id uint) (dto.InterviewResponse, error)
	List(ctx context.Context, req dto.InterviewListRequest) (dto.InterviewListResponse, error)
}

type scheduleService struct {
	interviews    repository.InterviewRepository
	questions     repository.QuestionRepository
	candidates    repository.CandidateRepository
	jobs          repository.JobRepository
	generator     ai.QuestionGenerator
	activity      ActivityRecorder
	outbox        OutboxPublisher
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	now           func() time.Time
	policy        LifecyclePolicy
	publicBaseURL string
	genTimeout    time.Duration
	questionCount int
}

// ScheduleServiceConfig wires the scheduling service dependencies.
type ScheduleServiceConfig struct {
	Interviews    repository.InterviewRepository
	Questions     repository.QuestionRepository
	Candidates    repository.CandidateRepository
	Jobs          repository.JobRepository
	Generator     ai.QuestionGenerator
	Activity      ActivityRecorder
	Outbox        OutboxPublisher
	Validator     *validator.Validate
	Logger        zerolog.Logger
	Policy        LifecyclePolicy
	PublicBaseURL string
	GenTimeout    time.Duration
	QuestionCount int
}

// NewScheduleService constructs a ScheduleService instance.
func NewScheduleService(cfg ScheduleServiceConfig) ScheduleService {
	count := cfg.QuestionCount
	if count < minQuestionCount || count > maxQuestionCount {
		count = minQuestionCount
	}

	genTimeout := cfg.GenTimeout
	if genTimeout <= 0 {
		genTimeout = time.Minute
	}

	return &scheduleService{
		interviews:    cfg.Interviews,
		questions:     cfg.Questions,
		candidates:    cfg.Candidates,
		jobs:          cfg.Jobs,
		generator:     cfg.Generator,
		activity:      cfg.Activity,
		outbox:        cfg.Outbox,
		validator:     cfg.Validator,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        cfg.Logger.With().Str("component", "schedule_service").Logger(),
		now:           time.Now,
		policy:        cfg.Policy,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		genTimeout:    genTimeout,
		questionCount: count,
	}
}

func (s *scheduleService) Schedule(ctx context.Context, payload dto.ScheduleInterviewRequest) (dto.ScheduleInterviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleInterviewResponse{}, err
	}

	now := s.now()

	var scheduledAt *time.Time
	if payload.ScheduledAt != nil {
		parsed, err := time.Parse(time.RFC3339, *payload.ScheduledAt)
		if err != nil {
			return dto.ScheduleInterviewResponse{}, ErrInvalidScheduleTime
		}
		if !parsed.After(now) {
			return dto.ScheduleInterviewResponse{}, ErrInvalidScheduleTime
		}
		scheduledAt = &parsed
	}

	candidate, err := s.candidates.GetByID(ctx, payload.CandidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleInterviewResponse{}, ErrCandidateNotFound
		}
		return dto.ScheduleInterviewResponse{}, err
	}

	job, err := s.jobs.GetByID(ctx, payload.JobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleInterviewResponse{}, ErrJobNotFound
		}
		return dto.ScheduleInterviewResponse{}, err
	}

	if existing, err := s.interviews.FindActive(ctx, candidate.ID, job.ID); err == nil {
		return dto.ScheduleInterviewResponse{}, &InterviewExistsError{ID: existing.ID, Status: existing.Status}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ScheduleInterviewResponse{}, err
	}

	generated, err := s.generateQuestions(ctx, candidate, job)
	if err != nil {
		return dto.ScheduleInterviewResponse{}, fmt.Errorf("%w: %v", ErrQuestionGenerationFailed, err)
	}

	token, err := newAccessToken()
	if err != nil {
		return dto.ScheduleInterviewResponse{}, err
	}

	status := models.InterviewStatusReady
	expiresAt := now.Add(s.policy.TTL)
	if scheduledAt != nil {
		status = models.InterviewStatusScheduled
		expiresAt = scheduledAt.Add(s.policy.TTL)
	}

	duration := payload.DurationMinutes
	if duration <= 0 {
		duration = 45
	}

	interview := models.Interview{
		CandidateID:     candidate.ID,
		JobID:           job.ID,
		AccessToken:     token,
		Status:          status,
		ScheduledAt:     scheduledAt,
		ExpiresAt:       &expiresAt,
		DurationMinutes: duration,
	}

	if err := s.interviews.Create(ctx, &interview); err != nil {
		return dto.ScheduleInterviewResponse{}, err
	}

	// The interview row is already visible at this point; a failed
	// question insert only degrades rubric-guided evaluation, so it is
	// surfaced as a soft warning instead of rolling the interview back.
	questionsGenerated := true
	if err := s.questions.BatchCreate(ctx, buildQuestionModels(interview.ID, generated)); err != nil {
		questionsGenerated = false
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("question batch insert failed")
	}

	notes := strings.TrimSpace(s.sanitizer.Sanitize(payload.CustomMessage))
	if err := s.activity.Record(ctx, ActivityEntry{
		CandidateID: candidate.ID,
		Type:        models.ActivityInterviewScheduled,
		NewValue:    status,
		Metadata:    map[string]interface{}{"interview_id": interview.ID, "job_id": job.ID, "job_title": job.Title},
		Notes:       notes,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to record schedule activity")
	}

	s.advancePipelineStage(ctx, candidate)

	if err := s.outbox.Enqueue(ctx, models.SubjectInterviewScheduled, map[string]interface{}{
		"interview_id":   interview.ID,
		"candidate_id":   candidate.ID,
		"job_id":         job.ID,
		"scheduled_at":   interview.ScheduledAt,
		"send_invite":    payload.SendInvite,
		"custom_message": notes,
		"timezone":       payload.Timezone,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to enqueue schedule event")
	}

	created, err := s.interviews.GetByID(ctx, interview.ID)
	if err != nil {
		return dto.ScheduleInterviewResponse{}, err
	}

	s.logger.Info().
		Uint("interview_id", created.ID).
		Uint("candidate_id", candidate.ID).
		Uint("job_id", job.ID).
		Str("status", created.Status).
		Msg("interview scheduled")

	return dto.ScheduleInterviewResponse{
		Interview:          dto.NewInterviewResponse(created),
		PublicLink:         fmt.Sprintf("%s/interviews/%s", s.publicBaseURL, token),
		QuestionsGenerated: questionsGenerated,
	}, nil
}

func (s *scheduleService) generateQuestions(ctx context.Context, candidate models.Candidate, job models.Job) ([]ai.GeneratedQuestion, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	generated, err := s.generator.GenerateQuestions(genCtx, ai.QuestionSetInput{
		JobTitle:            job.Title,
		JobDescription:      job.Description,
		Requirements:        []string(job.Requirements),
		CandidateBackground: candidate.ProfileSummary,
		Count:               s.questionCount,
	})
	if err != nil {
		return nil, err
	}

	// The set must land in the 8-10 band: short responses are a model
	// failure, oversized ones are trimmed.
	if len(generated) < minQuestionCount {
		return nil, fmt.Errorf("generator returned %d questions, need at least %d", len(generated), minQuestionCount)
	}
	if len(generated) > maxQuestionCount {
		generated = generated[:maxQuestionCount]
	}

	return generated, nil
}

func buildQuestionModels(interviewID uint, generated []ai.GeneratedQuestion) []models.Question {
	questions := make([]models.Question, 0, len(generated))
	for i, item := range generated {
		rubric := make([]models.RubricAspect, 0, len(item.Rubric))
		for _, criterion := range item.Rubric {
			rubric = append(rubric, models.RubricAspect{
				Aspect:    criterion.Aspect,
				Weight:    criterion.Weight,
				Excellent: criterion.Excellent,
				Good:      criterion.Good,
				NeedsWork: criterion.NeedsWork,
			})
		}

		estimated := item.EstimatedMinutes
		if estimated <= 0 {
			estimated = 5
		}

		questions = append(questions, models.Question{
			InterviewID:      interviewID,
			Position:         i + 1,
			Prompt:           item.Prompt,
			Category:         item.Category,
			Difficulty:       item.Difficulty,
			EstimatedMinutes: estimated,
			Rubric:           datatypes.NewJSONType(rubric),
			EvaluationStatus: models.EvaluationStatusPending,
		})
	}

	return questions
}

func (s *scheduleService) advancePipelineStage(ctx context.Context, candidate models.Candidate) {
	next := models.AdvanceStage(candidate.Stage, models.StageInterview)
	if next == candidate.Stage {
		return
	}

	previous := candidate.Stage
	candidate.Stage = next
	if err := s.candidates.Update(ctx, &candidate); err != nil {
		s.logger.Warn().Err(err).Uint("candidate_id", candidate.ID).Msg("failed to advance pipeline stage")
		return
	}

	if err := s.activity.Record(ctx, ActivityEntry{
		CandidateID: candidate.ID,
		Type:        models.ActivityStageChanged,
		OldValue:    previous,
		NewValue:    next,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("candidate_id", candidate.ID).Msg("failed to record stage activity")
	}
}

func (s *scheduleService) Reschedule(ctx context.Context, id uint, payload dto.RescheduleInterviewRequest) (dto.InterviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InterviewResponse{}, err
	}

	interview, err := s.getInterview(ctx, id)
	if err != nil {
		return dto.InterviewResponse{}, err
	}

	// Re-applying a lifecycle operation to a terminal interview returns
	// the current state instead of erroring.
	if interview.IsTerminal() {
		return dto.NewInterviewResponse(interview), nil
	}

	if interview.Status != models.InterviewStatusScheduled && interview.Status != models.InterviewStatusReady {
		return dto.InterviewResponse{}, &InvalidStatusError{Operation: "reschedule", Current: interview.Status}
	}

	scheduledAt, err := time.Parse(time.RFC3339, payload.ScheduledAt)
	if err != nil || !scheduledAt.After(s.now()) {
		return dto.InterviewResponse{}, ErrInvalidScheduleTime
	}

	expiresAt := scheduledAt.Add(s.policy.TTL)
	affected, err := s.interviews.UpdateIfStatus(ctx, interview.ID, interview.Status, map[string]interface{}{
		"status":       models.InterviewStatusScheduled,
		"scheduled_at": scheduledAt,
		"expires_at":   expiresAt,
	})
	if err != nil {
		return dto.InterviewResponse{}, err
	}
	if affected == 0 {
		return dto.InterviewResponse{}, ErrConflict
	}

	if err := s.activity.Record(ctx, ActivityEntry{
		CandidateID: interview.CandidateID,
		Type:        models.ActivityInterviewRescheduled,
		OldValue:    formatTimePtr(interview.ScheduledAt),
		NewValue:    scheduledAt.Format(time.RFC3339),
		Metadata:    map[string]interface{}{"interview_id": interview.ID},
	}); err != nil {
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to record reschedule activity")
	}

	return s.Get(ctx, interview.ID)
}

func (s *scheduleService) Cancel(ctx context.Context, id uint) (dto.InterviewResponse, error) {
	interview, err := s.getInterview(ctx, id)
	if err != nil {
		return dto.InterviewResponse{}, err
	}

	if interview.IsTerminal() {
		return dto.NewInterviewResponse(interview), nil
	}

	if interview.Status == models.InterviewStatusInProgress {
		return dto.InterviewResponse{}, &InvalidStatusError{Operation: "cancel", Current: interview.Status}
	}

	affected, err := s.interviews.UpdateIfStatus(ctx, interview.ID, interview.Status, map[string]interface{}{
		"status": models.InterviewStatusCancelled,
	})
	if err != nil {
		return dto.InterviewResponse{}, err
	}
	if affected == 0 {
		return dto.InterviewResponse{}, ErrConflict
	}

	if err := s.activity.Record(ctx, ActivityEntry{
		CandidateID: interview.CandidateID,
		Type:        models.ActivityInterviewCancelled,
		OldValue:    interview.Status,
		NewValue:    models.InterviewStatusCancelled,
		Metadata:    map[string]interface{}{"interview_id": interview.ID},
	}); err != nil {
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to record cancel activity")
	}

	if err := s.outbox.Enqueue(ctx, models.SubjectInterviewCancelled, map[string]interface{}{
		"interview_id": interview.ID,
		"candidate_id": interview.CandidateID,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to enqueue cancel event")
	}

	return s.Get(ctx, interview.ID)
}

func (s *scheduleService) MarkReviewed(ctx context.Context, id uint) (dto.InterviewResponse, error) {
	interview, err := s.getInterview(ctx, id)
	if err != nil {
		return dto.InterviewResponse{}, err
	}

	if interview.ReviewedAt != nil {
		return dto.NewInterviewResponse(interview), nil
	}

	if interview.Status != models.InterviewStatusCompleted {
		return dto.InterviewResponse{}, &InvalidStatusError{Operation: "review", Current: interview.Status}
	}

	reviewedAt := s.now()
	interview.ReviewedAt = &reviewedAt
	if err := s.interviews.Update(ctx, &interview); err != nil {
		return dto.InterviewResponse{}, err
	}

	return dto.NewInterviewResponse(interview), nil
}

func (s *scheduleService) Get(ctx context.Context, id uint) (dto.InterviewResponse, error) {
	interview, err := s.getInterview(ctx, id)
	if err != nil {
		return dto.InterviewResponse{}, err
	}

	return dto.NewInterviewResponse(interview), nil
}

func (s *scheduleService) List(ctx context.Context, req dto.InterviewListRequest) (dto.InterviewListResponse, error) {
	filter := repository.InterviewFilter{
		CandidateID: req.CandidateID,
		JobID:       req.JobID,
		Status:      req.Status,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}

	interviews, total, err := s.interviews.List(ctx, filter)
	if err != nil {
		return dto.InterviewListResponse{}, err
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.InterviewListResponse{
		Items:      dto.NewInterviewResponseSlice(interviews),
		Pagination: pagination,
	}, nil
}

func (s *scheduleService) getInterview(ctx context.Context, id uint) (models.Interview, error) {
	interview, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Interview{}, ErrInterviewNotFound
		}
		return models.Interview{}, err
	}

	return interview, nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
