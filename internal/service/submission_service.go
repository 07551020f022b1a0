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
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
	"github.com/noah-isme/hireflow-go-api/pkg/ai"
)

const (
	defaultScore      = 5.0
	unavailableNote   = "Automatic evaluation was unavailable for this answer; a neutral score was recorded."
	strengthThreshold = 7.0
	concernThreshold  = 4.0
	maxHighlightCount = 5
)

// SubmissionService orchestrates answer persistence and the terminal
// submit-and-score operation. Answers are durable first; evaluation is
// best-effort and replaceable.
type SubmissionService interface {
	SaveAnswer(ctx context.Context, routeID, token string, questionID uint, payload dto.SaveAnswerRequest) (dto.SaveAnswerResponse, error)
	Submit(ctx context.Context, routeID, token string, payload dto.SubmitInterviewRequest) (dto.SubmitInterviewResponse, error)
}

type submissionService struct {
	access       AccessService
	interviews   repository.InterviewRepository
	questions    repository.QuestionRepository
	candidates   repository.CandidateRepository
	scorer       ai.Scorer
	activity     ActivityRecorder
	outbox       OutboxPublisher
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
	scoreTimeout time.Duration
	concurrency  int
}

// SubmissionServiceConfig wires the submission pipeline dependencies.
type SubmissionServiceConfig struct {
	Access       AccessService
	Interviews   repository.InterviewRepository
	Questions    repository.QuestionRepository
	Candidates   repository.CandidateRepository
	Scorer       ai.Scorer
	Activity     ActivityRecorder
	Outbox       OutboxPublisher
	Validator    *validator.Validate
	Logger       zerolog.Logger
	ScoreTimeout time.Duration
	Concurrency  int
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(cfg SubmissionServiceConfig) SubmissionService {
	timeout := cfg.ScoreTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &submissionService{
		access:       cfg.Access,
		interviews:   cfg.Interviews,
		questions:    cfg.Questions,
		candidates:   cfg.Candidates,
		scorer:       cfg.Scorer,
		activity:     cfg.Activity,
		outbox:       cfg.Outbox,
		validator:    cfg.Validator,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       cfg.Logger.With().Str("component", "submission_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/hireflow-go-api/internal/service/submission"),
		now:          time.Now,
		scoreTimeout: timeout,
		concurrency:  concurrency,
	}
}

var saveableStatuses = map[string]struct{}{
	models.InterviewStatusInProgress: {},
	models.InterviewStatusScheduled:  {},
	models.InterviewStatusReady:      {},
}

func (s *submissionService) SaveAnswer(ctx context.Context, routeID, token string, questionID uint, payload dto.SaveAnswerRequest) (dto.SaveAnswerResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SaveAnswerResponse{}, err
	}

	interview, err := s.access.Authorize(ctx, routeID, token)
	if err != nil {
		return dto.SaveAnswerResponse{}, err
	}

	if _, ok := saveableStatuses[interview.Status]; !ok {
		return dto.SaveAnswerResponse{}, &InvalidStatusError{Operation: "save an answer for", Current: interview.Status}
	}

	question, err := s.questions.GetForInterview(ctx, questionID, interview.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SaveAnswerResponse{}, ErrQuestionNotFound
		}
		return dto.SaveAnswerResponse{}, err
	}

	now := s.now()
	question.CandidateAnswer = strings.TrimSpace(s.sanitizer.Sanitize(payload.Answer))
	question.AnsweredAt = &now
	if payload.TimeSpentSeconds > 0 {
		question.TimeSpentSeconds = payload.TimeSpentSeconds
	}

	if err := s.questions.Update(ctx, &question); err != nil {
		return dto.SaveAnswerResponse{}, err
	}

	answered, err := s.questions.CountAnswered(ctx, interview.ID)
	if err != nil {
		return dto.SaveAnswerResponse{}, err
	}

	// Bumping updated_at here is what keeps an actively-answering
	// candidate out of the abandoned sweep.
	if _, err := s.interviews.UpdateIfStatus(ctx, interview.ID, interview.Status, map[string]interface{}{
		"questions_answered": answered,
	}); err != nil {
		return dto.SaveAnswerResponse{}, err
	}

	return dto.SaveAnswerResponse{
		QuestionID:        question.ID,
		QuestionsAnswered: int(answered),
		SavedAt:           now,
	}, nil
}

func (s *submissionService) Submit(ctx context.Context, routeID, token string, payload dto.SubmitInterviewRequest) (dto.SubmitInterviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitInterviewResponse{}, err
	}

	interview, err := s.access.Authorize(ctx, routeID, token)
	if err != nil {
		return dto.SubmitInterviewResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "submission.submit", trace.WithAttributes(
		attribute.Int64("interview.id", int64(interview.ID)),
		attribute.Int("answers.count", len(payload.Answers)),
	))
	defer span.End()

	if interview.Status == models.InterviewStatusCompleted {
		return dto.SubmitInterviewResponse{}, ErrAlreadyCompleted
	}

	if _, ok := saveableStatuses[interview.Status]; !ok {
		return dto.SubmitInterviewResponse{}, &InvalidStatusError{Operation: "submit", Current: interview.Status}
	}

	now := s.now()
	if interview.IsExpiredAt(now) {
		if _, err := s.interviews.UpdateIfStatus(ctx, interview.ID, interview.Status, map[string]interface{}{
			"status": models.InterviewStatusExpired,
		}); err != nil {
			s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to expire interview on submit")
		}
		return dto.SubmitInterviewResponse{}, ErrInterviewExpired
	}

	questions, err := s.questions.ListByInterview(ctx, interview.ID)
	if err != nil {
		return dto.SubmitInterviewResponse{}, err
	}

	byID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	// Merge submitted answers into the question rows before any scoring so
	// a scoring outage can never lose candidate input.
	submitted := make([]*models.Question, 0, len(payload.Answers))
	for _, answer := range payload.Answers {
		question, ok := byID[answer.QuestionID]
		if !ok {
			return dto.SubmitInterviewResponse{}, ErrQuestionNotFound
		}

		if text := strings.TrimSpace(s.sanitizer.Sanitize(answer.Answer)); text != "" {
			question.CandidateAnswer = text
		}
		if question.AnsweredAt == nil {
			answeredAt := now
			question.AnsweredAt = &answeredAt
		}
		if answer.TimeSpentSeconds > 0 {
			question.TimeSpentSeconds = answer.TimeSpentSeconds
		}
		submitted = append(submitted, question)
	}

	s.scoreAnswers(ctx, interview, submitted)

	for _, question := range submitted {
		if err := s.questions.Update(ctx, question); err != nil {
			return dto.SubmitInterviewResponse{}, err
		}
	}

	overall, summary, strengths, concerns := aggregateResults(submitted)
	recommendation := models.RecommendationForScore(overall)

	affected, err := s.interviews.UpdateIfStatus(ctx, interview.ID, interview.Status, map[string]interface{}{
		"status":             models.InterviewStatusCompleted,
		"completed_at":       now,
		"overall_score":      overall,
		"recommendation":     recommendation,
		"summary":            summary,
		"strengths":          datatypes.NewJSONSlice(strengths),
		"concerns":           datatypes.NewJSONSlice(concerns),
		"questions_answered": len(submitted),
	})
	if err != nil {
		return dto.SubmitInterviewResponse{}, err
	}
	if affected == 0 {
		return dto.SubmitInterviewResponse{}, ErrConflict
	}

	s.mirrorToCandidate(ctx, interview.CandidateID, overall, summary)

	if err := s.activity.Record(ctx, ActivityEntry{
		CandidateID: interview.CandidateID,
		Type:        models.ActivityInterviewCompleted,
		OldValue:    interview.Status,
		NewValue:    models.InterviewStatusCompleted,
		Metadata: map[string]interface{}{
			"interview_id":   interview.ID,
			"overall_score":  overall,
			"recommendation": recommendation,
		},
	}); err != nil {
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to record completion activity")
	}

	if err := s.outbox.Enqueue(ctx, models.SubjectInterviewCompleted, map[string]interface{}{
		"interview_id":   interview.ID,
		"candidate_id":   interview.CandidateID,
		"job_id":         interview.JobID,
		"overall_score":  overall,
		"recommendation": recommendation,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to enqueue completion event")
	}

	s.logger.Info().
		Uint("interview_id", interview.ID).
		Int("overall_score", overall).
		Str("recommendation", recommendation).
		Msg("interview completed")

	return dto.SubmitInterviewResponse{
		InterviewID:    interview.ID,
		Status:         models.InterviewStatusCompleted,
		OverallScore:   overall,
		Recommendation: recommendation,
		Summary:        summary,
	}, nil
}

// scoreAnswers fans the scoring calls out with bounded concurrency. Each call
// carries its own timeout; a failed or timed-out call falls back to the
// neutral default and is marked defaulted so reviewers can tell it apart from
// a genuine score.
func (s *submissionService) scoreAnswers(ctx context.Context, interview models.Interview, questions []*models.Question) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	jobContext := interview.Job.Title
	if interview.Job.Description != "" {
		jobContext = jobContext + ": " + interview.Job.Description
	}

	for _, question := range questions {
		question := question
		group.Go(func() error {
			callCtx, cancel := context.WithTimeout(groupCtx, s.scoreTimeout)
			defer cancel()

			rubric := question.Rubric.Data()
			criteria := make([]ai.RubricCriterion, 0, len(rubric))
			for _, aspect := range rubric {
				criteria = append(criteria, ai.RubricCriterion{
					Aspect:    aspect.Aspect,
					Weight:    aspect.Weight,
					Excellent: aspect.Excellent,
					Good:      aspect.Good,
					NeedsWork: aspect.NeedsWork,
				})
			}

			result, err := s.scorer.Score(callCtx, ai.ScoreInput{
				Question:            question.Prompt,
				Category:            question.Category,
				Rubric:              criteria,
				Answer:              question.CandidateAnswer,
				JobContext:          jobContext,
				CandidateBackground: interview.Candidate.ProfileSummary,
			})
			if err != nil {
				s.logger.Warn().Err(err).
					Uint("interview_id", interview.ID).
					Uint("question_id", question.ID).
					Msg("scoring failed, using neutral default")
				score := defaultScore
				question.AIScore = &score
				question.AIFeedback = unavailableNote
				question.EvaluationStatus = models.EvaluationStatusDefaulted
				return nil
			}

			score := result.Score
			question.AIScore = &score
			question.AIFeedback = result.Feedback
			question.AIBreakdown = datatypes.JSONMap(result.Breakdown)
			question.EvaluationStatus = models.EvaluationStatusScored
			return nil
		})
	}

	// Workers always return nil; failures are recorded on the question
	// itself.
	_ = group.Wait()
}

func aggregateResults(questions []*models.Question) (overall int, summary string, strengths, concerns []string) {
	if len(questions) == 0 {
		return 0, "No answers were submitted.", nil, nil
	}

	var sum float64
	defaulted := 0
	for _, question := range questions {
		if question.AIScore == nil {
			continue
		}
		score := *question.AIScore
		sum += score

		if question.EvaluationStatus == models.EvaluationStatusDefaulted {
			defaulted++
			continue
		}

		if score >= strengthThreshold && len(strengths) < maxHighlightCount && question.AIFeedback != "" {
			strengths = append(strengths, question.AIFeedback)
		}
		if score <= concernThreshold && len(concerns) < maxHighlightCount && question.AIFeedback != "" {
			concerns = append(concerns, question.AIFeedback)
		}
	}

	mean := sum / float64(len(questions))
	overall = int(math.Round(mean * 10))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	summary = fmt.Sprintf("Candidate answered %d questions with an overall score of %d/100 (%s).",
		len(questions), overall, models.RecommendationForScore(overall))
	if defaulted > 0 {
		summary += fmt.Sprintf(" %d answer(s) could not be auto-evaluated and carry a neutral default.", defaulted)
	}

	return overall, summary, strengths, concerns
}

func (s *submissionService) mirrorToCandidate(ctx context.Context, candidateID uint, overall int, summary string) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("candidate_id", candidateID).Msg("failed to load candidate for score mirror")
		return
	}

	candidate.InterviewScore = &overall
	candidate.InterviewSummary = summary
	if err := s.candidates.Update(ctx, &candidate); err != nil {
		s.logger.Warn().Err(err).Uint("candidate_id", candidateID).Msg("failed to mirror interview score")
	}
}
