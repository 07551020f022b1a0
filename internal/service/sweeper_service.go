package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/observability"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
)

// SweeperService reconciles interviews whose lifecycle deadlines have passed.
// Every pass is a conditional bulk update, so concurrent candidate actions
// and overlapping sweeps settle on a single winner per row.
type SweeperService interface {
	RunOnce(ctx context.Context) dto.SweepResultResponse
	Start(ctx context.Context, interval time.Duration)
}

type sweeperService struct {
	interviews repository.InterviewRepository
	activity   ActivityRecorder
	outbox     OutboxPublisher
	logger     zerolog.Logger
	now        func() time.Time
	policy     LifecyclePolicy
}

// NewSweeperService constructs the reconciliation sweeper.
func NewSweeperService(interviews repository.InterviewRepository, activity ActivityRecorder, outbox OutboxPublisher, logger zerolog.Logger, policy LifecyclePolicy) SweeperService {
	return &sweeperService{
		interviews: interviews,
		activity:   activity,
		outbox:     outbox,
		logger:     logger.With().Str("component", "sweeper_service").Logger(),
		now:        time.Now,
		policy:     policy,
	}
}

// RunOnce executes the four sweep passes. Passes are independent: a failure in
// one is logged and the rest still run, so a single bad query never stalls the
// whole reconciliation.
func (s *sweeperService) RunOnce(ctx context.Context) dto.SweepResultResponse {
	now := s.now()
	result := dto.SweepResultResponse{RanAt: now}

	result.Ready = s.sweepReady(ctx, now)
	result.Missed = s.sweepMissed(ctx, now)
	result.Abandoned = s.sweepAbandoned(ctx, now)
	result.Expired = s.sweepExpired(ctx, now)

	observability.SweepTransitions().WithLabelValues("ready").Add(float64(result.Ready))
	observability.SweepTransitions().WithLabelValues("missed").Add(float64(result.Missed))
	observability.SweepTransitions().WithLabelValues("abandoned").Add(float64(result.Abandoned))
	observability.SweepTransitions().WithLabelValues("expired").Add(float64(result.Expired))

	if result.Ready+result.Missed+result.Abandoned+result.Expired > 0 {
		s.logger.Info().
			Int64("ready", result.Ready).
			Int64("missed", result.Missed).
			Int64("abandoned", result.Abandoned).
			Int64("expired", result.Expired).
			Msg("sweep pass reconciled interviews")
	}

	return result
}

// sweepReady opens the start window: scheduled interviews whose grace window
// has arrived become ready.
func (s *sweeperService) sweepReady(ctx context.Context, now time.Time) int64 {
	cutoff := now.Add(s.policy.GracePeriod)
	count, err := s.interviews.TransitionDue(ctx,
		[]string{models.InterviewStatusScheduled},
		models.InterviewStatusReady,
		"scheduled_at", cutoff, true)
	if err != nil {
		s.logger.Error().Err(err).Msg("ready sweep failed")
		return 0
	}

	return count
}

// sweepMissed marks never-started interviews well past their scheduled time.
func (s *sweeperService) sweepMissed(ctx context.Context, now time.Time) int64 {
	cutoff := now.Add(-s.policy.MissedAfter)

	due := s.collectDue(ctx,
		[]string{models.InterviewStatusScheduled, models.InterviewStatusReady},
		"scheduled_at", cutoff, true)

	count, err := s.interviews.TransitionDue(ctx,
		[]string{models.InterviewStatusScheduled, models.InterviewStatusReady},
		models.InterviewStatusMissed,
		"scheduled_at", cutoff, true)
	if err != nil {
		s.logger.Error().Err(err).Msg("missed sweep failed")
		return 0
	}

	if count > 0 {
		s.recordSweepOutcome(ctx, due, models.ActivityInterviewMissed, models.InterviewStatusMissed, models.SubjectInterviewMissed)
	}

	return count
}

// sweepAbandoned catches in-progress interviews with no answer activity for
// the idle window. Saving an answer bumps updated_at, which resets the clock.
func (s *sweeperService) sweepAbandoned(ctx context.Context, now time.Time) int64 {
	cutoff := now.Add(-s.policy.IdleTimeout)

	due := s.collectDue(ctx,
		[]string{models.InterviewStatusInProgress},
		"updated_at", cutoff, false)

	count, err := s.interviews.TransitionDue(ctx,
		[]string{models.InterviewStatusInProgress},
		models.InterviewStatusAbandoned,
		"updated_at", cutoff, false)
	if err != nil {
		s.logger.Error().Err(err).Msg("abandoned sweep failed")
		return 0
	}

	if count > 0 {
		s.recordSweepOutcome(ctx, due, models.ActivityInterviewAbandoned, models.InterviewStatusAbandoned, models.SubjectInterviewAbandoned)
	}

	return count
}

// sweepExpired enforces the hard TTL on interviews that never started.
// In-progress rows are excluded: an active candidate past expires_at is
// rejected at submit time, and the idle sweep handles the ones that stalled.
func (s *sweeperService) sweepExpired(ctx context.Context, now time.Time) int64 {
	statuses := []string{
		models.InterviewStatusPending,
		models.InterviewStatusScheduled,
		models.InterviewStatusReady,
	}

	due := s.collectDue(ctx, statuses, "expires_at", now, false)

	count, err := s.interviews.TransitionDue(ctx, statuses,
		models.InterviewStatusExpired,
		"expires_at", now, false)
	if err != nil {
		s.logger.Error().Err(err).Msg("expired sweep failed")
		return 0
	}

	if count > 0 {
		s.recordSweepOutcome(ctx, due, models.ActivityInterviewExpired, models.InterviewStatusExpired, "")
	}

	return count
}

func (s *sweeperService) collectDue(ctx context.Context, statuses []string, timeColumn string, cutoff time.Time, neverStarted bool) []repository.SweepCandidate {
	var due []repository.SweepCandidate
	for _, status := range statuses {
		rows, err := s.interviews.FindDue(ctx, status, timeColumn, cutoff, neverStarted)
		if err != nil {
			s.logger.Warn().Err(err).Str("status", status).Msg("failed to pre-select sweep candidates")
			continue
		}
		due = append(due, rows...)
	}

	return due
}

// recordSweepOutcome writes the audit trail and outbox events for a sweep
// pass. The pre-selected set can be a superset of the rows actually updated
// when a candidate acted between read and write; duplicated or stray records
// here are acceptable, lost state changes are not.
func (s *sweeperService) recordSweepOutcome(ctx context.Context, due []repository.SweepCandidate, activityType, newStatus, subject string) {
	if len(due) == 0 {
		return
	}

	entries := make([]ActivityEntry, 0, len(due))
	for _, row := range due {
		entries = append(entries, ActivityEntry{
			CandidateID: row.CandidateID,
			Type:        activityType,
			NewValue:    newStatus,
			Metadata:    map[string]interface{}{"interview_id": row.ID, "swept": true},
		})
	}

	if err := s.activity.BatchRecord(ctx, entries); err != nil {
		s.logger.Warn().Err(err).Str("activity", activityType).Msg("failed to record sweep activities")
	}

	if subject == "" {
		return
	}

	for _, row := range due {
		if err := s.outbox.Enqueue(ctx, subject, map[string]interface{}{
			"interview_id": row.ID,
			"candidate_id": row.CandidateID,
			"status":       newStatus,
		}); err != nil {
			s.logger.Warn().Err(err).Uint("interview_id", row.ID).Msg("failed to enqueue sweep event")
		}
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *sweeperService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("lifecycle sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("lifecycle sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
