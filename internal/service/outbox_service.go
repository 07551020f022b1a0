package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
)

// OutboxPublisher enqueues a side-effect event for later relay. The row is
// written immediately; delivery to the bus happens asynchronously.
type OutboxPublisher interface {
	Enqueue(ctx context.Context, subject string, payload map[string]interface{}) error
}

// OutboxService persists lifecycle events and relays them to NATS with
// at-least-once semantics. Consumers deduplicate on event_id.
type OutboxService interface {
	OutboxPublisher
	DispatchPending(ctx context.Context) (int, error)
	Start(ctx context.Context, interval time.Duration)
}

type outboxService struct {
	repo      repository.OutboxRepository
	conn      *nats.Conn
	logger    zerolog.Logger
	batchSize int
}

// NewOutboxService constructs the outbox relay. A nil NATS connection leaves
// events queued until a dispatcher with a live connection picks them up.
func NewOutboxService(repo repository.OutboxRepository, conn *nats.Conn, logger zerolog.Logger) OutboxService {
	return &outboxService{
		repo:      repo,
		conn:      conn,
		logger:    logger.With().Str("component", "outbox_service").Logger(),
		batchSize: 100,
	}
}

func (s *outboxService) Enqueue(ctx context.Context, subject string, payload map[string]interface{}) error {
	event := models.OutboxEvent{
		EventID: uuid.NewString(),
		Subject: subject,
		Payload: datatypes.JSONMap(payload),
	}

	if err := s.repo.Create(ctx, &event); err != nil {
		s.logger.Error().Err(err).Str("subject", subject).Msg("failed to enqueue outbox event")
		return err
	}

	return nil
}

// DispatchPending relays queued events to NATS and returns how many were
// delivered. A publish failure leaves the row pending with its attempt
// counter bumped; the next pass retries it.
func (s *outboxService) DispatchPending(ctx context.Context) (int, error) {
	events, err := s.repo.ListPending(ctx, s.batchSize)
	if err != nil {
		return 0, err
	}

	if s.conn == nil {
		if len(events) > 0 {
			s.logger.Warn().Int("pending", len(events)).Msg("nats unavailable, leaving outbox events queued")
		}
		return 0, nil
	}

	dispatched := 0
	for _, event := range events {
		body, err := json.Marshal(map[string]interface{}{
			"event_id":  event.EventID,
			"subject":   event.Subject,
			"payload":   map[string]interface{}(event.Payload),
			"queued_at": event.CreatedAt,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("event_id", event.EventID).Msg("failed to marshal outbox event")
			continue
		}

		if err := s.conn.Publish(event.Subject, body); err != nil {
			s.logger.Warn().Err(err).Str("event_id", event.EventID).Msg("failed to publish outbox event")
			if err := s.repo.IncrementAttempts(ctx, event.ID); err != nil {
				s.logger.Error().Err(err).Str("event_id", event.EventID).Msg("failed to bump attempt counter")
			}
			continue
		}

		if err := s.repo.MarkDispatched(ctx, event.ID, time.Now()); err != nil {
			// The event already reached the bus; the duplicate on the
			// next pass is covered by consumer-side deduplication.
			s.logger.Error().Err(err).Str("event_id", event.EventID).Msg("failed to mark outbox event dispatched")
			continue
		}
		dispatched++
	}

	return dispatched, nil
}

// Start runs the relay loop until the context is cancelled.
func (s *outboxService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("outbox dispatcher started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("outbox dispatcher stopped")
			return
		case <-ticker.C:
			if count, err := s.DispatchPending(ctx); err != nil {
				s.logger.Error().Err(err).Msg("outbox dispatch pass failed")
			} else if count > 0 {
				s.logger.Info().Int("dispatched", count).Msg("outbox events relayed")
			}
		}
	}
}
