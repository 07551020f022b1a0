package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

// OutboxRepository persists side-effect events pending relay to the bus.
type OutboxRepository interface {
	Create(ctx context.Context, event *models.OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkDispatched(ctx context.Context, id uint, at time.Time) error
	IncrementAttempts(ctx context.Context, id uint) error
}

type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository instantiates the repository.
func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Create(ctx context.Context, event *models.OutboxEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var events []models.OutboxEvent
	if err := r.db.WithContext(ctx).
		Where("dispatched_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (r *outboxRepository) MarkDispatched(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Update("dispatched_at", at).Error
}

func (r *outboxRepository) IncrementAttempts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
