package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

// CandidateActivityFilter narrows activity feed queries.
type CandidateActivityFilter struct {
	Page     int
	PageSize int
	Type     string
}

// CandidateActivityRepository persists the append-only candidate audit trail.
type CandidateActivityRepository interface {
	Create(ctx context.Context, entry *models.CandidateActivity) error
	BatchCreate(ctx context.Context, entries []models.CandidateActivity) error
	ListByCandidate(ctx context.Context, candidateID uint, filter CandidateActivityFilter) ([]models.CandidateActivity, int64, error)
}

type candidateActivityRepository struct {
	db *gorm.DB
}

// NewCandidateActivityRepository constructs the activity repository.
func NewCandidateActivityRepository(db *gorm.DB) CandidateActivityRepository {
	return &candidateActivityRepository{db: db}
}

func (r *candidateActivityRepository) Create(ctx context.Context, entry *models.CandidateActivity) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *candidateActivityRepository) BatchCreate(ctx context.Context, entries []models.CandidateActivity) error {
	if len(entries) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *candidateActivityRepository) ListByCandidate(ctx context.Context, candidateID uint, filter CandidateActivityFilter) ([]models.CandidateActivity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CandidateActivity{}).
		Where("candidate_id = ?", candidateID)

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []models.CandidateActivity
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
