package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

// JobRepository defines data operations for job postings.
type JobRepository interface {
	GetByID(ctx context.Context, id uint) (models.Job, error)
}

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository instantiates the repository.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) GetByID(ctx context.Context, id uint) (models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return models.Job{}, err
	}

	return job, nil
}
