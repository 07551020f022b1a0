package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

// QuestionRepository defines data operations for interview questions.
type QuestionRepository interface {
	BatchCreate(ctx context.Context, questions []models.Question) error
	ListByInterview(ctx context.Context, interviewID uint) ([]models.Question, error)
	GetForInterview(ctx context.Context, id, interviewID uint) (models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	CountAnswered(ctx context.Context, interviewID uint) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) BatchCreate(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&questions).Error
}

func (r *questionRepository) ListByInterview(ctx context.Context, interviewID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("position ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) GetForInterview(ctx context.Context, id, interviewID uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("interview_id = ?", interviewID).
		First(&question).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) CountAnswered(ctx context.Context, interviewID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("interview_id = ?", interviewID).
		Where("candidate_answer <> ''").
		Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
