package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

// InterviewFilter narrows interview listing queries.
type InterviewFilter struct {
	CandidateID *uint
	JobID       *uint
	Status      *string
	Page        int
	PageSize    int
}

// SweepCandidate identifies a row matched by a sweeper pass before the bulk
// update runs, so activity records can be written per affected candidate.
type SweepCandidate struct {
	ID          uint
	CandidateID uint
}

// InterviewRepository defines data operations for interviews. Status-changing
// writes are conditional on the status observed at read time so concurrent
// candidate actions and sweeper passes never overwrite each other.
type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, id uint) (models.Interview, error)
	GetByToken(ctx context.Context, token string) (models.Interview, error)
	GetByIDAndToken(ctx context.Context, id uint, token string) (models.Interview, error)
	FindActive(ctx context.Context, candidateID, jobID uint) (models.Interview, error)
	List(ctx context.Context, filter InterviewFilter) ([]models.Interview, int64, error)
	Update(ctx context.Context, interview *models.Interview) error
	UpdateIfStatus(ctx context.Context, id uint, expected string, fields map[string]interface{}) (int64, error)
	FindDue(ctx context.Context, status, timeColumn string, cutoff time.Time, neverStarted bool) ([]SweepCandidate, error)
	TransitionDue(ctx context.Context, from []string, to, timeColumn string, cutoff time.Time, neverStarted bool) (int64, error)
	CountByStatus(ctx context.Context, jobID uint) (map[string]int64, error)
}

type interviewRepository struct {
	db *gorm.DB
}

// NewInterviewRepository instantiates the repository.
func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Interview{}).
		Preload("Candidate").
		Preload("Job")
}

func (r *interviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	return r.db.WithContext(ctx).Create(interview).Error
}

func (r *interviewRepository) GetByID(ctx context.Context, id uint) (models.Interview, error) {
	var interview models.Interview
	if err := r.baseQuery(ctx).First(&interview, id).Error; err != nil {
		return models.Interview{}, err
	}

	return interview, nil
}

func (r *interviewRepository) GetByToken(ctx context.Context, token string) (models.Interview, error) {
	var interview models.Interview
	if err := r.baseQuery(ctx).Where("access_token = ?", token).First(&interview).Error; err != nil {
		return models.Interview{}, err
	}

	return interview, nil
}

func (r *interviewRepository) GetByIDAndToken(ctx context.Context, id uint, token string) (models.Interview, error) {
	var interview models.Interview
	if err := r.baseQuery(ctx).
		Where("id = ?", id).
		Where("access_token = ?", token).
		First(&interview).Error; err != nil {
		return models.Interview{}, err
	}

	return interview, nil
}

func (r *interviewRepository) FindActive(ctx context.Context, candidateID, jobID uint) (models.Interview, error) {
	active := []string{
		models.InterviewStatusPending,
		models.InterviewStatusScheduled,
		models.InterviewStatusReady,
		models.InterviewStatusInProgress,
	}

	var interview models.Interview
	if err := r.db.WithContext(ctx).Model(&models.Interview{}).
		Where("candidate_id = ?", candidateID).
		Where("job_id = ?", jobID).
		Where("status IN ?", active).
		Order("created_at DESC").
		First(&interview).Error; err != nil {
		return models.Interview{}, err
	}

	return interview, nil
}

func (r *interviewRepository) List(ctx context.Context, filter InterviewFilter) ([]models.Interview, int64, error) {
	query := r.baseQuery(ctx)

	if filter.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filter.CandidateID)
	}

	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
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

	var interviews []models.Interview
	if err := query.Order("created_at DESC").Find(&interviews).Error; err != nil {
		return nil, 0, err
	}

	return interviews, total, nil
}

func (r *interviewRepository) Update(ctx context.Context, interview *models.Interview) error {
	return r.db.WithContext(ctx).Save(interview).Error
}

// UpdateIfStatus applies fields only when the row still carries the expected
// status. Returns the number of rows changed; zero means the row moved
// concurrently (or no longer exists) and the caller must re-fetch.
func (r *interviewRepository) UpdateIfStatus(ctx context.Context, id uint, expected string, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Interview{}).
		Where("id = ?", id).
		Where("status = ?", expected).
		Updates(fields)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *interviewRepository) dueQuery(ctx context.Context, statuses []string, timeColumn string, cutoff time.Time, neverStarted bool) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Interview{}).
		Where("status IN ?", statuses).
		Where(timeColumn+" <= ?", cutoff)
	if neverStarted {
		query = query.Where("started_at IS NULL")
	}
	return query
}

func (r *interviewRepository) FindDue(ctx context.Context, status, timeColumn string, cutoff time.Time, neverStarted bool) ([]SweepCandidate, error) {
	var rows []SweepCandidate
	if err := r.dueQuery(ctx, []string{status}, timeColumn, cutoff, neverStarted).
		Select("id", "candidate_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// TransitionDue is a single conditional bulk update: rows whose status changed
// between a sweeper's read and write simply fall out of the affected set.
func (r *interviewRepository) TransitionDue(ctx context.Context, from []string, to, timeColumn string, cutoff time.Time, neverStarted bool) (int64, error) {
	result := r.dueQuery(ctx, from, timeColumn, cutoff, neverStarted).
		Updates(map[string]interface{}{"status": to})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *interviewRepository) CountByStatus(ctx context.Context, jobID uint) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Total  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&models.Interview{}).
		Select("status", "COUNT(*) AS total").
		Where("job_id = ?", jobID).
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}
