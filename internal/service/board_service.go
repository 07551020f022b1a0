package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
)

// BoardService produces the per-job pipeline board: interview counts grouped
// by lifecycle status, cached briefly in Redis.
type BoardService interface {
	GetBoard(ctx context.Context, jobID uint) (dto.PipelineBoardResponse, error)
}

type boardService struct {
	interviews repository.InterviewRepository
	jobs       repository.JobRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewBoardService builds the pipeline board aggregator.
func NewBoardService(interviews repository.InterviewRepository, jobs repository.JobRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) BoardService {
	return &boardService{
		interviews: interviews,
		jobs:       jobs,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "board_service").Logger(),
		now:        time.Now,
	}
}

func (s *boardService) GetBoard(ctx context.Context, jobID uint) (dto.PipelineBoardResponse, error) {
	cacheKey := fmt.Sprintf("board:job:%d", jobID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.PipelineBoardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("job_id", jobID).Msg("board cache hit")
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read board cache")
		}
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PipelineBoardResponse{}, ErrJobNotFound
		}
		return dto.PipelineBoardResponse{}, err
	}

	counts, err := s.interviews.CountByStatus(ctx, jobID)
	if err != nil {
		return dto.PipelineBoardResponse{}, err
	}

	response := buildBoardResponse(job, counts, s.now())

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store board cache")
			}
		}
	}

	return response, nil
}

func buildBoardResponse(job models.Job, counts map[string]int64, now time.Time) dto.PipelineBoardResponse {
	activeStatuses := []string{
		models.InterviewStatusPending,
		models.InterviewStatusScheduled,
		models.InterviewStatusReady,
		models.InterviewStatusInProgress,
	}

	var active int64
	for _, status := range activeStatuses {
		active += counts[status]
	}

	return dto.PipelineBoardResponse{
		JobID:       job.ID,
		JobTitle:    job.Title,
		Counts:      counts,
		Active:      active,
		Completed:   counts[models.InterviewStatusCompleted],
		GeneratedAt: now,
	}
}
