package dto

import "time"

// PipelineBoardResponse summarizes interview progress for one job.
type PipelineBoardResponse struct {
	JobID       uint             `json:"job_id"`
	JobTitle    string           `json:"job_title"`
	Counts      map[string]int64 `json:"counts"`
	Active      int64            `json:"active"`
	Completed   int64            `json:"completed"`
	GeneratedAt time.Time        `json:"generated_at"`
	CacheHit    bool             `json:"cache_hit"`
}

// SweepResultResponse reports the rows transitioned per sweeper pass.
type SweepResultResponse struct {
	Ready     int64     `json:"ready"`
	Missed    int64     `json:"missed"`
	Abandoned int64     `json:"abandoned"`
	Expired   int64     `json:"expired"`
	RanAt     time.Time `json:"ran_at"`
}
