package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across interview lifecycle services. Token failures
// are deliberately indistinguishable from missing rows so callers cannot
// probe for token existence.
var (
	ErrCandidateNotFound        = errors.New("candidate not found")
	ErrJobNotFound              = errors.New("job not found")
	ErrInterviewNotFound        = errors.New("interview not found")
	ErrQuestionNotFound         = errors.New("question not found")
	ErrInvalidToken             = errors.New("invalid interview token")
	ErrInvalidScheduleTime      = errors.New("scheduled time must be in the future")
	ErrInterviewExpired         = errors.New("interview has expired")
	ErrAlreadyCompleted         = errors.New("interview already completed")
	ErrQuestionGenerationFailed = errors.New("question generation failed")
	ErrUpstreamUnavailable      = errors.New("evaluation service unavailable")
	ErrConflict                 = errors.New("interview was modified concurrently")
)

// InvalidStatusError reports an operation attempted in the wrong lifecycle
// state. The current status lets callers present a precise message.
type InvalidStatusError struct {
	Operation string
	Current   string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("cannot %s interview in status %q", e.Operation, e.Current)
}

// InterviewExistsError reports a second active interview for the same
// candidate/job pair, carrying the existing row so the caller can act on it.
type InterviewExistsError struct {
	ID     uint
	Status string
}

func (e *InterviewExistsError) Error() string {
	return fmt.Sprintf("an active interview already exists (id=%d, status=%s)", e.ID, e.Status)
}

// TooEarlyError reports a start attempt before the grace window opens.
type TooEarlyError struct {
	MinutesUntilStart int
}

func (e *TooEarlyError) Error() string {
	return fmt.Sprintf("interview starts in %d minutes", e.MinutesUntilStart)
}
