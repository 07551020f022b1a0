package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

type accessFixture struct {
	interviews *memoryInterviewRepo
	questions  *memoryQuestionRepo
	recorder   *recorderStub
	svc        *accessService
}

func newAccessFixture(t *testing.T) *accessFixture {
	t.Helper()

	candidates := newMemoryCandidateRepo(models.Candidate{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"})
	jobs := newMemoryJobRepo(models.Job{ID: 1, Title: "Backend Engineer"})

	fixture := &accessFixture{
		interviews: newMemoryInterviewRepo(candidates, jobs),
		questions:  newMemoryQuestionRepo(),
		recorder:   &recorderStub{},
	}

	svc := NewAccessService(fixture.interviews, fixture.questions, fixture.recorder, testLogger(), DefaultLifecyclePolicy())
	fixture.svc = svc.(*accessService)
	return fixture
}

func (f *accessFixture) seedInterview(t *testing.T, status string, scheduledAt, expiresAt *time.Time) models.Interview {
	t.Helper()
	interview := models.Interview{
		CandidateID: 1,
		JobID:       1,
		AccessToken: "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4",
		Status:      status,
		ScheduledAt: scheduledAt,
		ExpiresAt:   expiresAt,
	}
	require.NoError(t, f.interviews.Create(context.Background(), &interview))
	return interview
}

func TestAccessServiceAuthorizeBothRouteShapes(t *testing.T) {
	fixture := newAccessFixture(t)
	interview := fixture.seedInterview(t, models.InterviewStatusReady, nil, nil)

	byToken, err := fixture.svc.Authorize(context.Background(), interview.AccessToken, "")
	require.NoError(t, err)
	require.Equal(t, interview.ID, byToken.ID)

	byID, err := fixture.svc.Authorize(context.Background(), fmt.Sprintf("%d", interview.ID), interview.AccessToken)
	require.NoError(t, err)
	require.Equal(t, interview.ID, byID.ID)
}

func TestAccessServiceFailuresAreIndistinguishable(t *testing.T) {
	fixture := newAccessFixture(t)
	interview := fixture.seedInterview(t, models.InterviewStatusReady, nil, nil)

	// Unknown token, wrong token for a real id, non-numeric id: all the
	// same error.
	_, err := fixture.svc.Authorize(context.Background(), "ffffffffffffffff", "")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = fixture.svc.Authorize(context.Background(), fmt.Sprintf("%d", interview.ID), "wrong-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = fixture.svc.Authorize(context.Background(), "not-a-number", "token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessServiceStartTooEarly(t *testing.T) {
	fixture := newAccessFixture(t)

	now := time.Now()
	scheduledAt := now.Add(9 * time.Minute)
	expiresAt := scheduledAt.Add(24 * time.Hour)
	interview := fixture.seedInterview(t, models.InterviewStatusScheduled, &scheduledAt, &expiresAt)

	fixture.svc.now = func() time.Time { return now }

	_, err := fixture.svc.Start(context.Background(), interview.AccessToken, "", false)
	var tooEarly *TooEarlyError
	require.ErrorAs(t, err, &tooEarly)
	require.Equal(t, 4, tooEarly.MinutesUntilStart)

	// Still untouched.
	stored, err := fixture.interviews.GetByID(context.Background(), interview.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusScheduled, stored.Status)
}

func TestAccessServiceForceStartBypassesGrace(t *testing.T) {
	fixture := newAccessFixture(t)

	now := time.Now()
	scheduledAt := now.Add(9 * time.Minute)
	expiresAt := scheduledAt.Add(24 * time.Hour)
	interview := fixture.seedInterview(t, models.InterviewStatusScheduled, &scheduledAt, &expiresAt)

	fixture.svc.now = func() time.Time { return now }

	result, err := fixture.svc.Start(context.Background(), interview.AccessToken, "", true)
	require.NoError(t, err)
	require.Equal(t, interview.ID, result.InterviewID)

	stored, err := fixture.interviews.GetByID(context.Background(), interview.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusInProgress, stored.Status)
	require.NotNil(t, stored.StartedAt)
	require.Contains(t, fixture.recorder.typesSeen(), models.ActivityInterviewStarted)
}

func TestAccessServiceStartExpiredForcesExpiry(t *testing.T) {
	fixture := newAccessFixture(t)

	past := time.Now().Add(-25 * time.Hour)
	expiresAt := past.Add(24 * time.Hour)
	interview := fixture.seedInterview(t, models.InterviewStatusReady, &past, &expiresAt)

	_, err := fixture.svc.Start(context.Background(), interview.AccessToken, "", true)
	require.ErrorIs(t, err, ErrInterviewExpired)

	stored, err := fixture.interviews.GetByID(context.Background(), interview.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusExpired, stored.Status)
}

func TestAccessServiceStartRejectsTerminal(t *testing.T) {
	fixture := newAccessFixture(t)
	interview := fixture.seedInterview(t, models.InterviewStatusCancelled, nil, nil)

	_, err := fixture.svc.Start(context.Background(), interview.AccessToken, "", false)
	var invalid *InvalidStatusError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, models.InterviewStatusCancelled, invalid.Current)
}

func TestAccessServicePreflightIsReadOnly(t *testing.T) {
	fixture := newAccessFixture(t)

	now := time.Now()
	scheduledAt := now.Add(9 * time.Minute)
	expiresAt := scheduledAt.Add(24 * time.Hour)
	interview := fixture.seedInterview(t, models.InterviewStatusScheduled, &scheduledAt, &expiresAt)

	fixture.svc.now = func() time.Time { return now }

	result, err := fixture.svc.Preflight(context.Background(), interview.AccessToken, "")
	require.NoError(t, err)
	require.False(t, result.CanStart)
	require.Equal(t, 4, result.MinutesUntilStart)
	require.Equal(t, models.InterviewStatusScheduled, result.Status)

	stored, err := fixture.interviews.GetByID(context.Background(), interview.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusScheduled, stored.Status)
	require.Nil(t, stored.StartedAt)
}

func TestAccessServicePreflightOpenWindow(t *testing.T) {
	fixture := newAccessFixture(t)

	now := time.Now()
	scheduledAt := now.Add(3 * time.Minute)
	expiresAt := scheduledAt.Add(24 * time.Hour)
	interview := fixture.seedInterview(t, models.InterviewStatusScheduled, &scheduledAt, &expiresAt)

	fixture.svc.now = func() time.Time { return now }

	result, err := fixture.svc.Preflight(context.Background(), interview.AccessToken, "")
	require.NoError(t, err)
	require.True(t, result.CanStart)
	require.Zero(t, result.MinutesUntilStart)
}
