package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/config"
	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/handler"
	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
	"github.com/noah-isme/hireflow-go-api/internal/router"
	"github.com/noah-isme/hireflow-go-api/internal/service"
	"github.com/noah-isme/hireflow-go-api/pkg/ai"
)

type fixedScorer struct{}

func (fixedScorer) Score(_ context.Context, _ ai.ScoreInput) (ai.ScoreResult, error) {
	return ai.ScoreResult{Score: 8, Feedback: "clear and complete"}, nil
}

type noopOutbox struct{}

func (noopOutbox) Enqueue(_ context.Context, _ string, _ map[string]interface{}) error {
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupCandidateFlowApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Candidate{},
		&models.Job{},
		&models.Interview{},
		&models.Question{},
		&models.CandidateActivity{},
		&models.OutboxEvent{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	interviewRepo := repository.NewInterviewRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	activityRepo := repository.NewCandidateActivityRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	accessService := service.NewAccessService(interviewRepo, questionRepo, activityService, logger, service.DefaultLifecyclePolicy())
	submissionService := service.NewSubmissionService(service.SubmissionServiceConfig{
		Access:       accessService,
		Interviews:   interviewRepo,
		Questions:    questionRepo,
		Candidates:   candidateRepo,
		Scorer:       fixedScorer{},
		Activity:     activityService,
		Outbox:       noopOutbox{},
		Validator:    validate,
		Logger:       logger,
		ScoreTimeout: time.Second,
		Concurrency:  2,
	})
	sweeperService := service.NewSweeperService(interviewRepo, activityService, noopOutbox{}, logger, service.DefaultLifecyclePolicy())

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		CandidateFlowHandler: handler.NewCandidateFlowHandler(accessService, submissionService, logger),
		SweepHandler:         handler.NewSweepHandler(sweeperService, "sweep-secret", logger),
	})

	return app, db
}

func seedInterview(t *testing.T, db *gorm.DB, status string) (models.Interview, []models.Question) {
	t.Helper()

	candidate := models.Candidate{Name: "Grace Hopper", Email: "grace@example.com", Stage: models.StageInterview}
	require.NoError(t, db.Create(&candidate).Error)
	job := models.Job{Title: "Platform Engineer", Status: models.JobStatusOpen}
	require.NoError(t, db.Create(&job).Error)

	expiresAt := time.Now().Add(12 * time.Hour)
	interview := models.Interview{
		CandidateID: candidate.ID,
		JobID:       job.ID,
		AccessToken: "0123456789abcdef0123456789abcdef0123456789abcdef",
		Status:      status,
		ExpiresAt:   &expiresAt,
	}
	require.NoError(t, db.Create(&interview).Error)

	questions := []models.Question{
		{InterviewID: interview.ID, Position: 1, Prompt: "Describe a production incident you handled", EvaluationStatus: models.EvaluationStatusPending},
		{InterviewID: interview.ID, Position: 2, Prompt: "How do you approach capacity planning", EvaluationStatus: models.EvaluationStatusPending},
	}
	require.NoError(t, db.Create(&questions).Error)

	return interview, questions
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestCandidateFlowPreflight(t *testing.T) {
	app, db := setupCandidateFlowApp(t)
	interview, _ := seedInterview(t, db, models.InterviewStatusReady)

	req := httptest.NewRequest("GET", "/api/v1/interviews/"+interview.AccessToken+"/preflight", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)

	var preflight dto.PreflightResponse
	require.NoError(t, json.Unmarshal(env.Data, &preflight))
	require.True(t, preflight.CanStart)
	require.Equal(t, models.InterviewStatusReady, preflight.Status)
}

func TestCandidateFlowInvalidTokenIs404(t *testing.T) {
	app, db := setupCandidateFlowApp(t)
	seedInterview(t, db, models.InterviewStatusReady)

	req := httptest.NewRequest("GET", "/api/v1/interviews/ffffffffffffffff/preflight", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCandidateFlowStartAnswerSubmit(t *testing.T) {
	app, db := setupCandidateFlowApp(t)
	interview, questions := seedInterview(t, db, models.InterviewStatusReady)
	base := "/api/v1/interviews/" + interview.AccessToken

	resp, err := app.Test(httptest.NewRequest("POST", base+"/start", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var started dto.StartInterviewResponse
	require.NoError(t, json.Unmarshal(env.Data, &started))
	require.Len(t, started.Questions, 2)

	answer, err := json.Marshal(dto.SaveAnswerRequest{Answer: "We mitigated with a rollback and added a canary stage."})
	require.NoError(t, err)
	saveURL := base + "/questions/" + itoa(questions[0].ID) + "/answer"
	saveReq := httptest.NewRequest("PUT", saveURL, bytes.NewReader(answer))
	saveReq.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(saveReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	submission, err := json.Marshal(dto.SubmitInterviewRequest{Answers: []dto.SubmittedAnswer{
		{QuestionID: questions[0].ID, Answer: "We mitigated with a rollback."},
		{QuestionID: questions[1].ID, Answer: "Forecast from historical load plus headroom."},
	}})
	require.NoError(t, err)
	submitReq := httptest.NewRequest("POST", base+"/submit", bytes.NewReader(submission))
	submitReq.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(submitReq, 10000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env = decodeEnvelope(t, resp)
	var result dto.SubmitInterviewResponse
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Equal(t, models.InterviewStatusCompleted, result.Status)
	require.Equal(t, 80, result.OverallScore)
	require.Equal(t, models.RecommendationYes, result.Recommendation)

	// Resubmitting is rejected.
	submitAgain := httptest.NewRequest("POST", base+"/submit", bytes.NewReader(submission))
	submitAgain.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(submitAgain)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSweepEndpointRequiresSecret(t *testing.T) {
	app, _ := setupCandidateFlowApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/internal/sweep", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	authorized := httptest.NewRequest("POST", "/api/internal/sweep", nil)
	authorized.Header.Set("X-Sweep-Secret", "sweep-secret")
	resp, err = app.Test(authorized)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var result dto.SweepResultResponse
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.False(t, result.RanAt.IsZero())
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
