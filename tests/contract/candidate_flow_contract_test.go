package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/handler"
	"github.com/noah-isme/hireflow-go-api/internal/models"
)

type stubAccessService struct {
	preflight dto.PreflightResponse
}

func (s stubAccessService) Authorize(context.Context, string, string) (models.Interview, error) {
	return models.Interview{}, nil
}

func (s stubAccessService) Preflight(context.Context, string, string) (dto.PreflightResponse, error) {
	return s.preflight, nil
}

func (s stubAccessService) Start(context.Context, string, string, bool) (dto.StartInterviewResponse, error) {
	return dto.StartInterviewResponse{}, nil
}

func TestPreflightContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "preflight.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	scheduledAt := time.Now().Add(30 * time.Minute).UTC()
	expiresAt := scheduledAt.Add(24 * time.Hour)
	serviceStub := stubAccessService{preflight: dto.PreflightResponse{
		Status:            models.InterviewStatusScheduled,
		Reason:            "interview has not opened yet",
		ScheduledAt:       &scheduledAt,
		ExpiresAt:         &expiresAt,
		MinutesUntilStart: 25,
	}}

	flowHandler := handler.NewCandidateFlowHandler(serviceStub, nil, zerolog.Nop())

	app := fiber.New()
	flowHandler.Register(app.Group("/api/v1/interviews"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/0a1b2c3d4e5f/preflight", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
