package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/service"
	"github.com/noah-isme/hireflow-go-api/internal/utils"
)

// CandidateFlowHandler serves the public token-gated interview flow. The
// :route segment is either the bearer token itself (public link) or a numeric
// interview id combined with a token query parameter.
type CandidateFlowHandler struct {
	access     service.AccessService
	submission service.SubmissionService
	logger     zerolog.Logger
}

// NewCandidateFlowHandler constructs the handler.
func NewCandidateFlowHandler(access service.AccessService, submission service.SubmissionService, logger zerolog.Logger) *CandidateFlowHandler {
	return &CandidateFlowHandler{
		access:     access,
		submission: submission,
		logger:     logger.With().Str("component", "candidate_flow_handler").Logger(),
	}
}

// Register attaches candidate flow endpoints to the router group.
func (h *CandidateFlowHandler) Register(router fiber.Router) {
	router.Get("/:route/preflight", h.preflight)
	router.Post("/:route/start", h.start)
	router.Put("/:route/questions/:questionID/answer", h.saveAnswer)
	router.Post("/:route/submit", h.submit)
}

func (h *CandidateFlowHandler) preflight(c *fiber.Ctx) error {
	result, err := h.access.Preflight(c.Context(), c.Params("route"), c.Query("token"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview preflight", result)
}

func (h *CandidateFlowHandler) start(c *fiber.Ctx) error {
	var payload dto.StartInterviewRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	result, err := h.access.Start(c.Context(), c.Params("route"), c.Query("token"), payload.ForceStart)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview started", result)
}

func (h *CandidateFlowHandler) saveAnswer(c *fiber.Ctx) error {
	questionID, err := parseUintParam(c, "questionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SaveAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.submission.SaveAnswer(c.Context(), c.Params("route"), c.Query("token"), questionID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "answer saved", result)
}

func (h *CandidateFlowHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitInterviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.submission.Submit(c.Context(), c.Params("route"), c.Query("token"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview submitted", result)
}

func (h *CandidateFlowHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var invalidStatus *service.InvalidStatusError
	var tooEarly *service.TooEarlyError

	switch {
	// An invalid token is answered exactly like a missing interview.
	case errors.Is(err, service.ErrInvalidToken):
		return utils.SendError(c, fiber.StatusNotFound, "interview not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrInterviewExpired):
		return utils.SendError(c, fiber.StatusGone, "interview has expired")
	case errors.Is(err, service.ErrAlreadyCompleted):
		return utils.SendError(c, fiber.StatusConflict, "interview already completed")
	case errors.As(err, &tooEarly):
		return utils.SendError(c, fiber.StatusTooEarly, tooEarly.Error())
	case errors.As(err, &invalidStatus):
		return utils.SendError(c, fiber.StatusConflict, invalidStatus.Error())
	case errors.Is(err, service.ErrConflict):
		return utils.SendError(c, fiber.StatusConflict, service.ErrConflict.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
