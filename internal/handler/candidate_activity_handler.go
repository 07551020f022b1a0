package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hireflow-go-api/internal/service"
	"github.com/noah-isme/hireflow-go-api/internal/utils"
)

// CandidateActivityHandler serves the candidate audit trail.
type CandidateActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewCandidateActivityHandler constructs the handler.
func NewCandidateActivityHandler(service service.ActivityService, logger zerolog.Logger) *CandidateActivityHandler {
	return &CandidateActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "candidate_activity_handler").Logger(),
	}
}

// Register attaches the activity feed endpoint to the router group.
func (h *CandidateActivityHandler) Register(router fiber.Router) {
	router.Get("/:id/activities", h.list)
}

func (h *CandidateActivityHandler) list(c *fiber.Ctx) error {
	candidateID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	result, err := h.service.ListForCandidate(c.Context(), candidateID, page, pageSize, strings.TrimSpace(c.Query("type")))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "candidate activities retrieved", result)
}
