package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hireflow-go-api/internal/dto"
	"github.com/noah-isme/hireflow-go-api/internal/service"
	"github.com/noah-isme/hireflow-go-api/internal/utils"
)

// InterviewAdminHandler wires the staff-facing interview lifecycle routes.
type InterviewAdminHandler struct {
	service service.ScheduleService
	logger  zerolog.Logger
}

// NewInterviewAdminHandler constructs the handler.
func NewInterviewAdminHandler(service service.ScheduleService, logger zerolog.Logger) *InterviewAdminHandler {
	return &InterviewAdminHandler{
		service: service,
		logger:  logger.With().Str("component", "interview_admin_handler").Logger(),
	}
}

// Register attaches interview admin endpoints to the router group.
func (h *InterviewAdminHandler) Register(router fiber.Router) {
	router.Post("", h.schedule)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id/reschedule", h.reschedule)
	router.Post("/:id/cancel", h.cancel)
	router.Post("/:id/review", h.review)
}

func (h *InterviewAdminHandler) schedule(c *fiber.Ctx) error {
	var payload dto.ScheduleInterviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Schedule(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "interview scheduled", result)
}

func (h *InterviewAdminHandler) list(c *fiber.Ctx) error {
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

	candidateID, err := parseOptionalQueryUint(c, "candidate_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	jobID, err := parseOptionalQueryUint(c, "job_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	request := dto.InterviewListRequest{
		CandidateID: candidateID,
		JobID:       jobID,
		Page:        page,
		PageSize:    pageSize,
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		request.Status = &status
	}

	result, err := h.service.List(c.Context(), request)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interviews retrieved", result)
}

func (h *InterviewAdminHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview retrieved", result)
}

func (h *InterviewAdminHandler) reschedule(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RescheduleInterviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Reschedule(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview rescheduled", result)
}

func (h *InterviewAdminHandler) cancel(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Cancel(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview cancelled", result)
}

func (h *InterviewAdminHandler) review(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.MarkReviewed(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview marked reviewed", result)
}

func (h *InterviewAdminHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var invalidStatus *service.InvalidStatusError
	var exists *service.InterviewExistsError

	switch {
	case errors.Is(err, service.ErrCandidateNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "candidate not found")
	case errors.Is(err, service.ErrJobNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "job not found")
	case errors.Is(err, service.ErrInterviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "interview not found")
	case errors.Is(err, service.ErrInvalidScheduleTime):
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrInvalidScheduleTime.Error())
	case errors.As(err, &exists):
		return utils.SendError(c, fiber.StatusConflict, exists.Error())
	case errors.As(err, &invalidStatus):
		return utils.SendError(c, fiber.StatusConflict, invalidStatus.Error())
	case errors.Is(err, service.ErrConflict):
		return utils.SendError(c, fiber.StatusConflict, service.ErrConflict.Error())
	case errors.Is(err, service.ErrQuestionGenerationFailed):
		return utils.SendError(c, fiber.StatusBadGateway, "question generation is currently unavailable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
