package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hireflow-go-api/internal/service"
	"github.com/noah-isme/hireflow-go-api/internal/utils"
)

// BoardHandler serves the per-job pipeline board.
type BoardHandler struct {
	service service.BoardService
	logger  zerolog.Logger
}

// NewBoardHandler constructs the handler.
func NewBoardHandler(service service.BoardService, logger zerolog.Logger) *BoardHandler {
	return &BoardHandler{
		service: service,
		logger:  logger.With().Str("component", "board_handler").Logger(),
	}
}

// Register attaches the board endpoint to the router group.
func (h *BoardHandler) Register(router fiber.Router) {
	router.Get("/:id/board", h.board)
}

func (h *BoardHandler) board(c *fiber.Ctx) error {
	jobID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.GetBoard(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "job not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "pipeline board retrieved", result)
}
