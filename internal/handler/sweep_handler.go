package handler

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hireflow-go-api/internal/service"
	"github.com/noah-isme/hireflow-go-api/internal/utils"
)

// SweepHandler exposes the internal reconciliation trigger. It is shared-
// secret gated and mounted outside the public API groups.
type SweepHandler struct {
	sweeper service.SweeperService
	secret  string
	logger  zerolog.Logger
}

// NewSweepHandler constructs the handler.
func NewSweepHandler(sweeper service.SweeperService, secret string, logger zerolog.Logger) *SweepHandler {
	return &SweepHandler{
		sweeper: sweeper,
		secret:  secret,
		logger:  logger.With().Str("component", "sweep_handler").Logger(),
	}
}

// Register attaches the sweep endpoint to the router group.
func (h *SweepHandler) Register(router fiber.Router) {
	router.Post("/sweep", h.sweep)
}

func (h *SweepHandler) sweep(c *fiber.Ctx) error {
	provided := c.Get("X-Sweep-Secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	result := h.sweeper.RunOnce(c.Context())

	requestLogger(h.logger, c).Info().
		Int64("ready", result.Ready).
		Int64("missed", result.Missed).
		Int64("abandoned", result.Abandoned).
		Int64("expired", result.Expired).
		Msg("manual sweep executed")

	return utils.SendSuccess(c, "sweep completed", result)
}
