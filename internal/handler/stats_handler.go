package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillport/skillport-api/internal/service"
	"github.com/skillport/skillport-api/internal/utils"
)

// StatsHandler exposes validation statistics and the mentor dashboard.
type StatsHandler struct {
	stats     service.ValidationStatsService
	dashboard service.MentorDashboardService
	logger    zerolog.Logger
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(stats service.ValidationStatsService, dashboard service.MentorDashboardService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:     stats,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "stats_handler").Logger(),
	}
}

// Register attaches stats endpoints to the router group.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("/users/:id/validation-stats", h.userStats)
	router.Get("/mentors/:id/validation-stats", h.mentorStats)
	router.Get("/mentors/:id/dashboard", h.mentorDashboard)
}

func (h *StatsHandler) userStats(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.stats.GetUserStats(requestContext(c), id)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "user validation stats", stats)
}

func (h *StatsHandler) mentorStats(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.stats.GetMentorStats(requestContext(c), id)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "mentor validation stats", stats)
}

func (h *StatsHandler) mentorDashboard(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	dashboard, err := h.dashboard.GetDashboard(requestContext(c), id)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "mentor dashboard", dashboard)
}

func (h *StatsHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("stats request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
