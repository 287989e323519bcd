package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/service"
	"github.com/skillport/skillport-api/internal/utils"
)

// ExtensionHandler receives submission batches from the browser extension.
type ExtensionHandler struct {
	service   service.ExtensionSyncService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewExtensionHandler constructs the handler.
func NewExtensionHandler(service service.ExtensionSyncService, validator *validator.Validate, logger zerolog.Logger) *ExtensionHandler {
	return &ExtensionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "extension_handler").Logger(),
	}
}

// Register attaches extension endpoints to the router group.
func (h *ExtensionHandler) Register(router fiber.Router) {
	router.Post("/sync", h.sync)
}

func (h *ExtensionHandler) sync(c *fiber.Ctx) error {
	var payload dto.ExtensionSyncRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if payload.UserID == 0 {
		payload.UserID = userIDFromContext(c)
	}

	response, err := h.service.Sync(requestContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("extension sync failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "submissions synced", response)
}
