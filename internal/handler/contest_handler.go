package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/middleware"
	"github.com/skillport/skillport-api/internal/service"
	"github.com/skillport/skillport-api/internal/utils"
)

// ContestHandler wires contest HTTP routes.
type ContestHandler struct {
	service   service.ContestService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewContestHandler constructs the handler.
func NewContestHandler(service service.ContestService, validator *validator.Validate, logger zerolog.Logger) *ContestHandler {
	return &ContestHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "contest_handler").Logger(),
	}
}

// Register attaches contest endpoints to the router group. Anyone can browse;
// only mentors curate the contest calendar.
func (h *ContestHandler) Register(router fiber.Router) {
	mentorOnly := middleware.RequireRole("mentor", "admin")

	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", mentorOnly, h.create)
	router.Patch("/:id", mentorOnly, h.update)
	router.Delete("/:id", mentorOnly, h.delete)
}

func (h *ContestHandler) list(c *fiber.Ctx) error {
	contests, err := h.service.List(requestContext(c), c.Query("platform"))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "contests retrieved", contests)
}

func (h *ContestHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	contest, err := h.service.Get(requestContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrContestNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "contest not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "contest retrieved", contest)
}

func (h *ContestHandler) create(c *fiber.Ctx) error {
	var payload dto.ContestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	creatorID := userIDFromContext(c)
	if creatorID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	contest, err := h.service.Create(requestContext(c), creatorID, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "contest created", contest)
}

func (h *ContestHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ContestUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contest, err := h.service.Update(requestContext(c), id, payload)
	if err != nil {
		if errors.Is(err, service.ErrContestNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "contest not found")
		}
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "contest updated", contest)
}

func (h *ContestHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(requestContext(c), id); err != nil {
		if errors.Is(err, service.ErrContestNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "contest not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "contest deleted", nil)
}

func (h *ContestHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("contest request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
