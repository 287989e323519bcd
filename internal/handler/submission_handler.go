package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/middleware"
	"github.com/skillport/skillport-api/internal/repository"
	"github.com/skillport/skillport-api/internal/service"
	"github.com/skillport/skillport-api/internal/utils"
)

// SubmissionHandler wires submission HTTP routes.
type SubmissionHandler struct {
	service   service.SubmissionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, validator *validator.Validate, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group. Flag review and
// feedback are mentor actions.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/flagged", middleware.RequireRole("mentor", "admin"), h.listFlagged)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Patch("/:id/flag", middleware.RequireRole("mentor", "admin"), h.reviewFlag)
	router.Patch("/:id/feedback", middleware.RequireRole("mentor", "admin"), h.addFeedback)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	filter := repository.SubmissionFilter{
		Platform:   c.Query("platform"),
		Difficulty: c.Query("difficulty"),
		Verdict:    c.Query("verdict"),
	}

	if userID := c.QueryInt("user_id"); userID > 0 {
		id := uint(userID)
		filter.UserID = &id
	}
	if flagged := c.Query("flagged"); flagged != "" {
		value := flagged == "true"
		filter.Flagged = &value
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}
	filter.Page = page
	filter.PageSize = pageSize

	submissions, total, err := h.service.List(requestContext(c), filter)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", fiber.Map{
		"submissions": submissions,
		"total":       total,
	})
}

func (h *SubmissionHandler) listFlagged(c *fiber.Ctx) error {
	submissions, err := h.service.ListFlagged(requestContext(c), c.Query("status"))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "flagged submissions retrieved", submissions)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(requestContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if payload.UserID == 0 {
		payload.UserID = userIDFromContext(c)
	}

	submission, outcome, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission recorded", fiber.Map{
		"submission": submission,
		"validation": outcome,
	})
}

func (h *SubmissionHandler) reviewFlag(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FlagReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.ReviewFlag(requestContext(c), id, userIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrSubmissionNotFlagged):
			return utils.SendError(c, fiber.StatusConflict, "submission not flagged")
		case errors.Is(err, service.ErrInvalidFlagTransition):
			return utils.SendError(c, fiber.StatusConflict, "invalid flag status transition")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "flag review updated", submission)
}

func (h *SubmissionHandler) addFeedback(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionFeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.AddFeedback(requestContext(c), id, payload)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "feedback added", submission)
}

func (h *SubmissionHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("submission request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
