package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sai-review-api/internal/dto"
	"github.com/noah-isme/sai-review-api/internal/service"
	"github.com/noah-isme/sai-review-api/internal/utils"
)

// SubmissionHandler manages athlete submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
}

// RegisterGrading attaches the score evaluation route.
func (h *SubmissionHandler) RegisterGrading(router fiber.Router) {
	router.Get("/evaluate", h.evaluate)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	filter := dto.SubmissionFilter{
		UserID: c.Query("user_id"),
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Sport:  c.Query("sport"),
	}

	submissions, err := h.service.List(c.Context(), filter)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list submissions")
	}

	return utils.OK(c, submissions, "submissions retrieved", fiber.Map{"total": len(submissions)})
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(payload.UserID) == "" {
		payload.UserID = userIDFromContext(c)
	}

	submission, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create submission")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	submission, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load submission")
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) evaluate(c *fiber.Ctx) error {
	score, err := parseQueryFloat(c, "score")
	if err != nil {
		return respondError(c, h.logger, err, "failed to evaluate score")
	}
	if score == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "score is required")
	}

	result, err := h.service.Evaluate(c.Context(), *score)
	if err != nil {
		return respondError(c, h.logger, err, "failed to evaluate score")
	}

	return utils.SendSuccess(c, "score evaluated", result)
}
