package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sai-review-api/internal/dto"
	"github.com/noah-isme/sai-review-api/internal/service"
	"github.com/noah-isme/sai-review-api/internal/utils"
)

// UserHandler exposes athlete profile endpoints.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs a user handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches the user routes.
func (h *UserHandler) Register(router fiber.Router) {
	router.Post("", h.register)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Get("/:id/submissions", h.submissions)
	router.Get("/:id/summary", h.summary)
}

func (h *UserHandler) register(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Register(c.Context(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to register user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user registered", user)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	users, err := h.service.List(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list users")
	}

	return utils.OK(c, users, "users retrieved", fiber.Map{"total": len(users)})
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	user, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load user")
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Update(c.Context(), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update user")
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *UserHandler) submissions(c *fiber.Ctx) error {
	submissions, err := h.service.Submissions(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list user submissions")
	}

	return utils.OK(c, submissions, "submissions retrieved", fiber.Map{"total": len(submissions)})
}

func (h *UserHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to summarise user")
	}

	return utils.SendSuccess(c, "summary retrieved", summary)
}
