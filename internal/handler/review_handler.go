package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sai-review-api/internal/dto"
	"github.com/noah-isme/sai-review-api/internal/service"
	"github.com/noah-isme/sai-review-api/internal/utils"
)

// ReviewHandler exposes reviewer endpoints: workflow transitions, dashboard
// statistics and search.
type ReviewHandler struct {
	reviews   service.ReviewService
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewReviewHandler constructs a review handler.
func NewReviewHandler(reviews service.ReviewService, dashboard service.DashboardService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:   reviews,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches the reviewer routes.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Post("/submissions/:id/claim", h.claim)
	router.Post("/submissions/:id/decision", h.decide)
	router.Get("/statistics", h.statistics)
	router.Get("/search", h.search)
}

func (h *ReviewHandler) claim(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	submission, err := h.reviews.Claim(c.Context(), c.Params("id"), actor)
	if err != nil {
		return respondError(c, h.logger, err, "failed to claim submission")
	}

	return utils.SendSuccess(c, "submission claimed", submission)
}

func (h *ReviewHandler) decide(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ReviewDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.Outcome = strings.ToLower(strings.TrimSpace(payload.Outcome))

	submission, err := h.reviews.Decide(c.Context(), c.Params("id"), payload, actor)
	if err != nil {
		return respondError(c, h.logger, err, "failed to record decision")
	}

	return utils.SendSuccess(c, "decision recorded", submission)
}

func (h *ReviewHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.dashboard.Statistics(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute statistics")
	}

	return utils.SendSuccess(c, "statistics retrieved", stats)
}

func (h *ReviewHandler) search(c *fiber.Ctx) error {
	minScore, err := parseQueryFloat(c, "min_score")
	if err != nil {
		return respondError(c, h.logger, err, "failed to search submissions")
	}

	query := dto.SearchQuery{
		Query:    c.Query("q"),
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Sport:    c.Query("sport"),
		MinScore: minScore,
	}

	results, err := h.dashboard.Search(c.Context(), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to search submissions")
	}

	return utils.OK(c, results, "search completed", fiber.Map{"total": len(results)})
}
