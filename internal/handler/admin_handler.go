package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sqlgrader-api/internal/dto"
	"github.com/noah-isme/sqlgrader-api/internal/service"
	"github.com/noah-isme/sqlgrader-api/internal/utils"
)

// AdminHandler exposes administrative endpoints.
type AdminHandler struct {
	regrade   service.RegradeService
	questions service.QuestionService
	logger    zerolog.Logger
}

// NewAdminHandler builds an admin handler instance.
func NewAdminHandler(regrade service.RegradeService, questions service.QuestionService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		regrade:   regrade,
		questions: questions,
		logger:    logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Post("/regrade", h.regradeAll)
	router.Post("/questions/seed", h.seedQuestions)
}

func (h *AdminHandler) regradeAll(c *fiber.Ctx) error {
	report, err := h.regrade.RegradeAll(c.Context(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "regrade completed", report)
}

func (h *AdminHandler) seedQuestions(c *fiber.Ctx) error {
	inserted, err := h.questions.Seed(c.Context(), c.Body())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "questions seeded", dto.SeedResponse{Inserted: inserted})
}

func (h *AdminHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedInvalid):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrGradingUnavailable):
		requestLogger(h.logger, c).Error().Err(err).Msg("grading oracle unavailable")
		return utils.SendError(c, fiber.StatusBadGateway, "grading unavailable")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
