package handler

import (
	"context"

	"github.com/fadilmartias/talent-match/internal/middleware"
	"github.com/fadilmartias/talent-match/internal/usecase"
	"github.com/fadilmartias/talent-match/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RecommendationService interface {
	Recommend(ctx context.Context, kind usecase.AnchorKind, anchorID uuid.UUID, limit int) (*usecase.RecommendationPage, error)
	Stats() usecase.Stats
}

type RecommendationHandler struct {
	uc RecommendationService
}

func NewRecommendationHandler(uc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{uc: uc}
}

func (h *RecommendationHandler) RegisterRoutes(router fiber.Router) {
	actor := middleware.RequireActor()
	router.Get("/recommendations/:kind/:id", actor, h.Recommend)
	router.Get("/stats", actor, h.Stats)
}

func (h *RecommendationHandler) Recommend(c *fiber.Ctx) error {
	kind, err := usecase.ParseAnchorKind(c.Params("kind"))
	if err != nil {
		return util.AppErrorResponse(c, "invalid anchor kind", err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "invalid id", err)
	}

	page, err := h.uc.Recommend(c.UserContext(), kind, id, c.QueryInt("limit", 0))
	if err != nil {
		return util.AppErrorResponse(c, "failed to get recommendations", err)
	}

	message := "Success get recommendations"
	if page.Degraded {
		message = "Matching is temporarily unavailable, showing the most recent entries"
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: message,
		Data:    page,
	})
}

func (h *RecommendationHandler) Stats(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get matching stats",
		Data:    h.uc.Stats(),
	})
}
