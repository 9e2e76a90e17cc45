package handler

import (
	"context"
	"time"

	"github.com/fadilmartias/talent-match/internal/dto"
	"github.com/fadilmartias/talent-match/internal/middleware"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/fadilmartias/talent-match/internal/response"
	"github.com/fadilmartias/talent-match/internal/usecase"
	"github.com/fadilmartias/talent-match/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ApplicationService interface {
	SubmitApplication(ctx context.Context, candidateID, jobID uuid.UUID, coverLetter string) (*model.Application, error)
	UpdateApplicationStatus(ctx context.Context, applicationID, actorID uuid.UUID, status model.ApplicationStatus) (*model.Application, error)
	GetApplication(ctx context.Context, applicationID, actorID uuid.UUID) (*model.Application, error)
	ListJobApplications(ctx context.Context, jobID, actorID uuid.UUID, page, pageSize int) (*usecase.ApplicationPage, error)
}

type ApplicationHandler struct {
	uc ApplicationService
}

func NewApplicationHandler(uc ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

func (h *ApplicationHandler) RegisterRoutes(router fiber.Router) {
	actor := middleware.RequireActor()
	router.Post("/applications", actor, middleware.RateLimiter(10, time.Minute), h.Submit)
	router.Get("/applications/:id", actor, h.Get)
	router.Patch("/applications/:id", actor, h.UpdateStatus)
	router.Get("/jobs/:id/applications", actor, h.ListForJob)
}

func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return util.AppErrorResponse(c, "invalid request body", util.NewFormError("invalid request body", nil))
	}
	jobID, err := parseUUID(req.JobID, "job_id")
	if err != nil {
		return util.AppErrorResponse(c, "invalid job_id", err)
	}

	app, err := h.uc.SubmitApplication(c.UserContext(), middleware.ActorID(c), jobID, req.CoverLetter)
	if err != nil {
		return util.AppErrorResponse(c, "failed to submit application", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success submit application",
		Data:    dto.NewApplicationDTO(app),
	})
}

func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "invalid id", err)
	}
	var req dto.UpdateApplicationStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return util.AppErrorResponse(c, "invalid request body",
			util.NewFormError("invalid request body", map[string]string{"status": "is required"}))
	}

	app, err := h.uc.UpdateApplicationStatus(c.UserContext(), id, middleware.ActorID(c), model.ApplicationStatus(req.Status))
	if err != nil {
		return util.AppErrorResponse(c, "failed to update application", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update application",
		Data:    dto.NewApplicationDTO(app),
	})
}

func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "invalid id", err)
	}
	app, err := h.uc.GetApplication(c.UserContext(), id, middleware.ActorID(c))
	if err != nil {
		return util.AppErrorResponse(c, "failed to get application", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get application",
		Data:    dto.NewApplicationDTO(app),
	})
}

func (h *ApplicationHandler) ListForJob(c *fiber.Ctx) error {
	jobID, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "invalid id", err)
	}
	page, err := h.uc.ListJobApplications(c.UserContext(), jobID, middleware.ActorID(c),
		c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	if err != nil {
		return util.AppErrorResponse(c, "failed to list applications", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list applications",
		Data:       dto.NewApplicationDTOs(page.Items),
		Pagination: response.NewPagination(page.Page, page.PageSize, len(page.Items), page.Total),
	})
}
