package handler

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/dto"
	"github.com/fadilmartias/talent-match/internal/middleware"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/fadilmartias/talent-match/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxResumeSize = 5 * 1024 * 1024

type ProfileService interface {
	ImportResume(ctx context.Context, profileID, actorID uuid.UUID, text string) (*model.Profile, error)
}

type ProfileHandler struct {
	uc      ProfileService
	extract func([]byte) (string, error)
}

func NewProfileHandler(uc ProfileService) *ProfileHandler {
	return &ProfileHandler{uc: uc, extract: util.ExtractPDFText}
}

func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/profiles/:id/resume", middleware.RequireActor(), h.ImportResume)
}

func (h *ProfileHandler) ImportResume(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "invalid id", err)
	}

	text, err := h.processFile(c, "resume")
	if err != nil {
		return util.AppErrorResponse(c, "failed to read résumé", err)
	}

	profile, err := h.uc.ImportResume(c.UserContext(), id, middleware.ActorID(c), text)
	if err != nil {
		return util.AppErrorResponse(c, "failed to import résumé", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success import résumé",
		Data:    dto.NewProfileDTO(profile),
	})
}

// processFile reads an uploaded PDF from the multipart field and returns its text.
func (h *ProfileHandler) processFile(c *fiber.Ctx, fieldName string) (string, error) {
	file, err := c.FormFile(fieldName)
	if err != nil {
		return "", util.NewFormError(fmt.Sprintf("%s file is required", fieldName),
			map[string]string{fieldName: "is required"})
	}
	if file.Size > maxResumeSize {
		return "", util.NewFormError(fmt.Sprintf("%s file size is too large (max 5MB)", fieldName),
			map[string]string{fieldName: "must be at most 5MB"})
	}
	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		return "", util.NewFormError(fmt.Sprintf("unsupported %s file type", fieldName),
			map[string]string{fieldName: "must be a PDF"})
	}

	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fieldName, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", fieldName, err)
	}

	text, err := h.extract(data)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInvalidArgument, err, fmt.Sprintf("failed to extract %s text", fieldName))
	}
	return text, nil
}
