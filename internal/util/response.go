package util

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/config"
	"github.com/fadilmartias/talent-match/internal/response"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
	Meta       any
}

type OrderedSuccessResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Meta       any                  `json:"meta,omitempty"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code       int
	Message    string
	DevMessage string
	Details    any
	Trace      string
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

type FormError struct {
	Errors  map[string]string
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("form error: %s", e.Message)
}

func NewFormError(message string, errors map[string]string) *FormError {
	return &FormError{
		Message: message,
		Errors:  errors,
	}
}

// SuccessResponse writes the standard success envelope.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(OrderedSuccessResponse{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
		Meta:       params.Meta,
	})
}

// ErrorResponse writes the standard error envelope. Outside production the
// first error is echoed back as dev_message.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	return writeError(c, "", params, errs...)
}

func writeError(c *fiber.Ctx, kind apperror.Kind, params ErrorResponseFormat, errs ...error) error {
	resp := OrderedErrorResponse{
		Success: false,
		Code:    string(kind),
		Message: params.Message,
		Details: params.Details,
	}
	if !config.LoadAppConfig().IsProduction() {
		if len(errs) > 0 && errs[0] != nil {
			resp.DevMessage = errs[0].Error()
			if resp.Details == nil {
				resp.Details = errs[0]
			}
			if StatusOf(errs[0]) >= fiber.StatusInternalServerError {
				resp.Trace = string(debug.Stack())
			}
		}
		if params.DevMessage != "" {
			resp.DevMessage = params.DevMessage
		}
		if params.Trace != "" {
			resp.Trace = params.Trace
		}
	}

	errorCode := params.Code
	if errorCode == 0 {
		errorCode = fiber.StatusInternalServerError
	}
	return c.Status(errorCode).JSON(resp)
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	var formErr *FormError
	if errors.As(err, &formErr) {
		return fiber.StatusBadRequest
	}
	switch apperror.KindOf(err) {
	case apperror.KindProvider:
		return fiber.StatusBadGateway
	case apperror.KindMatchingUnavailable:
		return fiber.StatusServiceUnavailable
	case apperror.KindRateLimitExceeded:
		return fiber.StatusTooManyRequests
	case apperror.KindDuplicateApplication, apperror.KindInvalidTransition:
		return fiber.StatusConflict
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindInvalidArgument:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// AppErrorResponse renders err using its kind. Messages of server-side
// failures are replaced with fallback so that internals do not leak.
func AppErrorResponse(c *fiber.Ctx, fallback string, err error) error {
	status := StatusOf(err)
	params := ErrorResponseFormat{Code: status, Message: fallback}

	var formErr *FormError
	if errors.As(err, &formErr) {
		params.Message = formErr.Message
		params.Details = formErr.Errors
		return writeError(c, apperror.KindInvalidArgument, params, err)
	}

	appErr, ok := apperror.As(err)
	if ok && status < fiber.StatusInternalServerError {
		params.Message = appErr.Message
	}
	if ok && appErr.Kind == apperror.KindRateLimitExceeded {
		params.Details = fiber.Map{"remaining": appErr.Remaining}
	}
	return writeError(c, apperror.KindOf(err), params, err)
}
