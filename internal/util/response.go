package util

import (
	"github.com/fadilmartias/cv-optimizer/internal/apperror"
	"github.com/fadilmartias/cv-optimizer/internal/config"
	"github.com/fadilmartias/cv-optimizer/internal/response"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponseFormat struct {
	Code       int
	Data       any
	Pagination *response.Pagination
}

type OrderedSuccessResponse struct {
	Success    bool                 `json:"success"`
	Data       any                  `json:"data,omitempty"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
}

type ErrorResponseFormat struct {
	Code      int
	ErrorCode apperror.Code
	Message   string
	Details   string
}

type ErrorBody struct {
	Code    apperror.Code `json:"code"`
	Message string        `json:"message"`
	Details string        `json:"details,omitempty"`
}

type OrderedErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// SuccessResponse writes the standard success envelope. Code defaults to 200.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(OrderedSuccessResponse{
		Success:    true,
		Data:       params.Data,
		Pagination: params.Pagination,
	})
}

// ErrorResponse writes the standard error envelope. Details and the text of
// errs[0] are only exposed outside production.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	body := ErrorBody{
		Code:    params.ErrorCode,
		Message: params.Message,
	}
	if body.Code == "" {
		body.Code = apperror.CodeInternal
	}
	if !config.LoadAppConfig().IsProduction() {
		body.Details = params.Details
		if body.Details == "" && len(errs) > 0 && errs[0] != nil {
			body.Details = errs[0].Error()
		}
	}

	code := params.Code
	if code == 0 {
		code = apperror.StatusOf(body.Code)
	}
	return c.Status(code).JSON(OrderedErrorResponse{Success: false, Error: body})
}

// AppErrorResponse renders any error through the apperror taxonomy.
func AppErrorResponse(c *fiber.Ctx, err error) error {
	appErr := apperror.From(err)
	return ErrorResponse(c, ErrorResponseFormat{
		Code:      appErr.Status(),
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details(),
	})
}
