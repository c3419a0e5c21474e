package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidContentType Code = "INVALID_CONTENT_TYPE"
	CodeInvalidFileType    Code = "INVALID_FILE_TYPE"
	CodeEmptyDocument      Code = "EMPTY_DOCUMENT"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbidden          Code = "FORBIDDEN"
	CodeFileTooLarge       Code = "FILE_TOO_LARGE"
	CodeExtraction         Code = "EXTRACTION_ERROR"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeParse              Code = "PARSE_ERROR"
	CodeOptimization       Code = "OPTIMIZATION_ERROR"
	CodeMatch              Code = "MATCH_ERROR"
	CodeInsights           Code = "INSIGHTS_ERROR"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeNotImplemented     Code = "NOT_IMPLEMENTED"
)

var statusByCode = map[Code]int{
	CodeInvalidInput:       http.StatusBadRequest,
	CodeInvalidContentType: http.StatusBadRequest,
	CodeInvalidFileType:    http.StatusBadRequest,
	CodeEmptyDocument:      http.StatusBadRequest,
	CodeInvalidState:       http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeForbidden:          http.StatusForbidden,
	CodeFileTooLarge:       http.StatusRequestEntityTooLarge,
	CodeExtraction:         http.StatusUnprocessableEntity,
	CodeRateLimited:        http.StatusTooManyRequests,
	CodeParse:              http.StatusInternalServerError,
	CodeOptimization:       http.StatusInternalServerError,
	CodeMatch:              http.StatusInternalServerError,
	CodeInsights:           http.StatusInternalServerError,
	CodeInternal:           http.StatusInternalServerError,
	CodeNotImplemented:     http.StatusNotImplemented,
}

// AppError is a failure that maps onto one public error code. Err holds the
// underlying cause and is only exposed outside production.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Status() int {
	return StatusOf(e.Code)
}

// Details returns the underlying cause text, or "" when there is none.
func (e *AppError) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func New(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NewInvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, nil)
}

func NewNotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), fmt.Errorf("%s with id '%s' was not found", resource, id))
}

func NewInvalidState(message string) *AppError {
	return New(CodeInvalidState, message, nil)
}

func NewInternal(message string, err error) *AppError {
	return New(CodeInternal, message, err)
}

func StatusOf(code Code) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// From unwraps err into an AppError, wrapping unknown errors as INTERNAL_ERROR.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("An internal server error occurred", err)
}
