package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type PaginatedResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// AppError is a failure with the HTTP status it should be reported as.
// Handlers return it and ErrorHandler renders it; Err stays reachable
// through errors.Is/As.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

func (e *AppError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *AppError) Unwrap() error { return e.Err }

// ResponseOption decorates a success envelope.
type ResponseOption func(*SuccessResponse)

func WithMessage(msg string) ResponseOption {
	return func(r *SuccessResponse) { r.Message = msg }
}

func WithMeta(meta interface{}) ResponseOption {
	return func(r *SuccessResponse) { r.Meta = meta }
}

func Success(c *fiber.Ctx, status int, data interface{}, opts ...ResponseOption) error {
	resp := SuccessResponse{Success: true, Data: data}
	for _, opt := range opts {
		opt(&resp)
	}
	return c.Status(status).JSON(resp)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusCreated, data)
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func Paginate(c *fiber.Ctx, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(PaginatedResponse{
		Success:  true,
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Error writes the error envelope; details, when given, go out verbatim.
func Error(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
	}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	return c.Status(status).JSON(resp)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return Error(c, status, fiber.NewError(status, message))
}

func BadRequest(c *fiber.Ctx, message string) error   { return fail(c, fiber.StatusBadRequest, message) }
func Unauthorized(c *fiber.Ctx, message string) error { return fail(c, fiber.StatusUnauthorized, message) }
func Forbidden(c *fiber.Ctx, message string) error    { return fail(c, fiber.StatusForbidden, message) }
func NotFound(c *fiber.Ctx, message string) error     { return fail(c, fiber.StatusNotFound, message) }
func Conflict(c *fiber.Ctx, message string) error     { return fail(c, fiber.StatusConflict, message) }

func InternalServerError(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusInternalServerError, message)
}

// ValidationError answers 422 with the failed rule per field.
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return BadRequest(c, err.Error())
	}

	details := make(map[string]string, len(ve))
	for _, fe := range ve {
		details[fe.Field()] = fe.Tag()
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Error:   "Validation Error",
		Details: details,
	})
}

// ErrorHandler is the fiber error handler. Errors that are neither AppError
// nor fiber.Error become a bare 500 so driver messages never reach clients.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return Error(c, appErr.Status, appErr)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Error(c, fe.Code, fe)
	}
	return InternalServerError(c, "Internal server error")
}
