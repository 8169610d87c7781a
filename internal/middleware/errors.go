package middleware

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mroshb/game_journal/pkg/errors"
	"github.com/mroshb/game_journal/pkg/logger"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID uint   `json:"request_id,omitempty"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return fe.Code
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeValidation, errors.ErrCodeInvalidOperation:
		return fiber.StatusBadRequest
	case errors.ErrCodeUnauthorized:
		return fiber.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return fiber.StatusForbidden
	case errors.ErrCodeNotFound:
		return fiber.StatusNotFound
	case errors.ErrCodeAlreadyFriends, errors.ErrCodeDuplicateRequest, errors.ErrCodeNotPending, errors.ErrCodeAlreadyExists:
		return fiber.StatusConflict
	case errors.ErrCodeRateLimitExceeded:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders handler errors as ErrorResponse. Internal failures
// are logged and answered with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	var body ErrorResponse
	var fe *fiber.Error
	switch {
	case stderrors.As(err, &fe):
		body = ErrorResponse{Error: errorCodeForStatus(fe.Code), Message: fe.Message}
	case status == fiber.StatusInternalServerError:
		logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "trace_id", TraceID(c), "error", err)
		body = ErrorResponse{Error: errors.ErrCodeInternalError, Message: "internal server error"}
	default:
		appErr, _ := errors.As(err)
		body = ErrorResponse{Error: appErr.Code, Message: appErr.Message, RequestID: appErr.RequestID}
	}

	return c.Status(status).JSON(body)
}

func errorCodeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return errors.ErrCodeNotFound
	case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusUnprocessableEntity:
		return errors.ErrCodeValidation
	case fiber.StatusRequestTimeout:
		return errors.ErrCodeInternalError
	default:
		if status >= 500 {
			return errors.ErrCodeInternalError
		}
		return errors.ErrCodeInvalidOperation
	}
}
