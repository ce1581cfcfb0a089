package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docverify/internal/apperr"
	"docverify/internal/http/middleware"
	"docverify/internal/model"
	"docverify/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// submissionErrorPayload is returned when a submission fails after an attempt was created,
// so the client can see how far it got and whether a retry is possible.
type submissionErrorPayload struct {
	errorPayload
	Attempt *model.SubmissionAttempt `json:"attempt"`
}

type errorMapping struct {
	kind   error
	status int
	code   string
}

// Order matters: specific service errors first, then the apperr kinds in the same order
// apperr.Kind checks them.
var errorMappings = []errorMapping{
	{service.ErrNotVerifier, fiber.StatusForbidden, "NOT_VERIFIER"},
	{service.ErrIDRequired, fiber.StatusBadRequest, "ID_REQUIRED"},
	{service.ErrAttemptBusy, fiber.StatusConflict, "ATTEMPT_BUSY"},
	{service.ErrTerminalStatus, fiber.StatusConflict, "TERMINAL_STATUS"},
	{apperr.ErrValidation, fiber.StatusBadRequest, "VALIDATION_ERROR"},
	{apperr.ErrWalletUnavailable, fiber.StatusServiceUnavailable, "WALLET_UNAVAILABLE"},
	{apperr.ErrStorageRejected, fiber.StatusUnprocessableEntity, "STORAGE_REJECTED"},
	{apperr.ErrStorageUnavailable, fiber.StatusBadGateway, "STORAGE_UNAVAILABLE"},
	{apperr.ErrLedgerWriteRejected, fiber.StatusConflict, "LEDGER_WRITE_REJECTED"},
	{apperr.ErrLedgerWriteFailed, fiber.StatusBadGateway, "LEDGER_WRITE_FAILED"},
	{apperr.ErrLedgerReadFailed, fiber.StatusBadGateway, "LEDGER_READ_FAILED"},
	{apperr.ErrUploadFailed, fiber.StatusBadGateway, "UPLOAD_FAILED"},
	{apperr.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{apperr.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
}

// classify maps a service error to a status and code. Known kinds keep their message since
// it carries the user-facing reason; anything else is reported as an internal error.
func classify(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return m.status, m.code, err.Error()
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(newErrorPayload(c, code, message))
}

func newErrorPayload(c *fiber.Ctx, code, message string) errorPayload {
	return errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
}

// writeServiceError translates an error returned by a service into the error envelope.
func writeServiceError(c *fiber.Ctx, err error) error {
	status, code, msg := classify(err)
	return writeError(c, status, code, msg)
}

// writeSubmissionError is writeServiceError plus the attempt the failure left behind.
func writeSubmissionError(c *fiber.Ctx, err error, attempt *model.SubmissionAttempt) error {
	if attempt == nil {
		return writeServiceError(c, err)
	}
	status, code, msg := classify(err)
	return c.Status(status).JSON(submissionErrorPayload{
		errorPayload: newErrorPayload(c, code, msg),
		Attempt:      attempt,
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
