package handler

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docverify/internal/service"
)

// CreateSubmission uploads a document (multipart/form-data, fields: file, document_type),
// then records it on the ledger for the connected account.
//
// @Summary Submit a document
// @Tags submissions
// @Accept mpfd
// @Produce json
// @Param file formData file true "document"
// @Param document_type formData string true "document type tag"
// @Success 201 {object} model.SubmissionAttempt
// @Failure 400 {object} errorPayload
// @Failure 502 {object} submissionErrorPayload
// @Router /submissions [post]
func CreateSubmission(uploads service.UploadService, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if maxBytes > 0 && fh.Size > maxBytes {
			return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the upload limit")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
		}

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		attempt, err := uploads.Submit(c.UserContext(), service.UploadInput{
			File:         data,
			FileName:     fh.Filename,
			MimeType:     ct,
			DocumentType: c.FormValue("document_type"),
		})
		if err != nil {
			return writeSubmissionError(c, err, attempt)
		}
		return c.Status(fiber.StatusCreated).JSON(attempt)
	}
}

// ListSubmissions lists an account's attempts with limit & offset.
//
// @Summary Submission attempts
// @Tags submissions
// @Produce json
// @Param account query string false "account address"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} service.AttemptListResult
// @Failure 400 {object} errorPayload
// @Router /submissions [get]
func ListSubmissions(uploads service.UploadService, sess WalletSession) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		account, ok := accountParam(c, c.Query("account"), sess)
		if !ok {
			return nil
		}

		res, err := uploads.List(c.UserContext(), account, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetSubmission returns one attempt by ID.
//
// @Summary One submission attempt
// @Tags submissions
// @Produce json
// @Param id path string true "attempt id"
// @Success 200 {object} model.SubmissionAttempt
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /submissions/{id} [get]
func GetSubmission(uploads service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		attempt, err := uploads.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(attempt)
	}
}

// RetrySubmission re-runs the ledger step of a partially failed attempt.
//
// @Summary Retry the ledger step
// @Tags submissions
// @Produce json
// @Param id path string true "attempt id"
// @Success 200 {object} model.SubmissionAttempt
// @Failure 409 {object} submissionErrorPayload
// @Router /submissions/{id}/retry [post]
func RetrySubmission(uploads service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		attempt, err := uploads.Retry(c.UserContext(), id)
		if err != nil {
			return writeSubmissionError(c, err, attempt)
		}
		return c.JSON(attempt)
	}
}

// DiscardSubmission forgets an attempt that is not in flight.
//
// @Summary Discard a submission attempt
// @Tags submissions
// @Param id path string true "attempt id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /submissions/{id} [delete]
func DiscardSubmission(uploads service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := uploads.Discard(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
