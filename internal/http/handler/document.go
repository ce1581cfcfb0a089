package handler

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"docverify/internal/model"
	"docverify/internal/service"
	"docverify/internal/storage"
)

type decisionRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

type queueResponse struct {
	Status service.QueueFilter    `json:"status"`
	Data   []model.DocumentRecord `json:"data"`
}

// ListDocuments returns an account's ledger records plus local submissions the ledger does
// not show yet. The account defaults to the connected one.
//
// @Summary Documents for an account
// @Tags documents
// @Produce json
// @Param account query string false "account address"
// @Success 200 {object} service.DocumentView
// @Failure 502 {object} errorPayload
// @Router /documents [get]
func ListDocuments(views DocumentViews, sess WalletSession) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := accountParam(c, c.Query("account"), sess)
		if !ok {
			return nil
		}
		view, err := views.View(c.UserContext(), account)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}

// GetDocument reads one record straight from the ledger.
//
// @Summary One ledger document
// @Tags documents
// @Produce json
// @Param account path string true "account address"
// @Param index path int true "document index"
// @Success 200 {object} model.DocumentRecord
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /documents/{account}/{index} [get]
func GetDocument(views DocumentViews) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, index, ok := documentParams(c)
		if !ok {
			return nil
		}
		rec, err := views.Document(c.UserContext(), account, index)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// RecordDecision records Verified or Rejected for a pending document.
//
// @Summary Record a verification decision
// @Tags verification
// @Accept json
// @Produce json
// @Param account path string true "submitter address"
// @Param index path int true "document index"
// @Param body body decisionRequest true "decision and notes"
// @Success 200 {object} model.Receipt
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /documents/{account}/{index}/verification [post]
func RecordDecision(reviews service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, index, ok := documentParams(c)
		if !ok {
			return nil
		}
		var req decisionRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		decision, err := model.ParseStatus(req.Decision)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DECISION", "decision must be Verified or Rejected")
		}

		receipt, err := reviews.Decide(c.UserContext(), service.DecisionInput{
			Subject:  account,
			Index:    index,
			Decision: decision,
			Notes:    req.Notes,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(receipt)
	}
}

// VerificationQueue lists records across all submitters, pending (default) or decided.
//
// @Summary Verification queue
// @Tags verification
// @Produce json
// @Param status query string false "pending or decided"
// @Success 200 {object} queueResponse
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /verification/queue [get]
func VerificationQueue(reviews service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := service.ParseQueueFilter(c.Query("status"))
		if err != nil {
			return writeServiceError(c, err)
		}
		records, err := reviews.Queue(c.UserContext(), filter)
		if err != nil {
			return writeServiceError(c, err)
		}
		if records == nil {
			records = []model.DocumentRecord{}
		}
		return c.JSON(queueResponse{Status: filter, Data: records})
	}
}

// ContentRedirect sends the client to the gateway URL for a content id.
func ContentRedirect(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cid := c.Params("cid")
		if !storage.ValidCID(cid) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CID", "invalid content id")
		}
		return c.Redirect(store.ResolveURL(cid), fiber.StatusFound)
	}
}

func documentParams(c *fiber.Ctx) (common.Address, uint64, bool) {
	account, ok := accountParam(c, c.Params("account"), nil)
	if !ok {
		return common.Address{}, 0, false
	}
	index, err := strconv.ParseUint(c.Params("index"), 10, 64)
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_INDEX", "invalid document index")
		return common.Address{}, 0, false
	}
	return account, index, true
}
