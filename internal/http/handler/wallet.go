package handler

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

type selectAccountRequest struct {
	Account string `json:"account"`
}

// GetWallet returns the current session snapshot.
//
// @Summary Wallet session
// @Tags wallet
// @Produce json
// @Success 200 {object} session.Snapshot
// @Router /wallet [get]
func GetWallet(sess WalletSession) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(sess.Snapshot())
	}
}

// ConnectWallet asks the provider for an account. Concurrent calls share one request.
//
// @Summary Connect wallet
// @Tags wallet
// @Produce json
// @Success 200 {object} session.Snapshot
// @Failure 503 {object} errorPayload
// @Router /wallet/connect [post]
func ConnectWallet(sess WalletSession) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := sess.Connect(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(snap)
	}
}

// DisconnectWallet forgets the account locally.
func DisconnectWallet(sess WalletSession) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess.Disconnect()
		return c.JSON(sess.Snapshot())
	}
}

// SelectAccount switches the active account on providers holding more than one.
//
// @Summary Switch account
// @Tags wallet
// @Accept json
// @Produce json
// @Param body body selectAccountRequest true "account to activate"
// @Success 200 {object} session.Snapshot
// @Failure 400 {object} errorPayload
// @Router /wallet/select [post]
func SelectAccount(sess WalletSession) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req selectAccountRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if !common.IsHexAddress(req.Account) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ACCOUNT", "invalid account address")
		}
		snap, err := sess.Select(c.UserContext(), common.HexToAddress(req.Account))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(snap)
	}
}
