package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"docverify/internal/ledger"
	"docverify/internal/model"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports healthy when the journal database (if any) answers a ping and the
// ledger node reports its chain id.
//
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB, chain ledger.Inspector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		if chain != nil {
			if info := chain.FetchNetworkInfo(ctx); !info.Connected || info.ChainID == nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "ledger unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is the simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// GetNetwork returns a best-effort snapshot of the connected chain. It never fails; an
// unreachable node is reported in the body.
//
// @Summary Network status
// @Tags ledger
// @Produce json
// @Success 200 {object} model.NetworkInfo
// @Router /network [get]
func GetNetwork(chain ledger.Inspector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(chain.FetchNetworkInfo(c.UserContext()))
	}
}

// GetContract describes the configured ledger contract.
//
// @Summary Contract details
// @Tags ledger
// @Produce json
// @Success 200 {object} model.ContractInfo
// @Failure 502 {object} errorPayload
// @Router /contract [get]
func GetContract(chain ledger.Inspector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := chain.CheckContract(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(info)
	}
}

func ListDocumentTypes() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(model.DocumentTypes)
	}
}
