package handler

import (
	"context"
	"database/sql"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"docverify/internal/ledger"
	"docverify/internal/model"
	"docverify/internal/service"
	"docverify/internal/session"
	"docverify/internal/storage"
)

// WalletSession is the part of the wallet session exposed over HTTP.
type WalletSession interface {
	Snapshot() session.Snapshot
	Account() (common.Address, bool)
	Connect(ctx context.Context) (session.Snapshot, error)
	Select(ctx context.Context, account common.Address) (session.Snapshot, error)
	Disconnect()
}

// DocumentViews reads reconciled ledger records.
type DocumentViews interface {
	View(ctx context.Context, account common.Address) (*service.DocumentView, error)
	Document(ctx context.Context, account common.Address, index uint64) (*model.DocumentRecord, error)
}

// Deps are the collaborators the routes are built from. DB may be nil when the submission
// journal is kept in memory.
type Deps struct {
	DB             *sql.DB
	Chain          ledger.Inspector
	Session        WalletSession
	Uploads        service.UploadService
	Views          DocumentViews
	Reviews        service.ReviewService
	Storage        storage.Storage
	MaxUploadBytes int64
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate between HTTP and the services.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB, d.Chain))
	app.Get("/healthz", LivenessProbe())

	app.Get("/wallet", GetWallet(d.Session))
	app.Post("/wallet/connect", ConnectWallet(d.Session))
	app.Post("/wallet/disconnect", DisconnectWallet(d.Session))
	app.Post("/wallet/select", SelectAccount(d.Session))

	app.Get("/network", GetNetwork(d.Chain))
	app.Get("/contract", GetContract(d.Chain))
	app.Get("/document-types", ListDocumentTypes())

	app.Post("/submissions", CreateSubmission(d.Uploads, d.MaxUploadBytes))
	app.Get("/submissions", ListSubmissions(d.Uploads, d.Session))
	app.Get("/submissions/:id", GetSubmission(d.Uploads))
	app.Post("/submissions/:id/retry", RetrySubmission(d.Uploads))
	app.Delete("/submissions/:id", DiscardSubmission(d.Uploads))

	app.Get("/documents", ListDocuments(d.Views, d.Session))
	app.Get("/documents/:account/:index", GetDocument(d.Views))
	app.Post("/documents/:account/:index/verification", RecordDecision(d.Reviews))
	app.Get("/verification/queue", VerificationQueue(d.Reviews))

	app.Get("/content/:cid", ContentRedirect(d.Storage))
}

// accountParam parses a hex address, falling back to the connected account when raw is empty.
// ok is false once an error response has been written.
func accountParam(c *fiber.Ctx, raw string, sess WalletSession) (common.Address, bool) {
	if raw == "" {
		if sess != nil {
			if acct, connected := sess.Account(); connected {
				return acct, true
			}
		}
		_ = writeError(c, fiber.StatusBadRequest, "ACCOUNT_REQUIRED", "account is required when no wallet is connected")
		return common.Address{}, false
	}
	if !common.IsHexAddress(raw) {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ACCOUNT", "invalid account address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}
