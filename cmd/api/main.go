package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docverify/docs"
	"docverify/internal/config"
	"docverify/internal/database"
	"docverify/internal/database/migration"
	handlers "docverify/internal/http/handler"
	"docverify/internal/http/middleware"
	"docverify/internal/ledger"
	"docverify/internal/logging"
	"docverify/internal/metrics"
	"docverify/internal/otel"
	"docverify/internal/repository"
	"docverify/internal/repository/memory"
	"docverify/internal/repository/postgres"
	"docverify/internal/service"
	"docverify/internal/session"
	"docverify/internal/storage"
	"docverify/internal/wallet"
)

//go:generate swag init --dir ../../ --generalInfo cmd/api/main.go --parseInternal --output ../../docs

const shutdownTimeout = 10 * time.Second

// @title Document Verification API
// @version 1.0
// @description Submit identity documents to content-addressed storage, record them on the ledger and review them.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.Location())
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", "error", err)
		}
	}()

	// Submission journal: PostgreSQL when configured, otherwise in memory.
	db, repo, err := newRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	store, err := newStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	backend, err := ledger.Dial(ctx, cfg.Ledger.RPCURL)
	if err != nil {
		return err
	}
	defer backend.Close()

	contractABI, err := ledger.LoadABI(cfg.Ledger.ABIPath)
	if err != nil {
		return err
	}
	if !common.IsHexAddress(cfg.Ledger.ContractAddress) {
		return fmt.Errorf("invalid LEDGER_CONTRACT_ADDRESS %q", cfg.Ledger.ContractAddress)
	}

	provider, closeProvider, err := newProvider(cfg.Wallet, backend, log)
	if err != nil {
		return fmt.Errorf("init wallet: %w", err)
	}
	defer closeProvider()

	chain := ledger.New(backend, provider, common.HexToAddress(cfg.Ledger.ContractAddress), contractABI, ledger.Options{
		GasMarginPercent:    cfg.Ledger.GasMarginPercent,
		ReceiptPollInterval: config.Millis(cfg.Ledger.ReceiptPollIntervalMs),
		LogsFromBlock:       cfg.Ledger.LogsFromBlock,
	}, log)

	if info, err := chain.CheckContract(ctx); err != nil {
		log.Warn("contract check failed", "error", err)
	} else if !info.HasCode {
		log.Warn("no contract code at configured address", "address", info.Address.Hex(), "chain_id", info.ChainID)
	}

	sess := session.New(provider, chain, log)
	if cfg.Wallet.AutoConnect {
		sess.AutoConnect(ctx)
	}
	go sess.Watch(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	workflowMetrics, err := metrics.NewWorkflow(reg)
	if err != nil {
		return fmt.Errorf("register workflow metrics: %w", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	reconciler := service.NewReconciler(chain, store, repo, service.ReconcileOptions{
		SettleDelay:      config.Millis(cfg.Reconcile.SettleDelayMs),
		ReloadAttempts:   cfg.Reconcile.ReloadAttempts,
		FetchConcurrency: cfg.Reconcile.FetchConcurrency,
	}, workflowMetrics, log)
	uploads := service.NewUploadService(store, chain, sess, repo, reconciler, workflowMetrics, log)
	reviews := service.NewReviewService(chain, sess, reconciler, workflowMetrics, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Multipart overhead on top of the largest accepted file.
		BodyLimit: int(cfg.Storage.MaxUploadBytes) + 1<<20,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log.With("component", "http")))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:             db,
		Chain:          chain,
		Session:        sess,
		Uploads:        uploads,
		Views:          reconciler,
		Reviews:        reviews,
		Storage:        store,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "contract", cfg.Ledger.ContractAddress, "storage", cfg.Storage.Backend, "wallet", cfg.Wallet.Mode)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}

func newRepository(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*sql.DB, repository.AttemptRepository, error) {
	if !cfg.Database.Enabled() {
		log.Info("no database configured, keeping submission attempts in memory")
		return nil, memory.NewAttemptMemory(), nil
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, postgres.NewAttemptPostgres(db), nil
}

func newStorage(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case "minio":
		return storage.NewMinIO(cfg)
	default:
		return storage.NewPinata(cfg)
	}
}

func newProvider(cfg config.WalletConfig, backend *ledger.RPCBackend, log *slog.Logger) (wallet.Provider, func(), error) {
	log = log.With("component", "wallet")
	switch cfg.Mode {
	case "keystore":
		p := wallet.NewKeystoreProvider(cfg.KeystoreDir, cfg.Passphrase, log)
		return p, p.Close, nil
	case "rpc":
		p := wallet.NewRPCProvider(backend.RPC(), config.Millis(cfg.PollIntervalMs), log)
		return p, p.Close, nil
	default:
		p, err := wallet.NewKeyProvider(cfg.PrivateKey)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {}, nil
	}
}
