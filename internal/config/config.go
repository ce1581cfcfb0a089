package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL settings for the submission journal.
// The journal is optional; without DB_HOST attempts are kept in memory.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a database was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for the self-hosted content store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// PinataConfig holds the pinning service credentials.
type PinataConfig struct {
	APIURL    string
	APIKey    string
	APISecret string
}

// StorageConfig selects and configures the content-addressed storage backend.
type StorageConfig struct {
	Backend        string // pinata | minio
	GatewayURL     string
	MaxUploadBytes int64
	Pinata         PinataConfig
	MinIO          MinIOConfig
}

// LedgerConfig points at the chain and the deployed contract.
// Contract address and ABI are inputs, never constants.
type LedgerConfig struct {
	RPCURL                string
	ContractAddress       string
	ABIPath               string
	GasMarginPercent      int
	ReceiptPollIntervalMs int
	LogsFromBlock         uint64
}

// WalletConfig selects the signer standing in for the wallet provider.
type WalletConfig struct {
	Mode           string // key | keystore | rpc
	PrivateKey     string
	KeystoreDir    string
	Passphrase     string
	PollIntervalMs int
	AutoConnect    bool
}

// ReconcileConfig tunes the document view reload.
type ReconcileConfig struct {
	SettleDelayMs    int
	ReloadAttempts   int
	FetchConcurrency int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	LogLevel  string
	TimeZone  string
	Database  DatabaseConfig
	Storage   StorageConfig
	Ledger    LedgerConfig
	Wallet    WalletConfig
	Reconcile ReconcileConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		TimeZone: getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", "pinata"),
			GatewayURL:     getEnv("STORAGE_GATEWAY_URL", "https://gateway.pinata.cloud"),
			MaxUploadBytes: int64(getEnvInt("STORAGE_MAX_UPLOAD_BYTES", 10<<20)),
			Pinata: PinataConfig{
				APIURL:    getEnv("PINATA_API_URL", "https://api.pinata.cloud"),
				APIKey:    getEnv("PINATA_API_KEY", ""),
				APISecret: getEnv("PINATA_API_SECRET", ""),
			},
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Ledger: LedgerConfig{
			RPCURL:                getEnv("LEDGER_RPC_URL", "http://localhost:7545"),
			ContractAddress:       getEnv("LEDGER_CONTRACT_ADDRESS", ""),
			ABIPath:               getEnv("LEDGER_ABI_PATH", ""),
			GasMarginPercent:      getEnvInt("LEDGER_GAS_MARGIN_PERCENT", 20),
			ReceiptPollIntervalMs: getEnvInt("LEDGER_RECEIPT_POLL_INTERVAL_MS", 1000),
			LogsFromBlock:         uint64(getEnvInt("LEDGER_LOGS_FROM_BLOCK", 0)),
		},
		Wallet: WalletConfig{
			Mode:           getEnv("WALLET_MODE", "key"),
			PrivateKey:     getEnv("WALLET_PRIVATE_KEY", ""),
			KeystoreDir:    getEnv("WALLET_KEYSTORE_DIR", ""),
			Passphrase:     getEnv("WALLET_PASSPHRASE", ""),
			PollIntervalMs: getEnvInt("WALLET_POLL_INTERVAL_MS", 2000),
			AutoConnect:    getEnvBool("WALLET_AUTO_CONNECT", true),
		},
		Reconcile: ReconcileConfig{
			SettleDelayMs:    getEnvInt("RECONCILE_SETTLE_DELAY_MS", 2000),
			ReloadAttempts:   getEnvInt("RECONCILE_RELOAD_ATTEMPTS", 5),
			FetchConcurrency: getEnvInt("RECONCILE_FETCH_CONCURRENCY", 4),
		},
	}
}

// maxUploadLimit keeps the HTTP body limit derived from STORAGE_MAX_UPLOAD_BYTES within int range.
const maxUploadLimit = 1 << 30

// Validate checks the settings the process cannot start without.
func (c *AppConfig) Validate() error {
	if c.Ledger.ContractAddress == "" {
		return fmt.Errorf("LEDGER_CONTRACT_ADDRESS is required")
	}
	if c.Ledger.GasMarginPercent < 0 {
		return fmt.Errorf("LEDGER_GAS_MARGIN_PERCENT must not be negative")
	}
	if c.Storage.MaxUploadBytes <= 0 || c.Storage.MaxUploadBytes > maxUploadLimit {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be between 1 and %d", maxUploadLimit)
	}
	switch c.Storage.Backend {
	case "pinata", "minio":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}
	switch c.Wallet.Mode {
	case "key", "keystore", "rpc":
	default:
		return fmt.Errorf("unsupported WALLET_MODE %q", c.Wallet.Mode)
	}
	return nil
}

// Location resolves the configured time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Millis converts a millisecond setting into a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
