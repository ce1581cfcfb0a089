package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LEDGER_CONTRACT_ADDRESS", "0x7A950d2311E19e14F4a7A0A980dC1e24eA7bf0E0")
	t.Setenv("LEDGER_GAS_MARGIN_PERCENT", "25")
	t.Setenv("WALLET_MODE", "keystore")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, "pinata", cfg.Storage.Backend)
	assert.Equal(t, "0x7A950d2311E19e14F4a7A0A980dC1e24eA7bf0E0", cfg.Ledger.ContractAddress)
	assert.Equal(t, 25, cfg.Ledger.GasMarginPercent)
	assert.Equal(t, "keystore", cfg.Wallet.Mode)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "")

	cfg := Load()

	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Ledger.GasMarginPercent)
	assert.Equal(t, "https://gateway.pinata.cloud", cfg.Storage.GatewayURL)
	assert.Equal(t, 5, cfg.Reconcile.ReloadAttempts)
}

func TestValidate(t *testing.T) {
	base := func() *AppConfig {
		return &AppConfig{
			Storage: StorageConfig{Backend: "pinata", MaxUploadBytes: 10 << 20},
			Ledger:  LedgerConfig{ContractAddress: "0x01"},
			Wallet:  WalletConfig{Mode: "key"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})
	t.Run("upload limit out of range", func(t *testing.T) {
		for _, n := range []int64{0, -1, maxUploadLimit + 1} {
			c := base()
			c.Storage.MaxUploadBytes = n
			assert.ErrorContains(t, c.Validate(), "STORAGE_MAX_UPLOAD_BYTES", "limit %d", n)
		}
	})

	t.Run("missing contract address", func(t *testing.T) {
		c := base()
		c.Ledger.ContractAddress = ""
		assert.Error(t, c.Validate())
	})
	t.Run("unknown storage backend", func(t *testing.T) {
		c := base()
		c.Storage.Backend = "s3"
		assert.Error(t, c.Validate())
	})
	t.Run("unknown wallet mode", func(t *testing.T) {
		c := base()
		c.Wallet.Mode = "metamask"
		assert.Error(t, c.Validate())
	})
	t.Run("negative gas margin", func(t *testing.T) {
		c := base()
		c.Ledger.GasMarginPercent = -1
		assert.Error(t, c.Validate())
	})
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, (&AppConfig{TimeZone: "Not/AZone"}).Location())
	assert.Equal(t, "Asia/Jakarta", (&AppConfig{TimeZone: "Asia/Jakarta"}).Location().String())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
