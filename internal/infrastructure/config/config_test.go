package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.yaml")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(missingPath(t))
	require.NoError(t, err)

	assert.Equal(t, 50051, cfg.Server.GRPC.Port)
	assert.Equal(t, "0.0.0.0:50051", cfg.Server.GRPC.Address())
	assert.Equal(t, 30*time.Second, cfg.Server.GRPC.ShutdownTimeout)
	assert.Equal(t, int32(100), cfg.Bank.Balance)
	assert.Equal(t, int32(1000), cfg.Bank.MaxWithdraw)
	assert.Equal(t, int32(100), cfg.Bank.Denomination)
	assert.Equal(t, time.Second, cfg.Bank.PayoutInterval)
	assert.Equal(t, "File_Copy.pdf", cfg.Files.Name)
	assert.Equal(t, "shared", cfg.Files.Mode)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_PortFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "6000")

	cfg, err := LoadConfig(missingPath(t))
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Server.GRPC.Port)
}

func TestLoadConfig_PrefixedVariableWinsOverPort(t *testing.T) {
	t.Setenv("PORT", "6000")
	t.Setenv("BANKSTREAM_SERVER_GRPC_PORT", "7000")

	cfg, err := LoadConfig(missingPath(t))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.GRPC.Port)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := LoadConfig(missingPath(t))
	assert.Error(t, err)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
bank:
  max_withdraw: 500
  payout_interval: 250ms
files:
  dir: /var/lib/bankstream
  mode: per_call
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int32(500), cfg.Bank.MaxWithdraw)
	assert.Equal(t, 250*time.Millisecond, cfg.Bank.PayoutInterval)
	assert.Equal(t, "/var/lib/bankstream", cfg.Files.Dir)
	assert.Equal(t, "per_call", cfg.Files.Mode)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, int32(100), cfg.Bank.Denomination)
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	t.Setenv("BANKSTREAM_FILES_MODE", "everywhere")

	_, err := LoadConfig(missingPath(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestValidate_ZeroDenomination(t *testing.T) {
	cfg, err := LoadConfig(missingPath(t))
	require.NoError(t, err)

	cfg.Bank.Denomination = 0
	assert.Error(t, cfg.Validate())
}
