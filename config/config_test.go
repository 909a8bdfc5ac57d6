package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, BaseChainID, cfg.ChainID)
	assert.Equal(t, "https://mainnet.base.org", cfg.ActiveRPC())

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written to disk")

	cfg.Owner = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	cfg.Secrets.NeynarAPIKey = "secret"
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret", "secrets must not be persisted")

	reloaded, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Owner, reloaded.Owner)
}

func TestLoadInvalidFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	cfg := Load(path)
	assert.Equal(t, DefaultConfig().Providers, cfg.Providers)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("NEYNAR_API_KEY", " neynar ")
	t.Setenv("BASE_RPC_URL", "http://localhost:8545")
	t.Setenv("WALLET_RPC_URL", "http://localhost:1248")
	t.Setenv("WALLET_BRIDGE_URL", "")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)

	assert.Equal(t, "neynar", cfg.Secrets.NeynarAPIKey)
	assert.Equal(t, "http://localhost:8545", cfg.ActiveRPC())
	assert.Len(t, cfg.RPCURLs, 2)
	assert.Equal(t, Wallet{Mode: WalletModeRPC, URL: "http://localhost:1248"}, cfg.Wallet)
}

func TestApplyEnvPrivateKey(t *testing.T) {
	t.Setenv("WALLET_RPC_URL", "")
	t.Setenv("WALLET_BRIDGE_URL", "")
	t.Setenv("WALLET_PRIVATE_KEY", "0xabc")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	assert.Equal(t, WalletModeKey, cfg.Wallet.Mode)
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ALCHEMY_API_KEY=from-dotenv\n"), 0600))
	t.Setenv("ALCHEMY_API_KEY", "")
	os.Unsetenv("ALCHEMY_API_KEY")

	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-dotenv", os.Getenv("ALCHEMY_API_KEY"))
}

func TestHiddenAndRecents(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.ToggleHidden("0xabc-1"))
	assert.True(t, cfg.IsHidden("0xABC-1"))
	assert.False(t, cfg.ToggleHidden("0xAbc-1"))
	assert.False(t, cfg.IsHidden("0xabc-1"))

	for _, a := range []string{"0x1", "0x2", "0x3", "0x4", "0x5", "0x6", "0x2"} {
		cfg.AddRecent(a)
	}
	assert.Equal(t, []string{"0x2", "0x6", "0x5", "0x4", "0x3"}, cfg.Recents)
}
