package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.NoError(t, cfg.Params.Validate())
	_, err = os.Stat(path)
	require.NoError(t, err, "default config must be persisted")

	// A second load reads the persisted file back.
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RPCAddress, again.RPCAddress)
	require.Equal(t, cfg.Params, again.Params)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
RPCAddress = ":9090"
DataDir = "/var/lib/stackstream"
Treasury = "0x00000000000000000000000000000000000000fe"

[Params]
RegistrationFee = 2000000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.RPCAddress)
	require.Equal(t, uint64(2_000_000), cfg.Params.RegistrationFee)
	// Untouched params keep their defaults.
	require.Equal(t, uint64(9_500), cfg.Params.CreatorShareBps)

	addr, err := DecodeAddress(cfg.Treasury)
	require.NoError(t, err)
	require.Equal(t, byte(0xFE), addr[19])
}

func TestLoadRejectsInvalidParams(t *testing.T) {
	path := writeConfig(t, `
[Params]
RegistrationFee = 0
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadAddress(t *testing.T) {
	path := writeConfig(t, `Treasury = "0x1234"`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `Unknown = true`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestDecodeAddress(t *testing.T) {
	_, err := DecodeAddress("not-hex")
	require.Error(t, err)

	addr, err := DecodeAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, err)
	require.Equal(t, byte(0x01), addr[0])
	require.Equal(t, byte(0x14), addr[19])
}
