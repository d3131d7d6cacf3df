package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stackstream/native/params"

	"github.com/BurntSushi/toml"
)

// Config is the node configuration loaded from TOML. Addresses are 0x-prefixed
// hex. Params overrides are optional; absent fields keep their defaults.
type Config struct {
	RPCAddress string `toml:"RPCAddress"`
	DataDir    string `toml:"DataDir"`

	Owner     string `toml:"Owner"`
	Treasury  string `toml:"Treasury"`
	GiftVault string `toml:"GiftVault"`

	Params params.Params `toml:"Params"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{Params: params.Default()}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	for _, undecoded := range meta.Undecoded() {
		return nil, fmt.Errorf("config file %s has unknown field %s", path, undecoded)
	}

	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	for name, raw := range map[string]string{"Owner": cfg.Owner, "Treasury": cfg.Treasury, "GiftVault": cfg.GiftVault} {
		if raw == "" {
			continue
		}
		if _, err := DecodeAddress(raw); err != nil {
			return nil, fmt.Errorf("config field %s: %w", name, err)
		}
	}

	return cfg, nil
}

// DecodeAddress parses a 0x-prefixed 20-byte hex address.
func DecodeAddress(raw string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", raw, err)
	}
	if len(decoded) != len(addr) {
		return addr, fmt.Errorf("invalid address %q: want %d bytes, got %d", raw, len(addr), len(decoded))
	}
	copy(addr[:], decoded)
	return addr, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress: ":8080",
		DataDir:    "./stackstream-data",
		Params:     params.Default(),
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
