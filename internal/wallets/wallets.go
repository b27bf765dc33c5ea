// Package wallets loads the tracked wallet list and runtime configuration
// from the environment, and validates Solana wallet addresses.
package wallets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"filippo.io/edwards25519"
	"github.com/joho/godotenv"
	"github.com/mr-tron/base58"
)

// Environment variable names.
const (
	EnvHeliusAPIKey  = "HELIUS_API_KEY"
	EnvBirdeyeAPIKey = "BIRDEYE_API_KEY"
	EnvWallets       = "WALLETS"
	EnvWalletsFile   = "WALLETS_FILE"
	EnvPostgresDSN   = "POSTGRES_DSN"
	EnvClickhouseDSN = "CLICKHOUSE_DSN"
)

// ErrInvalidAddress marks a wallet address that failed validation.
var ErrInvalidAddress = errors.New("invalid wallet address")

// Config carries the environment-driven runtime settings.
type Config struct {
	HeliusAPIKey  string
	BirdeyeAPIKey string
	Wallets       []string
	PostgresDSN   string
	ClickhouseDSN string
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is merged in first without overriding existing
// variables. Every wallet address in the list must validate.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	cfg := &Config{
		HeliusAPIKey:  os.Getenv(EnvHeliusAPIKey),
		BirdeyeAPIKey: os.Getenv(EnvBirdeyeAPIKey),
		PostgresDSN:   os.Getenv(EnvPostgresDSN),
		ClickhouseDSN: os.Getenv(EnvClickhouseDSN),
	}
	if cfg.HeliusAPIKey == "" {
		return nil, fmt.Errorf("%s is required", EnvHeliusAPIKey)
	}

	list, err := loadWalletList()
	if err != nil {
		return nil, err
	}
	cfg.Wallets = list
	return cfg, nil
}

// loadWalletList gathers addresses from WALLETS (comma-separated) and
// WALLETS_FILE (one per line, # comments allowed), deduplicated in order.
func loadWalletList() ([]string, error) {
	var raw []string

	for _, w := range strings.Split(os.Getenv(EnvWallets), ",") {
		if w = strings.TrimSpace(w); w != "" {
			raw = append(raw, w)
		}
	}

	if path := os.Getenv(EnvWalletsFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read wallets file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			raw = append(raw, line)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, w := range raw {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if err := ValidateAddress(w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// ValidateAddress checks that the address is a base58-encoded 32-byte
// ed25519 public key on the curve. Program-derived addresses are off the
// curve and rejected: they cannot sign, so they are never wallets.
func ValidateAddress(address string) error {
	decoded, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %s: not base58", ErrInvalidAddress, address)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("%w: %s: decoded to %d bytes", ErrInvalidAddress, address, len(decoded))
	}
	if !isOnCurve(decoded) {
		return fmt.Errorf("%w: %s: off the ed25519 curve", ErrInvalidAddress, address)
	}
	return nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
