package wallets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// curveAddress returns a base58 address guaranteed to be on the ed25519
// curve: the generator point multiplied by a small scalar.
func curveAddress(t *testing.T, n uint64) string {
	t.Helper()
	var buf [32]byte
	buf[0] = byte(n)
	buf[1] = byte(n >> 8)
	s, err := new(edwards25519.Scalar).SetCanonicalBytes(buf[:])
	if err != nil {
		t.Fatalf("scalar from %d: %v", n, err)
	}
	return base58.Encode(new(edwards25519.Point).ScalarBaseMult(s).Bytes())
}

func TestValidateAddress(t *testing.T) {
	valid := curveAddress(t, 7)

	cases := []struct {
		name    string
		address string
		ok      bool
	}{
		{"on-curve key", valid, true},
		{"empty", "", false},
		{"not base58", "0OIl+/=", false},
		{"too short", "abc", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAddress(tc.address)
			if tc.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidAddress) {
					t.Errorf("expected ErrInvalidAddress, got %v", err)
				}
			}
		})
	}
}

func TestLoadConfig_WalletSources(t *testing.T) {
	w1 := curveAddress(t, 1)
	w2 := curveAddress(t, 2)

	file := filepath.Join(t.TempDir(), "wallets.txt")
	content := "# tracked wallets\n" + w2 + "\n\n" + w1 + "\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvHeliusAPIKey, "key")
	t.Setenv(EnvWallets, w1+", "+w2)
	t.Setenv(EnvWalletsFile, file)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Env entries come first; the file's duplicates collapse.
	want := []string{w1, w2}
	if len(cfg.Wallets) != len(want) {
		t.Fatalf("expected %d wallets, got %v", len(want), cfg.Wallets)
	}
	for i, w := range want {
		if cfg.Wallets[i] != w {
			t.Errorf("wallet %d: expected %s, got %s", i, w, cfg.Wallets[i])
		}
	}
}

func TestLoadConfig_RequiresAPIKey(t *testing.T) {
	t.Setenv(EnvHeliusAPIKey, "")
	t.Setenv(EnvWallets, "")
	t.Setenv(EnvWalletsFile, "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected missing API key error")
	}
}

func TestLoadConfig_RejectsBadWallet(t *testing.T) {
	t.Setenv(EnvHeliusAPIKey, "key")
	t.Setenv(EnvWallets, "not-a-wallet")
	t.Setenv(EnvWalletsFile, "")

	_, err := LoadConfig()
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}
