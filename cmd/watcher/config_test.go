package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flarewatch/flarewatch/internal/watch"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
watches:
  - id: blocks
    kind: new-block
`)

	cfg, err := LoadConfig(path, "", "")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Network != "flare" {
		t.Errorf("network = %q, want flare", cfg.Network)
	}
	if cfg.Snapshot.Backend != "memory" {
		t.Errorf("snapshot backend = %q, want memory", cfg.Snapshot.Backend)
	}
	if !cfg.Sinks.Stdout {
		t.Error("stdout sink should default to enabled")
	}
	if got := cfg.Watches[0].Interval; got != 30*time.Second {
		t.Errorf("watch interval = %v, want default 30s", got)
	}
}

func TestLoadConfigFileAndFlagLayering(t *testing.T) {
	path := writeConfig(t, `
network: songbird
rpc:
  url: https://songbird.example/rpc
default_interval: 10s
watches:
  - id: sgb-price
    kind: price-update
    symbol: SGB
    interval: 5s
`)

	cfg, err := LoadConfig(path, "coston2", "")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	// The flag beats the file, the file beats the default.
	if cfg.Network != "coston2" {
		t.Errorf("network = %q, want coston2", cfg.Network)
	}
	if cfg.RPC.URL != "https://songbird.example/rpc" {
		t.Errorf("rpc url = %q", cfg.RPC.URL)
	}
	if got := cfg.Watches[0].Interval; got != 5*time.Second {
		t.Errorf("watch interval = %v, want 5s", got)
	}
}

func TestLoadConfigParsesMinValue(t *testing.T) {
	path := writeConfig(t, `
watches:
  - id: big-transfers
    kind: new-transaction
    address: "0x1234567890abcdef1234567890abcdef12345678"
    min_value: "1.5"
`)

	cfg, err := LoadConfig(path, "", "")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	min := cfg.Watches[0].Config.MinValue
	if min == nil || min.String() != "1500000000000000000" {
		t.Errorf("min value = %v, want 1.5e18 wei", min)
	}
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		content string
		network string
	}{
		{
			name:    "unknown network",
			content: "watches:\n  - id: w\n    kind: new-block\n",
			network: "mainnet",
		},
		{
			name:    "no watches",
			content: "network: flare\n",
		},
		{
			name:    "unknown snapshot backend",
			content: "snapshot:\n  backend: dynamo\nwatches:\n  - id: w\n    kind: new-block\n",
		},
		{
			name:    "invalid watch",
			content: "watches:\n  - id: w\n    kind: balance-change\n    address: nope\n",
		},
		{
			name:    "bad min value",
			content: "watches:\n  - id: w\n    kind: new-transaction\n    address: \"0x1234567890abcdef1234567890abcdef12345678\"\n    min_value: \"1.2.3\"\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := LoadConfig(path, tc.network, ""); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadConfigNormalizesWatchAddress(t *testing.T) {
	path := writeConfig(t, `
watches:
  - id: w
    kind: balance-change
    address: "0x1234567890abcdef1234567890abcdef12345678"
`)

	cfg, err := LoadConfig(path, "", "")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	want := common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678").Hex()
	if got := cfg.Watches[0].Address; got != want {
		t.Errorf("address = %q, want checksummed %q", got, want)
	}
	if cfg.Watches[0].Kind != watch.KindBalanceChange {
		t.Errorf("kind = %q", cfg.Watches[0].Kind)
	}
}
