package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flarewatch/flarewatch/internal/chain"
	"github.com/flarewatch/flarewatch/internal/flarekit"
	"github.com/flarewatch/flarewatch/internal/sink"
	"github.com/flarewatch/flarewatch/internal/watch"
)

// Config holds the watcher daemon configuration.
type Config struct {
	// Network is one of flare, songbird, coston, coston2.
	Network string `yaml:"network"`

	RPC RPCConfig `yaml:"rpc"`

	Snapshot SnapshotConfig `yaml:"snapshot"`

	Sinks SinksConfig `yaml:"sinks"`

	// MetricsAddr serves Prometheus metrics; empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// DefaultInterval applies to watches without their own interval.
	DefaultInterval time.Duration `yaml:"default_interval"`

	Watches []WatchConfig `yaml:"watches"`
}

// RPCConfig holds RPC connection settings.
type RPCConfig struct {
	// URL of the JSON-RPC endpoint; empty uses the network's public one.
	URL string `yaml:"url"`

	// Timeout bounds each poll tick end to end.
	Timeout time.Duration `yaml:"timeout"`
}

// SnapshotConfig selects where last-observed state is kept.
type SnapshotConfig struct {
	// Backend is "memory" or "redis".
	Backend string `yaml:"backend"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings for the snapshot store.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SinksConfig enables the event destinations. Multiple sinks may be active
// at once; every tick's events go to all of them.
type SinksConfig struct {
	Stdout  bool                `yaml:"stdout"`
	NATS    *sink.NATSConfig    `yaml:"nats"`
	Kafka   *sink.KafkaConfig   `yaml:"kafka"`
	Archive *sink.ArchiveConfig `yaml:"archive"`
}

// WatchConfig is one watch entry of the config file.
type WatchConfig struct {
	watch.Config `yaml:",inline"`

	// Interval between polls; falls back to the daemon default.
	Interval time.Duration `yaml:"interval"`

	// MinValue filters new-transaction events, denominated in the native
	// token ("1.5" = 1.5 FLR).
	MinValue string `yaml:"min_value"`
}

// LoadConfig layers defaults, the optional config file and the CLI flags.
func LoadConfig(configPath, network, rpcURL string) (*Config, error) {
	cfg := &Config{
		Network: string(chain.Flare),
		RPC: RPCConfig{
			Timeout: 30 * time.Second,
		},
		Snapshot: SnapshotConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "flarewatch:",
			},
		},
		Sinks: SinksConfig{
			Stdout: true,
		},
		DefaultInterval: 30 * time.Second,
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if network != "" {
		cfg.Network = network
	}
	if rpcURL != "" {
		cfg.RPC.URL = rpcURL
	}

	if _, err := chain.ParseNetwork(cfg.Network); err != nil {
		return nil, err
	}
	switch cfg.Snapshot.Backend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q (want memory or redis)", cfg.Snapshot.Backend)
	}
	if len(cfg.Watches) == 0 {
		return nil, fmt.Errorf("no watches configured")
	}

	for i := range cfg.Watches {
		w := &cfg.Watches[i]
		if w.Interval <= 0 {
			w.Interval = cfg.DefaultInterval
		}
		if w.MinValue != "" {
			min, err := flarekit.ParseEther(w.MinValue)
			if err != nil {
				return nil, fmt.Errorf("watch %s: %w", w.InstanceID, err)
			}
			w.Config.MinValue = min
		}
		if err := w.Config.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
