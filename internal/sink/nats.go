package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/flarewatch/flarewatch/internal/watch"
)

// NATSConfig holds the JetStream sink connection settings.
type NATSConfig struct {
	URL            string        `yaml:"url"`
	SubjectPrefix  string        `yaml:"subject_prefix"`
	Name           string        `yaml:"name"`
	ReconnectWait  time.Duration `yaml:"reconnect_wait"`
	MaxReconnects  int           `yaml:"max_reconnects"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DefaultNATSConfig returns sensible defaults for local development.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:            nats.DefaultURL,
		SubjectPrefix:  "flarewatch.events",
		Name:           "flarewatch",
		ReconnectWait:  2 * time.Second,
		MaxReconnects:  -1,
		ConnectTimeout: 10 * time.Second,
	}
}

// NATSSink publishes each event to JetStream on
// "<prefix>.<kind>". Streams matching the prefix must exist already;
// provisioning is an operator concern.
type NATSSink struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	prefix string
}

// NewNATSSink connects to NATS with JetStream enabled.
func NewNATSSink(cfg NATSConfig) (*NATSSink, error) {
	if cfg.URL == "" {
		cfg = DefaultNATSConfig()
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	return &NATSSink{nc: nc, js: js, prefix: cfg.SubjectPrefix}, nil
}

func (s *NATSSink) Publish(ctx context.Context, events []watch.Event) error {
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.ID, err)
		}
		subject := s.prefix + "." + string(ev.Kind)
		if _, err := s.js.Publish(ctx, subject, data); err != nil {
			return fmt.Errorf("publish %s to %s: %w", ev.ID, subject, err)
		}
	}
	return nil
}

func (s *NATSSink) Close() error {
	s.nc.Close()
	return nil
}
