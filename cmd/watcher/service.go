package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/flarewatch/flarewatch/internal/chain"
	"github.com/flarewatch/flarewatch/internal/sink"
	"github.com/flarewatch/flarewatch/internal/snapshot"
	"github.com/flarewatch/flarewatch/internal/watch"
)

// startupNotice is printed once per process, on the first service start,
// regardless of how many watchers are constructed afterwards.
var startupNotice sync.Once

// Service owns the poll loops of all configured watches. Each watch runs on
// its own ticker; the host-side contract is single-flight polling per watch,
// which the per-watch goroutine provides by construction.
type Service struct {
	cfg    *Config
	logger *slog.Logger

	client  *chain.Client
	store   snapshot.Store
	redisC  *redis.Client
	sinks   []sink.Sink
	engines []*engineLoop

	registry *prometheus.Registry
	metrics  *watch.Metrics

	metricsServer *http.Server
}

type engineLoop struct {
	engine   *watch.Engine
	interval time.Duration
}

// NewService wires the chain client, snapshot store, sinks and one engine
// per configured watch.
func NewService(ctx context.Context, cfg *Config, logger *slog.Logger) (*Service, error) {
	network, err := chain.ParseNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	client, err := chain.Dial(ctx, network, cfg.RPC.URL, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      cfg,
		logger:   logger.With("component", "watcher"),
		client:   client,
		registry: prometheus.NewRegistry(),
	}
	s.metrics = watch.NewMetrics(s.registry)

	if err := s.buildStore(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.buildSinks(ctx); err != nil {
		s.Close()
		return nil, err
	}

	for _, wc := range cfg.Watches {
		eng, err := watch.NewEngine(wc.Config, client, s.store, logger, s.metrics)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.engines = append(s.engines, &engineLoop{engine: eng, interval: wc.Interval})
	}

	return s, nil
}

func (s *Service) buildStore(ctx context.Context) error {
	switch s.cfg.Snapshot.Backend {
	case "redis":
		rc := redis.NewClient(&redis.Options{
			Addr:     s.cfg.Snapshot.Redis.Addr,
			Password: s.cfg.Snapshot.Redis.Password,
			DB:       s.cfg.Snapshot.Redis.DB,
		})
		if err := rc.Ping(ctx).Err(); err != nil {
			rc.Close()
			return fmt.Errorf("redis ping: %w", err)
		}
		s.redisC = rc
		s.store = snapshot.NewRedisStore(rc, s.cfg.Snapshot.Redis.KeyPrefix)
	default:
		s.store = snapshot.NewMemoryStore()
	}
	return nil
}

func (s *Service) buildSinks(ctx context.Context) error {
	if s.cfg.Sinks.Stdout {
		s.sinks = append(s.sinks, sink.NewStdoutSink(os.Stdout))
	}
	if nc := s.cfg.Sinks.NATS; nc != nil {
		ns, err := sink.NewNATSSink(*nc)
		if err != nil {
			return err
		}
		s.sinks = append(s.sinks, ns)
	}
	if kc := s.cfg.Sinks.Kafka; kc != nil {
		ks, err := sink.NewKafkaSink(*kc)
		if err != nil {
			return err
		}
		s.sinks = append(s.sinks, ks)
	}
	if ac := s.cfg.Sinks.Archive; ac != nil {
		ar, err := sink.NewArchive(ctx, *ac)
		if err != nil {
			return err
		}
		s.sinks = append(s.sinks, ar)
	}
	if len(s.sinks) == 0 {
		return fmt.Errorf("no sinks configured")
	}
	return nil
}

// Run blocks until the context is cancelled. A failed tick is logged and the
// loop keeps going; the engine left the snapshot untouched, so the next tick
// re-diffs from the last good baseline.
func (s *Service) Run(ctx context.Context) error {
	startupNotice.Do(func() {
		s.logger.Info("flarewatch starting",
			"network", s.cfg.Network,
			"watches", len(s.engines),
			"snapshot_backend", s.cfg.Snapshot.Backend,
		)
	})

	if s.cfg.MetricsAddr != "" {
		s.serveMetrics()
	}

	if cfg, err := s.client.PriceEpochConfig(ctx); err == nil {
		epoch := cfg.PriceEpochAt(time.Now())
		s.logger.Info("FTSO price epoch timing",
			"current_epoch", epoch,
			"epoch_ends", cfg.PriceEpochEnd(epoch),
		)
	}

	var wg sync.WaitGroup
	for _, loop := range s.engines {
		wg.Add(1)
		go func(loop *engineLoop) {
			defer wg.Done()
			s.runLoop(ctx, loop)
		}(loop)
	}

	<-ctx.Done()
	wg.Wait()

	if s.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.metricsServer.Shutdown(shutdownCtx)
	}
	return ctx.Err()
}

func (s *Service) runLoop(ctx context.Context, loop *engineLoop) {
	cfg := loop.engine.Config()
	logger := s.logger.With("watch", cfg.InstanceID, "kind", string(cfg.Kind))
	logger.Info("watch started", "interval", loop.interval)

	ticker := time.NewTicker(loop.interval)
	defer ticker.Stop()

	// First tick immediately so cold-start seeding happens on startup, not
	// one interval later.
	s.pollOnce(ctx, loop, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return
		case <-ticker.C:
			s.pollOnce(ctx, loop, logger)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context, loop *engineLoop, logger *slog.Logger) {
	tickCtx := ctx
	var cancel context.CancelFunc
	if s.cfg.RPC.Timeout > 0 {
		tickCtx, cancel = context.WithTimeout(ctx, s.cfg.RPC.Timeout)
		defer cancel()
	}

	events, err := loop.engine.Poll(tickCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("tick failed", "error", err)
		return
	}
	if len(events) == 0 {
		return
	}

	for _, snk := range s.sinks {
		if err := snk.Publish(tickCtx, events); err != nil {
			logger.Error("sink publish failed", "error", err, "events", len(events))
		}
	}
}

func (s *Service) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.metricsServer = &http.Server{Addr: s.cfg.MetricsAddr, Handler: mux}
	go func() {
		s.logger.Info("metrics listening", "addr", s.cfg.MetricsAddr)
		if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server failed", "error", err)
		}
	}()
}

// Close releases all connections. Safe to call on a partially built service.
func (s *Service) Close() {
	for _, snk := range s.sinks {
		snk.Close()
	}
	if s.redisC != nil {
		s.redisC.Close()
	}
	if s.client != nil {
		s.client.Close()
	}
}
