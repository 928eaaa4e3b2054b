package watch

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/flarewatch/flarewatch/internal/chain"
	"github.com/flarewatch/flarewatch/internal/flarekit"
	"github.com/flarewatch/flarewatch/internal/snapshot"
)

// ChainReader is the chain-reading collaborator the engine polls against.
// chain.Client implements it; tests substitute a mock.
type ChainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	BlockWithTransactions(ctx context.Context, number uint64) (*chain.Block, error)
	Balance(ctx context.Context, address string) (*big.Int, error)
	CurrentPrice(ctx context.Context, symbol string) (chain.Price, error)
	CurrentPrices(ctx context.Context, symbols []string) ([]chain.Price, error)
	CurrentPriceEpoch(ctx context.Context) (uint64, error)
	CurrentRewardEpoch(ctx context.Context) (uint64, error)
	ClaimableRewardEpochs(ctx context.Context, address string) ([]uint64, error)
	ClaimableAmount(ctx context.Context, address string, epoch uint64) (*big.Int, error)
	DelegatesOf(ctx context.Context, address string) ([]flarekit.Delegation, error)
	VotePowerOf(ctx context.Context, address string) (*big.Int, error)
}

// Engine runs the diff policy of one watch instance. One Poll call is one
// tick: fetch, diff against the snapshot, write the snapshot back, return the
// emitted events. A fetch error aborts the tick and leaves the snapshot
// untouched so the next tick re-diffs from the last good baseline.
type Engine struct {
	cfg     Config
	reader  ChainReader
	state   state
	logger  *slog.Logger
	metrics *Metrics
}

// NewEngine validates the configuration and builds the engine. metrics may be
// nil.
func NewEngine(cfg Config, reader ChainReader, store snapshot.Store, logger *slog.Logger, metrics *Metrics) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:     cfg,
		reader:  reader,
		state:   state{store: store, instance: cfg.InstanceID},
		logger:  logger.With("component", "watch", "watch", cfg.InstanceID, "kind", string(cfg.Kind)),
		metrics: metrics,
	}, nil
}

// Config returns the validated watch configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Poll runs one tick. An empty result with nil error means nothing changed.
func (e *Engine) Poll(ctx context.Context) ([]Event, error) {
	start := time.Now()
	events, err := e.tick(ctx)
	e.metrics.observeTick(e.cfg.Kind, time.Since(start), len(events), err)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		e.logger.Debug("emitted events", "count", len(events))
	}
	return events, nil
}

func (e *Engine) tick(ctx context.Context) ([]Event, error) {
	switch e.cfg.Kind {
	case KindNewBlock:
		return e.pollNewBlock(ctx)
	case KindNewTransaction:
		return e.pollNewTransaction(ctx)
	case KindBalanceChange:
		return e.pollBalanceChange(ctx)
	case KindPriceUpdate:
		return e.pollPriceUpdate(ctx)
	case KindAllPricesUpdate:
		return e.pollAllPricesUpdate(ctx)
	case KindPriceThreshold:
		return e.pollPriceThreshold(ctx)
	case KindNewPriceEpoch:
		return e.pollNewPriceEpoch(ctx)
	case KindRewardEpochEnded:
		return e.pollRewardEpochEnded(ctx)
	case KindRewardsAvailable:
		return e.pollRewardsAvailable(ctx)
	case KindDelegationChanged:
		return e.pollDelegationChanged(ctx)
	case KindVotePowerChanged:
		return e.pollVotePowerChanged(ctx)
	default:
		// Unreachable after Validate, kept for safety.
		return nil, fmt.Errorf("unknown event kind %q", e.cfg.Kind)
	}
}
