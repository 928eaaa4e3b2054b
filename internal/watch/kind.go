// Package watch implements the change-detection engine: each poll tick
// fetches one kind of on-chain fact, diffs it against the last-observed
// snapshot and emits zero or more events. The snapshot is always overwritten
// with the fresh value, whether or not anything emitted.
package watch

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Kind is one of the monitored fact kinds.
type Kind string

const (
	KindNewBlock          Kind = "new-block"
	KindNewTransaction    Kind = "new-transaction"
	KindBalanceChange     Kind = "balance-change"
	KindPriceUpdate       Kind = "price-update"
	KindAllPricesUpdate   Kind = "all-prices-update"
	KindPriceThreshold    Kind = "price-threshold"
	KindNewPriceEpoch     Kind = "new-price-epoch"
	KindRewardEpochEnded  Kind = "reward-epoch-ended"
	KindRewardsAvailable  Kind = "rewards-available"
	KindDelegationChanged Kind = "delegation-changed"
	KindVotePowerChanged  Kind = "vote-power-changed"
)

// ThresholdType selects the price-threshold firing rule.
type ThresholdType string

const (
	// ThresholdAbove fires when the price crosses the threshold upwards.
	ThresholdAbove ThresholdType = "above"
	// ThresholdBelow fires when the price crosses the threshold downwards.
	ThresholdBelow ThresholdType = "below"
	// ThresholdChangePercent fires when the price moved by at least the
	// threshold percent since the previous poll, in either direction.
	ThresholdChangePercent ThresholdType = "changePercent"
)

// Config describes one watch instance.
type Config struct {
	// InstanceID scopes the snapshot; it must be stable across restarts.
	InstanceID string `yaml:"id"`

	Kind Kind `yaml:"kind"`

	// Address is the watched account for transaction, balance, reward,
	// delegation and vote-power kinds.
	Address string `yaml:"address,omitempty"`

	// Symbol is the FTSO symbol for price-update and price-threshold.
	Symbol string `yaml:"symbol,omitempty"`

	// Symbols limits all-prices-update; empty means every supported symbol.
	Symbols []string `yaml:"symbols,omitempty"`

	// Threshold and ThresholdType configure price-threshold.
	Threshold     float64       `yaml:"threshold,omitempty"`
	ThresholdType ThresholdType `yaml:"threshold_type,omitempty"`

	// MinValue filters new-transaction events by wei value; nil means no
	// minimum.
	MinValue *big.Int `yaml:"-"`
}

var addressKinds = map[Kind]bool{
	KindNewTransaction:    true,
	KindBalanceChange:     true,
	KindRewardsAvailable:  true,
	KindDelegationChanged: true,
	KindVotePowerChanged:  true,
}

var knownKinds = map[Kind]bool{
	KindNewBlock:          true,
	KindNewTransaction:    true,
	KindBalanceChange:     true,
	KindPriceUpdate:       true,
	KindAllPricesUpdate:   true,
	KindPriceThreshold:    true,
	KindNewPriceEpoch:     true,
	KindRewardEpochEnded:  true,
	KindRewardsAvailable:  true,
	KindDelegationChanged: true,
	KindVotePowerChanged:  true,
}

// Validate checks the configuration and normalizes the watched address to its
// checksummed form. Validation failures surface before any chain read.
func (c *Config) Validate() error {
	if c.InstanceID == "" {
		return fmt.Errorf("watch: instance id is required")
	}
	if !knownKinds[c.Kind] {
		return fmt.Errorf("watch %s: unknown event kind %q", c.InstanceID, c.Kind)
	}

	if addressKinds[c.Kind] {
		if !common.IsHexAddress(c.Address) {
			return fmt.Errorf("watch %s: malformed address %q", c.InstanceID, c.Address)
		}
		c.Address = common.HexToAddress(c.Address).Hex()
	}

	switch c.Kind {
	case KindPriceUpdate, KindPriceThreshold:
		if c.Symbol == "" {
			return fmt.Errorf("watch %s: symbol is required for %s", c.InstanceID, c.Kind)
		}
	}

	if c.Kind == KindPriceThreshold {
		switch c.ThresholdType {
		case ThresholdAbove, ThresholdBelow, ThresholdChangePercent:
		default:
			return fmt.Errorf("watch %s: unknown threshold type %q", c.InstanceID, c.ThresholdType)
		}
		if c.Threshold <= 0 {
			return fmt.Errorf("watch %s: threshold must be positive", c.InstanceID)
		}
	}

	return nil
}
