package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/flarewatch/flarewatch/internal/snapshot"
)

// Snapshot field names. Every field is absent until first written; the engine
// treats absence as a cold start.
const (
	fieldLastBlockNum       = "lastBlockNum"
	fieldLastBlock          = "lastBlock"
	fieldLastBalance        = "lastBalance"
	fieldLastPrice          = "lastPrice"
	fieldLastPrices         = "lastPrices"
	fieldLastThresholdPrice = "lastThresholdPrice"
	fieldLastPriceEpoch     = "lastPriceEpoch"
	fieldLastRewardEpoch    = "lastRewardEpoch"
	fieldLastClaimableCount = "lastClaimableCount"
	fieldLastDelegation     = "lastDelegation"
	fieldLastVotePower      = "lastVotePower"
)

// state wraps the snapshot store with the instance scope and typed accessors.
type state struct {
	store    snapshot.Store
	instance string
}

func (s state) getString(ctx context.Context, field string) (string, bool, error) {
	return s.store.Get(ctx, s.instance, field)
}

func (s state) getUint64(ctx context.Context, field string) (uint64, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.instance, field)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt snapshot field %s=%q: %w", field, raw, err)
	}
	return v, true, nil
}

func (s state) getFloat(ctx context.Context, field string) (float64, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.instance, field)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt snapshot field %s=%q: %w", field, raw, err)
	}
	return v, true, nil
}

func (s state) getBigInt(ctx context.Context, field string) (*big.Int, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.instance, field)
	if err != nil || !ok {
		return nil, ok, err
	}
	v, good := new(big.Int).SetString(raw, 10)
	if !good {
		return nil, false, fmt.Errorf("corrupt snapshot field %s=%q", field, raw)
	}
	return v, true, nil
}

func (s state) getStringMap(ctx context.Context, field string) (map[string]string, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.instance, field)
	if err != nil || !ok {
		return nil, ok, err
	}
	m := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, false, fmt.Errorf("corrupt snapshot field %s: %w", field, err)
	}
	return m, true, nil
}

func (s state) set(ctx context.Context, fields map[string]string) error {
	return s.store.Set(ctx, s.instance, fields)
}

func (s state) setUint64(ctx context.Context, field string, v uint64) error {
	return s.set(ctx, map[string]string{field: strconv.FormatUint(v, 10)})
}
