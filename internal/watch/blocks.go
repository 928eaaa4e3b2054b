package watch

import (
	"context"
	"strconv"

	"github.com/flarewatch/flarewatch/internal/flarekit"
)

// pollNewBlock emits once per poll when the chain advanced. The first poll
// only seeds the baseline: without it every restart would replay the entire
// chain tip as a "new block".
func (e *Engine) pollNewBlock(ctx context.Context) ([]Event, error) {
	cur, err := e.reader.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	prev, seeded, err := e.state.getUint64(ctx, fieldLastBlockNum)
	if err != nil {
		return nil, err
	}

	var events []Event
	if seeded && cur > prev {
		ev := e.newEvent("", strconv.FormatUint(cur, 10), strPtr(strconv.FormatUint(prev, 10)))
		ev.Details = map[string]any{
			"blockNumber":   cur,
			"blocksElapsed": cur - prev,
		}
		events = append(events, ev)
	}

	if err := e.state.setUint64(ctx, fieldLastBlockNum, cur); err != nil {
		return nil, err
	}
	return events, nil
}

// pollNewTransaction scans every block in (lastBlock, current] for
// transactions touching the watched address, one event per match. The first
// poll seeds lastBlock with the current head so history is never backfilled.
func (e *Engine) pollNewTransaction(ctx context.Context) ([]Event, error) {
	cur, err := e.reader.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	prev, seeded, err := e.state.getUint64(ctx, fieldLastBlock)
	if err != nil {
		return nil, err
	}
	if !seeded {
		if err := e.state.setUint64(ctx, fieldLastBlock, cur); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var events []Event
	for n := prev + 1; n <= cur; n++ {
		block, err := e.reader.BlockWithTransactions(ctx, n)
		if err != nil {
			return nil, err
		}
		for _, tx := range block.Transactions {
			if !tx.Touches(e.cfg.Address) {
				continue
			}
			if e.cfg.MinValue != nil && tx.Value.Cmp(e.cfg.MinValue) < 0 {
				continue
			}

			ev := e.newEvent(e.cfg.Address, flarekit.FormatEther(tx.Value), nil)
			ev.Details = map[string]any{
				"txHash":      tx.Hash,
				"from":        tx.From,
				"to":          tx.To,
				"valueWei":    tx.Value.String(),
				"blockNumber": tx.BlockNumber,
			}
			if tx.From == e.cfg.Address {
				ev.Direction = DirectionDecrease
			} else {
				ev.Direction = DirectionIncrease
			}
			events = append(events, ev)
		}
	}

	if err := e.state.setUint64(ctx, fieldLastBlock, cur); err != nil {
		return nil, err
	}
	return events, nil
}
