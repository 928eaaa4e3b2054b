package watch

import (
	"context"
	"math/big"

	"github.com/flarewatch/flarewatch/internal/flarekit"
)

// pollBalanceChange emits when the native balance differs from the snapshot.
// The first observation seeds only.
func (e *Engine) pollBalanceChange(ctx context.Context) ([]Event, error) {
	cur, err := e.reader.Balance(ctx, e.cfg.Address)
	if err != nil {
		return nil, err
	}
	return e.diffBigInt(ctx, fieldLastBalance, cur)
}

// pollVotePowerChanged emits when the WNat vote power of the address differs
// from the snapshot. Same policy as balance-change against a different read.
func (e *Engine) pollVotePowerChanged(ctx context.Context) ([]Event, error) {
	cur, err := e.reader.VotePowerOf(ctx, e.cfg.Address)
	if err != nil {
		return nil, err
	}
	return e.diffBigInt(ctx, fieldLastVotePower, cur)
}

// diffBigInt is the shared big-integer inequality policy: seed on first
// observation, emit with direction and delta on any change, always persist
// the fresh value as a decimal string.
func (e *Engine) diffBigInt(ctx context.Context, field string, cur *big.Int) ([]Event, error) {
	prev, seeded, err := e.state.getBigInt(ctx, field)
	if err != nil {
		return nil, err
	}

	var events []Event
	if seeded && cur.Cmp(prev) != 0 {
		delta := new(big.Int).Sub(cur, prev)
		dir := DirectionIncrease
		if delta.Sign() < 0 {
			dir = DirectionDecrease
		}

		ev := e.newEvent(e.cfg.Address, flarekit.FormatEther(cur), strPtr(flarekit.FormatEther(prev)))
		ev.Direction = dir
		ev.Delta = flarekit.FormatEther(new(big.Int).Abs(delta))
		ev.Details = map[string]any{
			"currentWei":  cur.String(),
			"previousWei": prev.String(),
		}
		events = append(events, ev)
	}

	if err := e.state.set(ctx, map[string]string{field: cur.String()}); err != nil {
		return nil, err
	}
	return events, nil
}
