package watch

import (
	"context"
	"encoding/json"

	"github.com/flarewatch/flarewatch/internal/flarekit"
)

// pollDelegationChanged emits when the serialized delegation list differs
// from the snapshot. Serialization keeps the order the chain reported, so a
// reordering on-chain counts as a change. The first observation seeds only.
func (e *Engine) pollDelegationChanged(ctx context.Context) ([]Event, error) {
	dels, err := e.reader.DelegatesOf(ctx, e.cfg.Address)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(dels)
	if err != nil {
		return nil, err
	}
	cur := string(encoded)

	prev, seeded, err := e.state.getString(ctx, fieldLastDelegation)
	if err != nil {
		return nil, err
	}

	var events []Event
	if seeded && cur != prev {
		var totalBips uint64
		for _, d := range dels {
			totalBips += uint64(d.Bips)
		}

		ev := e.newEvent(e.cfg.Address, cur, strPtr(prev))
		ev.Details = map[string]any{
			"delegations":  dels,
			"totalBips":    totalBips,
			"totalPercent": flarekit.BipsToPercentage(uint32(totalBips)),
		}
		events = append(events, ev)
	}

	if err := e.state.set(ctx, map[string]string{fieldLastDelegation: cur}); err != nil {
		return nil, err
	}
	return events, nil
}
