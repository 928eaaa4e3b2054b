package watch

import (
	"context"
	"strconv"
)

// pollNewPriceEpoch emits when the price epoch advanced. The first
// observation emits too, with a nil previous: the current price epoch is
// state worth announcing, whereas pollRewardEpochEnded reports a transition
// and therefore seeds silently.
func (e *Engine) pollNewPriceEpoch(ctx context.Context) ([]Event, error) {
	cur, err := e.reader.CurrentPriceEpoch(ctx)
	if err != nil {
		return nil, err
	}

	prev, seen, err := e.state.getUint64(ctx, fieldLastPriceEpoch)
	if err != nil {
		return nil, err
	}

	var events []Event
	if !seen {
		ev := e.newEvent("", strconv.FormatUint(cur, 10), nil)
		ev.Details = map[string]any{"priceEpochId": cur}
		events = append(events, ev)
	} else if cur > prev {
		ev := e.newEvent("", strconv.FormatUint(cur, 10), strPtr(strconv.FormatUint(prev, 10)))
		ev.Details = map[string]any{"priceEpochId": cur}
		events = append(events, ev)
	}

	if err := e.state.setUint64(ctx, fieldLastPriceEpoch, cur); err != nil {
		return nil, err
	}
	return events, nil
}

// pollRewardEpochEnded emits when the reward epoch advanced past a known
// baseline. The first observation only seeds.
func (e *Engine) pollRewardEpochEnded(ctx context.Context) ([]Event, error) {
	cur, err := e.reader.CurrentRewardEpoch(ctx)
	if err != nil {
		return nil, err
	}

	prev, seeded, err := e.state.getUint64(ctx, fieldLastRewardEpoch)
	if err != nil {
		return nil, err
	}

	var events []Event
	if seeded && cur > prev {
		ev := e.newEvent("", strconv.FormatUint(cur, 10), strPtr(strconv.FormatUint(prev, 10)))
		ev.Details = map[string]any{
			"endedEpoch":   prev,
			"currentEpoch": cur,
		}
		events = append(events, ev)
	}

	if err := e.state.setUint64(ctx, fieldLastRewardEpoch, cur); err != nil {
		return nil, err
	}
	return events, nil
}
