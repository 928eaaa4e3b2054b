package watch

import (
	"context"
	"encoding/json"
	"math"
	"strconv"

	"github.com/flarewatch/flarewatch/internal/flarekit"
)

// pollPriceUpdate emits when the formatted price string changed. The compare
// is on the formatted string, not the raw integer: two readings that format
// identically are the same price. Unlike the balance policy, the very first
// observation emits too, with a nil previous.
func (e *Engine) pollPriceUpdate(ctx context.Context) ([]Event, error) {
	p, err := e.reader.CurrentPrice(ctx, e.cfg.Symbol)
	if err != nil {
		return nil, err
	}
	cur := flarekit.FormatUnits(p.Value, p.Decimals)

	prev, seen, err := e.state.getString(ctx, fieldLastPrice)
	if err != nil {
		return nil, err
	}

	var events []Event
	if !seen || cur != prev {
		var prevPtr *string
		if seen {
			prevPtr = strPtr(prev)
		}
		ev := e.newEvent(e.cfg.Symbol, cur, prevPtr)
		ev.Details = map[string]any{
			"decimals":       p.Decimals,
			"priceTimestamp": p.Timestamp,
		}
		events = append(events, ev)
	}

	if err := e.state.set(ctx, map[string]string{fieldLastPrice: cur}); err != nil {
		return nil, err
	}
	return events, nil
}

// pollAllPricesUpdate diffs each symbol independently against its own
// last-seen entry; symbols absent from the snapshot are first observations
// and emit with a nil previous. The snapshot mapping is replaced wholesale
// with the fresh readings.
func (e *Engine) pollAllPricesUpdate(ctx context.Context) ([]Event, error) {
	prices, err := e.reader.CurrentPrices(ctx, e.cfg.Symbols)
	if err != nil {
		return nil, err
	}

	last, _, err := e.state.getStringMap(ctx, fieldLastPrices)
	if err != nil {
		return nil, err
	}

	fresh := make(map[string]string, len(prices))
	var events []Event
	for _, p := range prices {
		cur := flarekit.FormatUnits(p.Value, p.Decimals)
		fresh[p.Symbol] = cur

		prev, seen := last[p.Symbol]
		if seen && cur == prev {
			continue
		}
		var prevPtr *string
		if seen {
			prevPtr = strPtr(prev)
		}
		ev := e.newEvent(p.Symbol, cur, prevPtr)
		ev.Details = map[string]any{
			"decimals":       p.Decimals,
			"priceTimestamp": p.Timestamp,
		}
		events = append(events, ev)
	}

	encoded, err := json.Marshal(fresh)
	if err != nil {
		return nil, err
	}
	if err := e.state.set(ctx, map[string]string{fieldLastPrices: string(encoded)}); err != nil {
		return nil, err
	}
	return events, nil
}

// pollPriceThreshold is edge-triggered: it fires on the poll where the price
// crosses the configured threshold, not while it sits beyond it. The first
// poll seeds the baseline with the current price and can therefore never
// fire.
func (e *Engine) pollPriceThreshold(ctx context.Context) ([]Event, error) {
	p, err := e.reader.CurrentPrice(ctx, e.cfg.Symbol)
	if err != nil {
		return nil, err
	}
	cur, err := strconv.ParseFloat(flarekit.FormatUnits(p.Value, p.Decimals), 64)
	if err != nil {
		return nil, err
	}

	prev, seeded, err := e.state.getFloat(ctx, fieldLastThresholdPrice)
	if err != nil {
		return nil, err
	}

	var events []Event
	if seeded {
		threshold := e.cfg.Threshold
		fired := false
		var dir Direction

		switch e.cfg.ThresholdType {
		case ThresholdAbove:
			fired = prev < threshold && cur >= threshold
			dir = DirectionIncrease
		case ThresholdBelow:
			fired = prev > threshold && cur <= threshold
			dir = DirectionDecrease
		case ThresholdChangePercent:
			if prev != 0 {
				change := math.Abs((cur - prev) / prev * 100)
				fired = change >= threshold
				if cur >= prev {
					dir = DirectionIncrease
				} else {
					dir = DirectionDecrease
				}
			}
		}

		if fired {
			ev := e.newEvent(e.cfg.Symbol, formatFloat(cur), strPtr(formatFloat(prev)))
			ev.Direction = dir
			ev.Details = map[string]any{
				"threshold":     threshold,
				"thresholdType": string(e.cfg.ThresholdType),
			}
			if e.cfg.ThresholdType == ThresholdChangePercent && prev != 0 {
				ev.Details["changePercent"] = math.Abs((cur - prev) / prev * 100)
			}
			events = append(events, ev)
		}
	}

	if err := e.state.set(ctx, map[string]string{fieldLastThresholdPrice: formatFloat(cur)}); err != nil {
		return nil, err
	}
	return events, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
