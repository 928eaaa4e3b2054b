package watch

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/flarewatch/flarewatch/internal/chain"
)

func ftsoPrice(symbol string, value int64) chain.Price {
	return chain.Price{
		Symbol:    symbol,
		Value:     big.NewInt(value),
		Decimals:  5,
		Timestamp: time.Unix(1_700_000_000, 0).UTC(),
	}
}

func TestPriceUpdateColdStartEmits(t *testing.T) {
	ctx := context.Background()
	reader := &mockReader{prices: map[string]chain.Price{"FLR": ftsoPrice("FLR", 2345678)}}
	eng, store := newTestEngine(t, Config{InstanceID: "w", Kind: KindPriceUpdate, Symbol: "FLR"}, reader)

	events, err := eng.Poll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("first observation must emit, got %d events", len(events))
	}
	if events[0].Previous != nil {
		t.Errorf("first observation previous = %v, want nil", *events[0].Previous)
	}
	if events[0].Current != "23.45678" || events[0].Subject != "FLR" {
		t.Errorf("event = %+v", events[0])
	}
	if v, _ := snapshotField(t, store, "w", fieldLastPrice); v != "23.45678" {
		t.Errorf("lastPrice = %q", v)
	}

	// Same formatted price: silent.
	if events, _ := eng.Poll(ctx); len(events) != 0 {
		t.Errorf("unchanged price emitted %d events", len(events))
	}

	reader.prices["FLR"] = ftsoPrice("FLR", 2400000)
	events, _ = eng.Poll(ctx)
	if len(events) != 1 || events[0].Previous == nil || *events[0].Previous != "23.45678" {
		t.Errorf("changed price events = %+v", events)
	}
}

func TestPriceUpdateComparesFormattedString(t *testing.T) {
	// 2345678 and 2345678 at 5 decimals format identically; the diff is on
	// the string, so no event even if the read returned a fresh big.Int.
	ctx := context.Background()
	reader := &mockReader{prices: map[string]chain.Price{"FLR": ftsoPrice("FLR", 2345678)}}
	eng, _ := newTestEngine(t, Config{InstanceID: "w", Kind: KindPriceUpdate, Symbol: "FLR"}, reader)

	if _, err := eng.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	reader.prices["FLR"] = ftsoPrice("FLR", 2345678)
	if events, _ := eng.Poll(ctx); len(events) != 0 {
		t.Errorf("identical formatted price emitted %d events", len(events))
	}
}

func TestAllPricesUpdate(t *testing.T) {
	ctx := context.Background()
	reader := &mockReader{prices: map[string]chain.Price{
		"FLR": ftsoPrice("FLR", 2345678),
		"BTC": ftsoPrice("BTC", 4300000000000),
	}}
	eng, _ := newTestEngine(t, Config{InstanceID: "w", Kind: KindAllPricesUpdate}, reader)

	// Cold start: one event per observed symbol, each with nil previous.
	events, err := eng.Poll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("cold start emitted %d events, want 2", len(events))
	}
	for _, ev := range events {
		if ev.Previous != nil {
			t.Errorf("symbol %s previous = %v, want nil", ev.Subject, *ev.Previous)
		}
	}

	// Only FLR moves; BTC stays silent.
	reader.prices["FLR"] = ftsoPrice("FLR", 2400000)
	events, _ = eng.Poll(ctx)
	if len(events) != 1 || events[0].Subject != "FLR" {
		t.Fatalf("got %+v, want one FLR event", events)
	}
	if events[0].Previous == nil || *events[0].Previous != "23.45678" {
		t.Errorf("FLR previous = %v", events[0].Previous)
	}

	// A symbol appearing later is a first observation for that symbol only.
	reader.prices["XRP"] = ftsoPrice("XRP", 52000)
	events, _ = eng.Poll(ctx)
	if len(events) != 1 || events[0].Subject != "XRP" || events[0].Previous != nil {
		t.Errorf("got %+v, want one first-observation XRP event", events)
	}
}

func TestPriceThresholdEdgeTrigger(t *testing.T) {
	ctx := context.Background()
	reader := &mockReader{prices: map[string]chain.Price{"FLR": ftsoPrice("FLR", 900000)}} // 9.0
	cfg := Config{
		InstanceID:    "w",
		Kind:          KindPriceThreshold,
		Symbol:        "FLR",
		Threshold:     10,
		ThresholdType: ThresholdAbove,
	}
	eng, _ := newTestEngine(t, cfg, reader)

	// Cold start seeds the baseline with the current price; never fires.
	if events, err := eng.Poll(ctx); err != nil || len(events) != 0 {
		t.Fatalf("cold start: events=%d err=%v", len(events), err)
	}

	// previous=9, current=11, threshold=10: crossing fires exactly once.
	reader.prices["FLR"] = ftsoPrice("FLR", 1100000)
	events, err := eng.Poll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("crossing emitted %d events, want 1", len(events))
	}
	if events[0].Direction != DirectionIncrease {
		t.Errorf("direction = %q", events[0].Direction)
	}

	// previous=11, current=12: still above but no crossing, no event.
	reader.prices["FLR"] = ftsoPrice("FLR", 1200000)
	if events, _ := eng.Poll(ctx); len(events) != 0 {
		t.Errorf("level-trigger fired: %+v", events)
	}

	// Dip below and cross again: fires again.
	reader.prices["FLR"] = ftsoPrice("FLR", 950000)
	if events, _ := eng.Poll(ctx); len(events) != 0 {
		t.Errorf("dip below fired for type above: %+v", events)
	}
	reader.prices["FLR"] = ftsoPrice("FLR", 1000000) // exactly the threshold
	if events, _ := eng.Poll(ctx); len(events) != 1 {
		t.Errorf("crossing to exact threshold emitted %d events, want 1", len(events))
	}
}

func TestPriceThresholdBelow(t *testing.T) {
	ctx := context.Background()
	reader := &mockReader{prices: map[string]chain.Price{"FLR": ftsoPrice("FLR", 1100000)}} // 11.0
	cfg := Config{
		InstanceID:    "w",
		Kind:          KindPriceThreshold,
		Symbol:        "FLR",
		Threshold:     10,
		ThresholdType: ThresholdBelow,
	}
	eng, _ := newTestEngine(t, cfg, reader)

	if _, err := eng.Poll(ctx); err != nil {
		t.Fatal(err)
	}

	reader.prices["FLR"] = ftsoPrice("FLR", 900000)
	events, _ := eng.Poll(ctx)
	if len(events) != 1 || events[0].Direction != DirectionDecrease {
		t.Errorf("downward crossing events = %+v", events)
	}

	reader.prices["FLR"] = ftsoPrice("FLR", 800000)
	if events, _ := eng.Poll(ctx); len(events) != 0 {
		t.Errorf("still below fired again: %+v", events)
	}
}

func TestPriceThresholdChangePercent(t *testing.T) {
	ctx := context.Background()
	reader := &mockReader{prices: map[string]chain.Price{"FLR": ftsoPrice("FLR", 1000000)}} // 10.0
	cfg := Config{
		InstanceID:    "w",
		Kind:          KindPriceThreshold,
		Symbol:        "FLR",
		Threshold:     5, // percent
		ThresholdType: ThresholdChangePercent,
	}
	eng, _ := newTestEngine(t, cfg, reader)

	if _, err := eng.Poll(ctx); err != nil {
		t.Fatal(err)
	}

	// +4% from 10.0: below the 5% threshold.
	reader.prices["FLR"] = ftsoPrice("FLR", 1040000)
	if events, _ := eng.Poll(ctx); len(events) != 0 {
		t.Errorf("4%% move fired: %+v", events)
	}

	// -6% from 10.4: fires, direction decrease.
	reader.prices["FLR"] = ftsoPrice("FLR", 977600)
	events, _ := eng.Poll(ctx)
	if len(events) != 1 || events[0].Direction != DirectionDecrease {
		t.Errorf("6%% move events = %+v", events)
	}
}
