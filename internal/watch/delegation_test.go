package watch

import (
	"context"
	"testing"

	"github.com/flarewatch/flarewatch/internal/flarekit"
)

func TestDelegationChanged(t *testing.T) {
	ctx := context.Background()
	reader := &mockReader{delegations: []flarekit.Delegation{
		{Provider: addrOther, Bips: 5000},
	}}
	eng, _ := newTestEngine(t, Config{InstanceID: "w", Kind: KindDelegationChanged, Address: addrWatched}, reader)

	// First observation seeds only.
	if events, err := eng.Poll(ctx); err != nil || len(events) != 0 {
		t.Fatalf("cold start: events=%d err=%v", len(events), err)
	}

	// Unchanged list: silent.
	if events, _ := eng.Poll(ctx); len(events) != 0 {
		t.Errorf("unchanged delegation emitted %d events", len(events))
	}

	// Bips change fires and carries the total.
	reader.delegations = []flarekit.Delegation{
		{Provider: addrOther, Bips: 7500},
	}
	events, err := eng.Poll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Details["totalBips"] != uint64(7500) {
		t.Errorf("totalBips = %v", events[0].Details["totalBips"])
	}
	if events[0].Details["totalPercent"] != 75.0 {
		t.Errorf("totalPercent = %v", events[0].Details["totalPercent"])
	}
}

func TestDelegationChangedDetectsReorder(t *testing.T) {
	// The diff is on the serialized list in chain order, so a reorder of
	// the same entries counts as a change.
	ctx := context.Background()
	a := flarekit.Delegation{Provider: addrOther, Bips: 5000}
	b := flarekit.Delegation{Provider: addrWatched, Bips: 3000}

	reader := &mockReader{delegations: []flarekit.Delegation{a, b}}
	eng, _ := newTestEngine(t, Config{InstanceID: "w", Kind: KindDelegationChanged, Address: addrWatched}, reader)

	if _, err := eng.Poll(ctx); err != nil {
		t.Fatal(err)
	}

	reader.delegations = []flarekit.Delegation{b, a}
	events, err := eng.Poll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("reorder emitted %d events, want 1", len(events))
	}
}
