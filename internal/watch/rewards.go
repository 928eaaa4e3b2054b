package watch

import (
	"context"
	"math/big"
	"strconv"

	"github.com/flarewatch/flarewatch/internal/flarekit"
)

// pollRewardsAvailable emits when the number of claimable reward epochs grew.
// An absent baseline counts as zero, so an account that already has claimable
// rewards emits on the first poll. The payload totals the claimable amounts
// across all current epochs with one sequential lookup per epoch; any failing
// lookup aborts the whole tick.
func (e *Engine) pollRewardsAvailable(ctx context.Context) ([]Event, error) {
	epochs, err := e.reader.ClaimableRewardEpochs(ctx, e.cfg.Address)
	if err != nil {
		return nil, err
	}
	count := uint64(len(epochs))

	prev, seen, err := e.state.getUint64(ctx, fieldLastClaimableCount)
	if err != nil {
		return nil, err
	}

	var events []Event
	if count > prev {
		total := new(big.Int)
		for _, epoch := range epochs {
			amount, err := e.reader.ClaimableAmount(ctx, e.cfg.Address, epoch)
			if err != nil {
				return nil, err
			}
			total.Add(total, amount)
		}

		var prevPtr *string
		if seen {
			prevPtr = strPtr(strconv.FormatUint(prev, 10))
		}
		ev := e.newEvent(e.cfg.Address, strconv.FormatUint(count, 10), prevPtr)
		ev.Direction = DirectionIncrease
		ev.Details = map[string]any{
			"claimableEpochs":   epochs,
			"totalClaimable":    flarekit.FormatEther(total),
			"totalClaimableWei": total.String(),
		}
		events = append(events, ev)
	}

	if err := e.state.setUint64(ctx, fieldLastClaimableCount, count); err != nil {
		return nil, err
	}
	return events, nil
}
