package flarekit

import "time"

// PriceEpochConfig mirrors the FtsoManager price epoch configuration.
type PriceEpochConfig struct {
	FirstEpochStart time.Time
	EpochDuration   time.Duration
	RevealDuration  time.Duration
}

// PriceEpochAt returns the price epoch id containing ts. Timestamps before the
// first epoch start map to epoch 0.
func (c PriceEpochConfig) PriceEpochAt(ts time.Time) uint64 {
	if !ts.After(c.FirstEpochStart) {
		return 0
	}
	return uint64(ts.Sub(c.FirstEpochStart) / c.EpochDuration)
}

// PriceEpochEnd returns when submissions for the given epoch close.
func (c PriceEpochConfig) PriceEpochEnd(epoch uint64) time.Time {
	return c.FirstEpochStart.Add(time.Duration(epoch+1) * c.EpochDuration)
}

// RevealEnd returns when the reveal window for the given epoch closes.
func (c PriceEpochConfig) RevealEnd(epoch uint64) time.Time {
	return c.PriceEpochEnd(epoch).Add(c.RevealDuration)
}

// RewardEpochStartTime estimates when targetEpoch started, extrapolating
// backwards (or forwards) from the known start of the current epoch at a fixed
// epoch duration. This is an approximation: on networks where the epoch
// duration was changed historically the extrapolated time drifts from the
// on-chain timestamp. Callers needing the exact value must read it from the
// FtsoManager instead.
func RewardEpochStartTime(currentStart time.Time, currentEpoch, targetEpoch uint64, epochDuration time.Duration) time.Time {
	if targetEpoch >= currentEpoch {
		return currentStart.Add(time.Duration(targetEpoch-currentEpoch) * epochDuration)
	}
	return currentStart.Add(-time.Duration(currentEpoch-targetEpoch) * epochDuration)
}

// EstimateClaimedEpochs infers which past reward epochs were already claimed:
// every epoch in [firstEpoch, currentEpoch) that is absent from the claimable
// set is assumed claimed (or expired). This is a best-effort estimate from
// absence, not an authoritative on-chain record.
func EstimateClaimedEpochs(firstEpoch, currentEpoch uint64, claimable []uint64) []uint64 {
	open := make(map[uint64]struct{}, len(claimable))
	for _, e := range claimable {
		open[e] = struct{}{}
	}

	var claimed []uint64
	for e := firstEpoch; e < currentEpoch; e++ {
		if _, ok := open[e]; !ok {
			claimed = append(claimed, e)
		}
	}
	return claimed
}
