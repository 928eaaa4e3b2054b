// Package flarekit holds the Flare-specific arithmetic used by the watcher:
// basis-point conversions, delegation bookkeeping, epoch timing and
// wei-denominated unit formatting.
package flarekit

import (
	"errors"
	"fmt"
	"math"
)

// MaxDelegationBips is the whole of a delegator's vote power, in basis points.
const MaxDelegationBips = 10000

var (
	// ErrBipsOutOfRange is returned when a bips value falls outside [0, 10000].
	ErrBipsOutOfRange = errors.New("bips out of range")

	// ErrDelegationOverflow is returned when a candidate delegation would push
	// the delegator's total above 100%.
	ErrDelegationOverflow = errors.New("total delegation exceeds 10000 bips")
)

// Delegation is one {provider, bips} entry of a delegator.
type Delegation struct {
	Provider string `json:"address"`
	Bips     uint32 `json:"bips"`
}

// BipsToPercentage converts basis points to a percentage. 3333 bips -> 33.33%.
func BipsToPercentage(bips uint32) float64 {
	return float64(bips) / 100
}

// PercentageToBips converts a percentage to basis points, rounding half away
// from zero. The round trip through BipsToPercentage is lossy for percentages
// with more than two decimal places; callers must not rely on exact inversion.
func PercentageToBips(pct float64) uint32 {
	return uint32(math.Round(pct * 100))
}

// ValidateDelegation checks whether a delegator may set the delegation to
// newProvider at newBips, given their existing entries. The entry for
// newProvider itself is excluded from the sum since it is being replaced.
// A total of exactly 10000 bips is allowed.
func ValidateDelegation(existing []Delegation, newProvider string, newBips uint32) error {
	if newBips > MaxDelegationBips {
		return fmt.Errorf("%w: %d", ErrBipsOutOfRange, newBips)
	}

	var sum uint64
	for _, d := range existing {
		if equalAddress(d.Provider, newProvider) {
			continue
		}
		sum += uint64(d.Bips)
	}

	if sum+uint64(newBips) > MaxDelegationBips {
		return fmt.Errorf("%w: existing %d + new %d", ErrDelegationOverflow, sum, newBips)
	}
	return nil
}

// equalAddress compares two hex addresses case-insensitively without pulling
// in the full common.Address machinery for what is a plain string compare.
func equalAddress(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
