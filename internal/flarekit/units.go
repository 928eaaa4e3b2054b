package flarekit

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of decimals of the native token (FLR/SGB/CFLR).
const EtherDecimals = 18

// FormatUnits renders a fixed-point integer value as a decimal string with the
// given number of decimals. Trailing zeros are trimmed but at least one
// fractional digit is always kept, so 1e18 wei formats as "1.0", not "1".
// This matches ethers-style formatting, which the watcher's string-compare
// diff policies depend on being stable.
func FormatUnits(value *big.Int, decimals int32) string {
	if value == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(value, -decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatEther renders a wei amount as an ether-denominated decimal string.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}

// ParseUnits converts a decimal string into its fixed-point integer
// representation with the given number of decimals. Values with more
// fractional digits than decimals are rejected rather than truncated.
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}
	return scaled.BigInt(), nil
}

// ParseEther converts an ether-denominated decimal string to wei.
func ParseEther(s string) (*big.Int, error) {
	return ParseUnits(s, EtherDecimals)
}
