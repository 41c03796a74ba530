package contract

import (
	"strings"

	"github.com/holiman/uint256"
)

// ParseAmount converts a human-readable token amount ("1", "1.5") into raw
// base units scaled by 10^decimals. Negative values, malformed numbers, and
// fractions finer than the token's decimals are rejected.
func ParseAmount(val string, decimals int) (*uint256.Int, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, &ValidationError{Detail: "empty amount"}
	}
	if strings.HasPrefix(val, "-") {
		return nil, &ValidationError{Detail: "amount must be non-negative: " + val}
	}

	whole, frac := val, ""
	if idx := strings.IndexByte(val, '.'); idx >= 0 {
		whole, frac = val[:idx], val[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, &ValidationError{Detail: "amount has more fractional digits than the token's decimals"}
	}
	// Scale by appending zeros: "1.5" with 18 decimals becomes "15" + 17 zeros.
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}

	n, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, &ValidationError{Detail: "invalid amount: " + val}
	}
	return n, nil
}

// FormatAmount renders raw base units as a decimal token amount, trimming
// trailing fractional zeros.
func FormatAmount(raw *uint256.Int, decimals int) string {
	s := raw.Dec()
	if decimals <= 0 {
		return s
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole := s[:len(s)-decimals]
	frac := strings.TrimRight(s[len(s)-decimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
