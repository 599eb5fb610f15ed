package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// ToBaseUnits converts a positive decimal amount string to base token units.
// The fractional part must not exceed the asset's decimal count.
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount is required")
	}

	intPart := amount
	fracPart := ""
	if idx := strings.IndexByte(amount, '.'); idx >= 0 {
		intPart = amount[:idx]
		fracPart = amount[idx+1:]
	}

	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("invalid decimal format: %s", amount)
	}

	if !isDigits(intPart) || !isDigits(fracPart) {
		return nil, fmt.Errorf("invalid decimal format: %s", amount)
	}

	if len(fracPart) > decimals {
		return nil, fmt.Errorf("amount %s exceeds %d decimal places", amount, decimals)
	}

	// Scale by appending the fractional digits padded to the decimal count
	digits := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))

	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal format: %s", amount)
	}

	if value.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	return value, nil
}

// FromBaseUnits converts a base unit amount to its decimal representation
func FromBaseUnits(amount *big.Int, decimals int) string {
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	wholePart := new(big.Int).Div(amount, divisor)
	remainder := new(big.Int).Mod(amount, divisor)

	// Format as decimal string
	if remainder.Cmp(big.NewInt(0)) == 0 {
		return wholePart.String()
	} else {
		// Pad remainder with leading zeros to match decimal places
		remainderStr := remainder.String()
		for len(remainderStr) < decimals {
			remainderStr = "0" + remainderStr
		}
		// Remove trailing zeros
		remainderStr = strings.TrimRight(remainderStr, "0")
		if remainderStr == "" {
			return wholePart.String()
		}
		return wholePart.String() + "." + remainderStr
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
