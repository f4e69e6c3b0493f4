package utils

import (
	"fmt"
	"math/big"
	"strings"
)

const etherDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(etherDecimals), nil)

// InvalidPriceError reports a price string that does not parse to a positive
// decimal ETH amount.
type InvalidPriceError struct {
	Value  string
	Reason string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price %q: %s", e.Value, e.Reason)
}

// ParsePrice converts a decimal ETH string such as "0.5" into wei. The
// supported range is any positive amount with at most 18 decimal places;
// within that range ParsePrice and FormatPrice round-trip exactly.
func ParsePrice(price string) (*big.Int, error) {
	s := strings.TrimSpace(price)
	if s == "" {
		return nil, &InvalidPriceError{Value: price, Reason: "empty value"}
	}
	if strings.HasPrefix(s, "-") {
		return nil, &InvalidPriceError{Value: price, Reason: "must be positive"}
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, &InvalidPriceError{Value: price, Reason: "not a decimal number"}
	}
	if len(fracPart) > etherDecimals {
		return nil, &InvalidPriceError{Value: price, Reason: fmt.Sprintf("more than %d decimal places", etherDecimals)}
	}

	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, &InvalidPriceError{Value: price, Reason: "not a decimal number"}
	}
	wei := new(big.Int).Mul(whole, weiPerEther)

	if fracPart != "" {
		padded := fracPart + strings.Repeat("0", etherDecimals-len(fracPart))
		frac, ok := new(big.Int).SetString(padded, 10)
		if !ok {
			return nil, &InvalidPriceError{Value: price, Reason: "not a decimal number"}
		}
		wei.Add(wei, frac)
	}

	if wei.Sign() <= 0 {
		return nil, &InvalidPriceError{Value: price, Reason: "must be positive"}
	}
	return wei, nil
}

// FormatPrice converts a wei amount back to a decimal ETH string with
// trailing zeros trimmed, so FormatPrice(ParsePrice("0.5")) == "0.5".
func FormatPrice(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	quo := new(big.Int)
	rem := new(big.Int)
	quo.QuoRem(wei, weiPerEther, rem)
	if rem.Sign() == 0 {
		return quo.String()
	}
	frac := fmt.Sprintf("%0*s", etherDecimals, rem.String())
	frac = strings.TrimRight(frac, "0")
	return quo.String() + "." + frac
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
