package tokens

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatAmount renders an atomic amount with decimals, keeping at least two
// fractional digits: FormatAmount("10000", 6, "USDC") is "0.01 USDC".
func FormatAmount(rawAmount string, decimals int, symbol string) string {
	if rawAmount == "" {
		return "0 " + symbol
	}

	amount, ok := new(big.Int).SetString(rawAmount, 10)
	if !ok {
		return rawAmount + " " + symbol + " (invalid)"
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart, remainder := new(big.Int).QuoRem(amount, divisor, new(big.Int))

	frac := strings.TrimRight(fmt.Sprintf("%0*d", decimals, remainder), "0")
	if len(frac) < 2 {
		frac += strings.Repeat("0", 2-len(frac))
	}

	return fmt.Sprintf("%s.%s %s", intPart, frac, symbol)
}

// FormatAmountWithToken formats amount for a known token, or as raw units.
func FormatAmountWithToken(rawAmount, network, asset string) (formatted string, known bool) {
	info := GetTokenInfo(network, asset)
	if info == nil {
		return rawAmount + " raw units", false
	}
	return FormatAmount(rawAmount, info.Decimals, info.Symbol), true
}

// FormatShortAddress shortens long addresses to "0x64c2...4e29".
func FormatShortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
