package invoice

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a monetary cell, accepting a comma decimal separator ("10,50").
// The boolean is false when the value is blank or unparsable; the amount is then zero.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if value == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// FormatCurrency renders an amount as "R$ 1234.50"
func FormatCurrency(amount decimal.Decimal) string {
	return "R$ " + amount.StringFixed(2)
}

// ParseQuantity renders a quantity cell as an integer string ("2.0" -> "2").
// The boolean is false when the value is not a number; the trimmed raw text is returned.
func ParseQuantity(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return value, false
	}
	return strconv.FormatInt(int64(f), 10), true
}
