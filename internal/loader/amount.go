package loader

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var amountReplacer = strings.NewReplacer("$", "", ",", "", "'", "", " ", "", "\u00a0", "")

// ParseAmount parses a bank export amount. It accepts a currency sign,
// thousands separators (comma or apostrophe) and accounting negatives
// written in parentheses.
func ParseAmount(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = amountReplacer.Replace(s)
	if s == "" || s == "-" || s == "+" {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}
