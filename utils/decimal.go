package utils

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyMarkers = []string{"R$", "US$", "BRL", "USD", "$", "€"}

// ParseMoney accepts user formatted amounts such as "R$ 1.234,50", "1,234.50"
// or "-20". The last separator followed by one or two digits is the decimal mark.
func ParseMoney(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	for _, m := range currencyMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}

	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero, errors.New("invalid value")
	}

	if i := strings.LastIndexAny(clean, ".,"); i >= 0 {
		frac := clean[i+1:]
		whole := strings.NewReplacer(".", "", ",", "").Replace(clean[:i])
		if len(frac) >= 1 && len(frac) <= 2 {
			clean = whole + "." + frac
		} else {
			clean = whole + frac
		}
	}
	if neg {
		clean = "-" + clean
	}
	return decimal.NewFromString(clean)
}
