package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a monetary string as extracted by the model into a
// decimal. It tolerates currency symbols, thousands separators, surrounding
// whitespace and accounting-style parentheses for negatives. Unparsable
// input yields zero: partial extraction is expected and must never fail the
// pipeline.
func ParseAmount(s string) decimal.Decimal {
	d, ok := tryParse(s)
	if !ok {
		return decimal.Zero
	}
	return d
}

// ParseOptional parses like ParseAmount but distinguishes "absent" from
// "zero": empty or unparsable input yields nil.
func ParseOptional(s string) *decimal.Decimal {
	d, ok := tryParse(s)
	if !ok {
		return nil
	}
	return &d
}

func tryParse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			b.WriteRune(r)
		case r == ',', r == '$', r == ' ':
			// separators and currency symbols
		default:
			// Any other rune means this is not a number ("N/A", "unknown").
			return decimal.Zero, false
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// Canonical renders a decimal in its canonical string form, the form used
// inside composite transaction keys and the annotation store.
func Canonical(d decimal.Decimal) string {
	return d.String()
}
