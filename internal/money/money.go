// Package money parses and formats the amounts typed into the invoice form.
//
// Parsing is fail-open: the form recomputes totals on every keystroke, so a
// half-typed or garbage value counts as zero instead of producing an error.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// leadingNumber matches the numeric prefix of a field, e.g. "12.5" in "12.5kg".
// Exponents are not part of a number here, so "1e9" reads as 1.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)

// maxNumberLen bounds the digits accepted from a field. Longer input is
// treated as garbage.
const maxNumberLen = 32

var hundred = decimal.NewFromInt(100)

// Parse converts raw field text to a decimal. Empty or malformed input is 0.
// A comma is accepted as decimal separator and grouping spaces are ignored.
func Parse(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	prefix := strings.TrimPrefix(leadingNumber.FindString(s), "+")
	if prefix == "" || len(prefix) > maxNumberLen {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Percent returns p/100.
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

// Fixed renders d with exactly two fraction digits ("24.00").
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Format renders d as a euro amount for display in the given language:
// "1 234,50 €" in French, "€1,234.50" in English.
func Format(lang string, d decimal.Decimal) string {
	tag := language.French
	if lang == "en" {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	n := number.Decimal(d.Round(2).InexactFloat64(),
		number.MinFractionDigits(2), number.MaxFractionDigits(2))
	if tag == language.English {
		return p.Sprintf("€%v", n)
	}
	return p.Sprintf("%v €", n)
}
