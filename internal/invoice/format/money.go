package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	RupeeSymbol = "₹"
	// RupeeText is used where the output font lacks the rupee glyph.
	RupeeText = "Rs."
)

// Round rounds half to even at two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Grouped renders d with two decimals and Indian digit grouping
// (3,00,000.00).
func Grouped(d decimal.Decimal) string {
	s := d.StringFixedBank(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(groupIndian(intPart))
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Money prefixes Grouped(d) with symbol.
func Money(d decimal.Decimal, symbol string) string {
	return symbol + Grouped(d)
}

// Quantity prints a quantity without trailing zeros.
func Quantity(d decimal.Decimal) string {
	return d.String()
}

// Percent prints a rate such as 18 or 2.5 followed by %.
func Percent(d decimal.Decimal) string {
	return d.String() + "%"
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	groups := make([]string, 0, len(head)/2+1)
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
