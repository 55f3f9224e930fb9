package format

import (
	"strings"

	"github.com/divan/num2words"
	"github.com/shopspring/decimal"
)

var indianScales = []struct {
	size int64
	name string
}{
	{10000000, "crore"},
	{100000, "lakh"},
	{1000, "thousand"},
}

// AmountInWords spells a rupee amount the way Indian invoices do, e.g.
// "Rupees Seven Lakh Eight Thousand Only".
func AmountInWords(d decimal.Decimal) string {
	rounded := Round(d.Abs())
	rupees := rounded.IntPart()
	paise := rounded.Sub(decimal.NewFromInt(rupees)).Shift(2).IntPart()

	var b strings.Builder
	b.WriteString("Rupees ")
	b.WriteString(titleCase(indianWords(rupees)))
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(titleCase(indianWords(paise)))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

func indianWords(n int64) string {
	if n == 0 {
		return "zero"
	}

	parts := []string{}
	for _, scale := range indianScales {
		if n >= scale.size {
			parts = append(parts, indianWords(n/scale.size), scale.name)
			n %= scale.size
		}
	}
	if n > 0 {
		parts = append(parts, num2words.Convert(int(n)))
	}
	return strings.Join(parts, " ")
}

// titleCase capitalises each word and each hyphenated segment.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		segments := strings.Split(w, "-")
		for j, seg := range segments {
			if seg != "" {
				segments[j] = strings.ToUpper(seg[:1]) + seg[1:]
			}
		}
		words[i] = strings.Join(segments, "-")
	}
	return strings.Join(words, " ")
}
