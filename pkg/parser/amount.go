package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const num = `(\d+(?:[.,]\d+)?)`

var (
	currencyRE = regexp.MustCompile(`\b(?:rupiah|idr|rp)\.?`)
	jutaRE     = regexp.MustCompile(num + `\s*(?:jt|juta)\b(?:\s*` + num + `\s*(?:rb|ribu)\b)?`)
	ribuRE     = regexp.MustCompile(num + `\s*(?:rb|ribu)\b`)
	ratusRE    = regexp.MustCompile(num + `\s*(?:rts|ratus)\b`)
	puluhRE    = regexp.MustCompile(num + `\s*(?:plh|puluh)\b`)
	kiloRE     = regexp.MustCompile(num + `k\b`)
	groupedRE  = regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{3})+\b`)
	plainRE    = regexp.MustCompile(`\b\d+\b`)
	anyNumRE   = regexp.MustCompile(`\d+`)
)

var (
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
	hundred  = decimal.NewFromInt(100)
	ten      = decimal.NewFromInt(10)
)

type magnitude struct {
	re  *regexp.Regexp
	mul decimal.Decimal
}

var magnitudes = []magnitude{
	{ribuRE, thousand},
	{ratusRE, hundred},
	{puluhRE, ten},
	{kiloRE, thousand},
}

// ParseAmount extracts an amount in whole currency units from free text.
// Magnitude suffixes are tried in priority order (juta, ribu, ratus, puluh,
// k), then grouped or plain integers, then the first digit run anywhere.
// ok is false when nothing usable is found or the amount is not positive.
func ParseAmount(text string) (int64, bool) {
	t := currencyRE.ReplaceAllString(strings.ToLower(text), " ")

	if m := jutaRE.FindStringSubmatch(t); m != nil {
		v, ok := decimalOf(m[1])
		if !ok {
			return 0, false
		}
		v = v.Mul(million)
		if m[2] != "" {
			if extra, ok := decimalOf(m[2]); ok {
				v = v.Add(extra.Mul(thousand))
			}
		}
		return finish(v)
	}
	for _, mg := range magnitudes {
		if m := mg.re.FindStringSubmatch(t); m != nil {
			v, ok := decimalOf(m[1])
			if !ok {
				return 0, false
			}
			return finish(v.Mul(mg.mul))
		}
	}
	if m := groupedRE.FindString(t); m != "" {
		return literal(m)
	}
	if m := plainRE.FindString(t); m != "" {
		return literal(m)
	}
	if m := anyNumRE.FindString(t); m != "" {
		return literal(m)
	}
	return 0, false
}

// decimalOf reads a number whose single separator, comma or dot, is a decimal point.
func decimalOf(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func literal(s string) (int64, bool) {
	digits := strings.NewReplacer(".", "", ",", "").Replace(s)
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return 0, false
	}
	return finish(d)
}

func finish(d decimal.Decimal) (int64, bool) {
	d = d.Round(0)
	if !d.IsPositive() || !d.LessThan(decimal.NewFromInt(1<<53)) {
		return 0, false
	}
	return d.IntPart(), true
}
