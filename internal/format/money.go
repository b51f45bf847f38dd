// Package format renders amounts and dates for display.
package format

import (
	"errors"
	"math"

	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var errUnsupportedMagnitude = errors.New("unsupported magnitude")

// tierUnits are the base-1000 suffixes indexed by exponent.
var tierUnits = []string{"", "k", "M", "G", "T", "P", "E"}

const (
	minTier = 2
	maxTier = 6

	lakh  = 1e5
	crore = 1e7
)

type scaled struct {
	value  float64
	digits int
	unit   string
}

// Money formats amount as "<sign><symbol> <number><unit>", e.g. "-$ 50.50",
// "₹ 2.50 Lacs" or "$ 2.30M". Grouping and decimal separators follow the
// locale's language.
func Money(amount float64, loc Locale) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	s := scale(math.Abs(amount), loc.LakhCrore)

	p := message.NewPrinter(loc.Tag)
	n := p.Sprint(number.Decimal(s.value, number.Scale(s.digits)))
	return sign + loc.symbol() + " " + n + s.unit
}

func scale(mag float64, lakhCrore bool) scaled {
	if lakhCrore {
		switch {
		case mag < lakh:
			return scaled{value: mag}
		case mag < crore:
			return scaled{value: mag / lakh, digits: 2, unit: " Lacs"}
		default:
			return scaled{value: mag / crore, digits: 2, unit: " Cr"}
		}
	}
	if mag < 1e6 {
		return scaled{value: mag, digits: 2}
	}
	exp, err := tier(mag)
	if err != nil {
		return scaled{value: mag, digits: 2}
	}
	v := mag / math.Pow(1000, float64(exp))
	return scaled{value: math.Round(v*10) / 10, digits: 2, unit: tierUnits[exp]}
}

// tier returns the base-1000 exponent of mag, clamped to the M..E range.
// log(0) is undefined, so zero and non-finite values are rejected.
func tier(mag float64) (int, error) {
	if mag == 0 || math.IsNaN(mag) || math.IsInf(mag, 0) {
		return 0, errUnsupportedMagnitude
	}
	exp := int(math.Floor(math.Log10(mag) / 3))
	// Log10 can land just off an exact power of 1000.
	if math.Pow(1000, float64(exp+1)) <= mag {
		exp++
	} else if math.Pow(1000, float64(exp)) > mag {
		exp--
	}
	if exp < minTier {
		exp = minTier
	}
	if exp > maxTier {
		exp = maxTier
	}
	return exp, nil
}
