package recipe

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var quantity = regexp.MustCompile(`\d+(?:\.\d+)?(?:/\d+)?`)

// ScaleMeasure multiplies every number or fraction found in measure by
// multiplier. Common fractions are rendered as fractions again.
func ScaleMeasure(measure string, multiplier float64) string {
	if multiplier == 1 || strings.TrimSpace(measure) == "" {
		return measure
	}
	return quantity.ReplaceAllStringFunc(measure, func(match string) string {
		if num, den, ok := strings.Cut(match, "/"); ok {
			n, err1 := strconv.ParseFloat(num, 64)
			d, err2 := strconv.ParseFloat(den, 64)
			if err1 != nil || err2 != nil || d == 0 {
				return match
			}
			return formatFraction(n / d * multiplier)
		}
		v, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return match
		}
		return formatNumber(v * multiplier)
	})
}

func formatFraction(v float64) string {
	switch v {
	case 0.5:
		return "1/2"
	case 0.25:
		return "1/4"
	case 0.75:
		return "3/4"
	case 1.5:
		return "1 1/2"
	}
	return formatNumber(v)
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
