package importer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{time.DateOnly, "02-01-2006", "02/01/2006", "02.01.2006"}

// parseAmount accepts both "1.234,56" and "1,234.56". Whichever separator
// comes last is the decimal point; a lone comma is always decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}

		return r
	}, s)

	dot := strings.LastIndexByte(clean, '.')
	comma := strings.LastIndexByte(clean, ',')

	if comma > dot {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
