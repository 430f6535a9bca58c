// Package calc derives statistics, cost ratings and maintenance projections
// from a rider's fuel and service history.
//
// Every function in this package is pure: it reads the slices it is given,
// never mutates them, and returns a freshly computed value. "Today" is always
// passed in by the caller so results are reproducible.
package calc

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

const day = 24 * time.Hour

// DaysBetween returns the number of whole days from earlier to later,
// truncated toward zero. It is negative when later is before earlier.
func DaysBetween(later, earlier time.Time) int {
	return int(later.Sub(earlier) / day)
}

// AddDays shifts t by a possibly fractional number of days.
func AddDays(t time.Time, days float64) time.Time {
	return t.Add(time.Duration(days * float64(day)))
}

func round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	v, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return v
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

// groupNumber formats n with thousands separators, e.g. 12,500.
func groupNumber(n float64) string {
	if n == math.Trunc(n) {
		return printer.Sprintf("%d", int64(n))
	}
	return printer.Sprintf("%.1f", n)
}
