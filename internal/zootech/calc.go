// Package zootech holds the derived zootechnical computations shared by the
// vaccination and performance-test endpoints. All functions are pure; derived
// values are persisted only where the performance-test screen stores them.
package zootech

import (
	"math"
	"time"
)

// BoosterDue reports whether a scheduled booster dose is due: the booster
// date has been reached. Comparison is at day granularity; a booster
// scheduled for today is already due.
func BoosterDue(reforco, today time.Time) bool {
	r := dateOf(reforco)
	d := dateOf(today)
	return !r.After(d)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyGain returns the average live-weight gain per day over the test
// period, in kg, rounded to 3 decimals. Zero when the period is empty.
func DailyGain(pesoInicial, pesoAtual float64, periodoDias int) float64 {
	if periodoDias <= 0 {
		return 0
	}
	return roundTo((pesoAtual-pesoInicial)/float64(periodoDias), 1000)
}

// FeedConversion returns the feed conversion ratio: kg of feed consumed per
// kg of live weight gained, rounded to 2 decimals. Zero when there was no
// gain, since the ratio is undefined.
func FeedConversion(consumoRacaoKg, pesoInicial, pesoAtual float64) float64 {
	gain := pesoAtual - pesoInicial
	if gain <= 0 {
		return 0
	}
	return roundTo(consumoRacaoKg/gain, 100)
}

func roundTo(x, precision float64) float64 {
	return math.Round(x*precision) / precision
}
