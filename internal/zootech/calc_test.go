package zootech_test

import (
	"testing"
	"time"

	"github.com/infinityvet/infinityvet/internal/zootech"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBoosterDue(t *testing.T) {
	today := day(2026, 3, 15)

	tests := []struct {
		name    string
		reforco time.Time
		want    bool
	}{
		{"past date is due", day(2026, 3, 1), true},
		{"same day is due", day(2026, 3, 15), true},
		{"tomorrow is not due", day(2026, 3, 16), false},
		{"far future is not due", day(2027, 1, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, zootech.BoosterDue(tt.reforco, today))
		})
	}

	t.Run("ignores time of day", func(t *testing.T) {
		// Booster at 23:59 today is still due at 00:01 today.
		reforco := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
		now := time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)
		assert.True(t, zootech.BoosterDue(reforco, now))
	})
}

func TestDailyGain(t *testing.T) {
	t.Run("reference fixture", func(t *testing.T) {
		// 250 -> 280 kg over 60 days
		assert.Equal(t, 0.500, zootech.DailyGain(250, 280, 60))
	})

	t.Run("rounds to 3 decimals", func(t *testing.T) {
		// 10 kg over 3 days = 3.3333...
		assert.Equal(t, 3.333, zootech.DailyGain(100, 110, 3))
	})

	t.Run("zero period", func(t *testing.T) {
		assert.Equal(t, 0.0, zootech.DailyGain(250, 280, 0))
	})

	t.Run("negative gain allowed", func(t *testing.T) {
		assert.Equal(t, -0.5, zootech.DailyGain(280, 250, 60))
	})
}

func TestFeedConversion(t *testing.T) {
	t.Run("reference fixture", func(t *testing.T) {
		// 180 kg feed / (280-250) kg gained
		assert.Equal(t, 6.00, zootech.FeedConversion(180, 250, 280))
	})

	t.Run("rounds to 2 decimals", func(t *testing.T) {
		// 100 / 30 = 3.3333...
		assert.Equal(t, 3.33, zootech.FeedConversion(100, 250, 280))
	})

	t.Run("no gain yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, zootech.FeedConversion(180, 280, 280))
	})

	t.Run("weight loss yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, zootech.FeedConversion(180, 280, 250))
	})
}
