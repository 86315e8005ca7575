package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		a        time.Time
		b        time.Time
		expected int
	}{
		{
			name:     "same day is zero",
			a:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			b:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "time of day is discarded",
			a:        time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC),
			b:        time.Date(2024, 1, 16, 0, 1, 0, 0, time.UTC),
			expected: 1,
		},
		{
			name:     "earlier reference is negative",
			a:        time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			b:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			expected: -5,
		},
		{
			name:     "across month boundary",
			a:        time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			b:        time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
			expected: 3,
		},
		{
			name:     "across leap day",
			a:        time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			b:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestAddDaysRoundTrip(t *testing.T) {
	d := time.Date(2024, 1, 1, 13, 45, 0, 0, time.UTC)

	for _, n := range []int{0, 1, 3, 30, 365, 10000} {
		shifted := AddDays(d, n)
		assert.Equal(t, n, DaysBetween(d, shifted), "n=%d", n)
	}
}
