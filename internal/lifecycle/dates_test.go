// internal/lifecycle/dates_test.go
package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"iso date", "2024-06-01", true},
		{"empty", "", false},
		{"legacy marker", "N/A", false},
		{"garbage", "01/06/2024", false},
		{"truncated", "2024-06", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseDate(tt.input)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestAddYears(t *testing.T) {
	tests := []struct {
		name  string
		start string
		years int
		want  string
	}{
		{"plain year", "2024-06-01", 1, "2025-06-01"},
		{"multiple years", "2023-01-10", 2, "2025-01-10"},
		{"leap day clamps to feb 28", "2024-02-29", 1, "2025-02-28"},
		{"leap day to leap year keeps feb 29", "2024-02-29", 4, "2028-02-29"},
		{"feb 28 unaffected", "2024-02-28", 1, "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, ok := ParseDate(tt.start)
			assert.True(t, ok)
			assert.Equal(t, tt.want, AddYears(start, tt.years).Format(DateLayout))
		})
	}
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, isLeapYear(2024))
	assert.False(t, isLeapYear(2025))
	assert.False(t, isLeapYear(1900))
	assert.True(t, isLeapYear(2000))
}

func TestTruncateToDate(t *testing.T) {
	at := time.Date(2025, time.January, 10, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), truncateToDate(at))
}
