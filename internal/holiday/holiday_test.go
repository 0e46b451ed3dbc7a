package holiday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(date(2026, time.March, 7)))  // Saturday
	assert.True(t, IsWeekend(date(2026, time.March, 8)))  // Sunday
	assert.False(t, IsWeekend(date(2026, time.March, 9))) // Monday
}

func TestFixedHolidays(t *testing.T) {
	for _, d := range []time.Time{
		date(2026, time.January, 1),
		date(2026, time.January, 6),
		date(2026, time.April, 25),
		date(2026, time.May, 1),
		date(2026, time.June, 2),
		date(2026, time.August, 15),
		date(2026, time.November, 1),
		date(2026, time.December, 8),
		date(2026, time.December, 25),
		date(2026, time.December, 26),
	} {
		assert.True(t, IsHoliday(d), "expected %s to be a holiday", d.Format("2006-01-02"))
	}
	assert.False(t, IsHoliday(date(2026, time.March, 10)))
}

func TestEasterMonday(t *testing.T) {
	// Easter Sunday 2026 is April 5, 2025 is April 20, 2024 was March 31.
	assert.True(t, IsHoliday(date(2026, time.April, 6)))
	assert.True(t, IsHoliday(date(2025, time.April, 21)))
	assert.True(t, IsHoliday(date(2024, time.April, 1)))
	assert.False(t, IsHoliday(date(2026, time.April, 7)))
}

func TestIsExcluded(t *testing.T) {
	assert.True(t, IsExcluded(date(2026, time.March, 7)))   // weekend
	assert.True(t, IsExcluded(date(2026, time.June, 2)))    // holiday
	assert.False(t, IsExcluded(date(2026, time.March, 10))) // plain Tuesday
}
