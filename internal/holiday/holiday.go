// Package holiday provides pure calendar rules deciding whether a date is
// bookable at all: weekends and Italian public holidays are excluded before
// any slot computation happens.
package holiday

import "time"

// IsWeekend reports whether d falls on Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// fixed national holidays as month/day pairs.
var fixedHolidays = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // Capodanno
	{time.January, 6},   // Epifania
	{time.April, 25},    // Liberazione
	{time.May, 1},       // Festa del Lavoro
	{time.June, 2},      // Festa della Repubblica
	{time.August, 15},   // Ferragosto
	{time.November, 1},  // Ognissanti
	{time.December, 8},  // Immacolata
	{time.December, 25}, // Natale
	{time.December, 26}, // Santo Stefano
}

// IsHoliday reports whether d is an Italian public holiday, including
// Easter Monday.
func IsHoliday(d time.Time) bool {
	for _, h := range fixedHolidays {
		if d.Month() == h.month && d.Day() == h.day {
			return true
		}
	}
	em := easterMonday(d.Year())
	return d.Month() == em.Month() && d.Day() == em.Day()
}

// IsExcluded reports whether d is ineligible for slot computation
// (weekend or holiday).
func IsExcluded(d time.Time) bool {
	return IsWeekend(d) || IsHoliday(d)
}

// easter computes Easter Sunday for the given year using the anonymous
// Gregorian (Meeus/Jones/Butcher) algorithm.
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func easterMonday(year int) time.Time {
	return easter(year).AddDate(0, 0, 1)
}
