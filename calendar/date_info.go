package calendar

import (
	"fmt"
)

// Season classifies a month into the four meteorological seasons.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// SelectedDay is the derived calendar information for one day-of-year.
// It is computed on demand and never persisted.
type SelectedDay struct {
	DayOfYear  int
	Date       string // ISO date, e.g. "2026-06-15"
	Month      int    // 1..12
	DayOfMonth int
	Season     Season
}

// monthLengths holds the non-leap month-length table. February is adjusted
// to 29 for leap years during the walk.
var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear reports whether the given year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// SeasonForMonth classifies a month: Mar-May spring, Jun-Aug summer,
// Sep-Nov autumn, everything else winter.
func SeasonForMonth(month int) Season {
	switch {
	case month >= 3 && month <= 5:
		return SeasonSpring
	case month >= 6 && month <= 8:
		return SeasonSummer
	case month >= 9 && month <= 11:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// DayToDateInfo converts a day-of-year into month, day-of-month, ISO date
// string, and season by walking the month-length table. The table is
// leap-year aware for day counting only; dayOfYear stays in [1, 365].
func DayToDateInfo(dayOfYear, year int) (SelectedDay, error) {
	if dayOfYear < 1 || dayOfYear > DaysInYear {
		return SelectedDay{}, &InvalidRangeError{StartDay: dayOfYear, EndDay: dayOfYear}
	}

	remaining := dayOfYear
	month := 1
	for i, length := range monthLengths {
		if i == 1 && IsLeapYear(year) {
			length = 29
		}
		if remaining <= length {
			month = i + 1
			break
		}
		remaining -= length
	}

	return SelectedDay{
		DayOfYear:  dayOfYear,
		Date:       fmt.Sprintf("%04d-%02d-%02d", year, month, remaining),
		Month:      month,
		DayOfMonth: remaining,
		Season:     SeasonForMonth(month),
	}, nil
}

// MonthOfDay returns the calendar month for a day-of-year using the
// non-leap month-length table. Bloom bounds expressed in months are
// resolved through this.
func MonthOfDay(dayOfYear int) int {
	if dayOfYear < 1 {
		return 1
	}
	if dayOfYear > DaysInYear {
		return 12
	}

	remaining := dayOfYear
	for i, length := range monthLengths {
		if remaining <= length {
			return i + 1
		}
		remaining -= length
	}
	return 12
}
