// Package calendar implements the day-range scheduling math that drives the
// seasonal visualization pipeline: computing (possibly year-wrapping) day
// ranges, enumerating their day-of-year sequences, selecting representative
// days for image generation, and converting days to calendar dates.
//
// All functions in this package are pure: the same inputs always produce
// the same outputs, and nothing here touches the clock or the filesystem.
package calendar

import (
	"fmt"
)

// DaysInYear is the day-of-year domain size. Leap days are handled only in
// month-length tables when converting a day number to a date.
const DaysInYear = 365

// DayRange describes an inclusive span of day-of-year values. When the end
// precedes the start numerically the range wraps through the year boundary
// (day 365 to day 1).
type DayRange struct {
	StartDay     int
	EndDay       int
	TotalDays    int
	IsWrapAround bool
}

// InvalidRangeError reports day bounds outside [1, 365]. It is a caller
// error and surfaces immediately rather than being retried or absorbed.
type InvalidRangeError struct {
	StartDay int
	EndDay   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("calendar: day range [%d, %d] outside valid bounds [1, %d]",
		e.StartDay, e.EndDay, DaysInYear)
}

// CalculateDayRange validates the bounds and computes the derived fields.
//
// Wrap-around is detected solely by endDay < startDay. TotalDays is the
// inclusive day count along the forward direction from startDay, wrapping
// through day 365 to day 1 when the range wraps.
func CalculateDayRange(startDay, endDay int) (DayRange, error) {
	if startDay < 1 || startDay > DaysInYear || endDay < 1 || endDay > DaysInYear {
		return DayRange{}, &InvalidRangeError{StartDay: startDay, EndDay: endDay}
	}

	wrap := endDay < startDay
	total := endDay - startDay + 1
	if wrap {
		total = (DaysInYear - startDay + 1) + endDay
	}

	return DayRange{
		StartDay:     startDay,
		EndDay:       endDay,
		TotalDays:    total,
		IsWrapAround: wrap,
	}, nil
}

// GenerateDaySequence returns the ordered day-of-year values covered by the
// range. For wrap-around ranges it yields startDay..365 followed by
// 1..endDay. The result length always equals r.TotalDays.
func GenerateDaySequence(r DayRange) []int {
	days := make([]int, 0, r.TotalDays)

	if !r.IsWrapAround {
		for d := r.StartDay; d <= r.EndDay; d++ {
			days = append(days, d)
		}
		return days
	}

	for d := r.StartDay; d <= DaysInYear; d++ {
		days = append(days, d)
	}
	for d := 1; d <= r.EndDay; d++ {
		days = append(days, d)
	}
	return days
}

// Contains reports whether the given day-of-year falls inside the range,
// honoring wrap-around.
func (r DayRange) Contains(dayOfYear int) bool {
	if !r.IsWrapAround {
		return dayOfYear >= r.StartDay && dayOfYear <= r.EndDay
	}
	return dayOfYear >= r.StartDay || dayOfYear <= r.EndDay
}
