package calendar

import (
	"math"
	"sort"
)

// Selection policy bounds for representative-day sampling.
const (
	// MaxSelectedDays caps any explicit request.
	MaxSelectedDays = 8

	// Default counts by range length when the caller does not request a count.
	defaultCountShortRange  = 3 // ranges up to 30 days
	defaultCountMediumRange = 5 // ranges up to 120 days
	defaultCountLongRange   = 7 // longer ranges

	shortRangeDays  = 30
	mediumRangeDays = 120
)

// SelectDaysForImages picks the representative sample of day-of-year values
// used to drive image generation.
//
// When requested is positive it is clamped to [1, MaxSelectedDays];
// otherwise the count is derived from the range length (up to 30 days: 3,
// up to 120 days: 5, else 7). The result is never empty.
//
// A single-image request returns the middle element of the full day
// sequence by index. That is deliberately an index midpoint, not a
// calendar midpoint; the behavior is load-bearing for downstream callers.
//
// Multi-image requests pick indices evenly spaced via
// round(i*(n-1)/(k-1)), de-duplicate, and re-sort with a wrap-aware
// comparator: in a wrap-around range, days at or after the start sort
// before days at or before the end.
//
// If the requested count meets or exceeds the range length, every day in
// the range is returned.
func SelectDaysForImages(r DayRange, requested int) []int {
	sequence := GenerateDaySequence(r)
	n := len(sequence)
	if n == 0 {
		return nil
	}

	count := requested
	if count <= 0 {
		count = defaultCountForLength(n)
	}
	if count > MaxSelectedDays {
		count = MaxSelectedDays
	}
	if count < 1 {
		count = 1
	}

	if count >= n {
		out := make([]int, n)
		copy(out, sequence)
		return out
	}

	if count == 1 {
		return []int{sequence[n/2]}
	}

	seen := make(map[int]bool, count)
	selected := make([]int, 0, count)
	for i := 0; i < count; i++ {
		idx := int(math.Round(float64(i) * float64(n-1) / float64(count-1)))
		day := sequence[idx]
		if !seen[day] {
			seen[day] = true
			selected = append(selected, day)
		}
	}

	SortDaysInRange(selected, r)
	return selected
}

// SortDaysInRange sorts day-of-year values in the forward order of the
// range: plain ascending for normal ranges, and for wrap-around ranges the
// pre-wrap days (>= StartDay) come before the post-wrap days (<= EndDay).
func SortDaysInRange(days []int, r DayRange) {
	sort.Slice(days, func(i, j int) bool {
		return rangeOrdinal(days[i], r) < rangeOrdinal(days[j], r)
	})
}

// rangeOrdinal maps a day to its position along the forward direction of
// the range so wrap-around days compare correctly.
func rangeOrdinal(day int, r DayRange) int {
	if r.IsWrapAround && day <= r.EndDay {
		return day + DaysInYear
	}
	return day
}

func defaultCountForLength(totalDays int) int {
	switch {
	case totalDays <= shortRangeDays:
		return defaultCountShortRange
	case totalDays <= mediumRangeDays:
		return defaultCountMediumRange
	default:
		return defaultCountLongRange
	}
}
