package bloom

import (
	"garden_backend/calendar"
)

// InWrapRange reports whether value lies inside the inclusive [start, end]
// interval, treating end < start as a range that wraps through the domain
// boundary. The same test serves both day-of-year and month bounds.
func InWrapRange(value, start, end int) bool {
	if start <= end {
		return value >= start && value <= end
	}
	return value >= start || value <= end
}

// IsBloomingOnDay reports whether the plant is in bloom on the given
// day-of-year. Day-of-year bounds are preferred over month bounds; a plant
// with neither is never blooming.
func IsBloomingOnDay(p Plant, dayOfYear int) bool {
	if p.HasDayBounds() {
		return InWrapRange(dayOfYear, *p.BloomStartDay, *p.BloomEndDay)
	}
	if p.HasMonthBounds() {
		month := calendar.MonthOfDay(dayOfYear)
		return InWrapRange(month, *p.BloomStartMonth, *p.BloomEndMonth)
	}
	return false
}

// PlantsBloomingOnDay returns the display names of every plant in bloom on
// the given day-of-year, in input order. Plants lacking bloom metadata are
// skipped; that is expected for foliage-only records, not an error.
func PlantsBloomingOnDay(plants []Plant, dayOfYear int) []string {
	var names []string
	for _, p := range plants {
		if !p.HasBloomData() {
			continue
		}
		if IsBloomingOnDay(p, dayOfYear) {
			names = append(names, p.DisplayName())
		}
	}
	return names
}
