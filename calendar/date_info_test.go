package calendar

import (
	"testing"
)

func TestDayToDateInfoKnownDates(t *testing.T) {
	tests := []struct {
		name      string
		dayOfYear int
		year      int
		wantDate  string
		wantMonth int
	}{
		{"first day of year", 1, 2026, "2026-01-01", 1},
		{"last day of january", 31, 2026, "2026-01-31", 1},
		{"first day of february", 32, 2026, "2026-02-01", 2},
		{"day 60 in non-leap year is march first", 60, 2026, "2026-03-01", 3},
		{"day 60 in leap year is february 29", 60, 2024, "2024-02-29", 2},
		{"midsummer", 172, 2026, "2026-06-21", 6},
		{"day 365 non-leap is december 31", 365, 2026, "2026-12-31", 12},
		{"day 365 leap year is december 30", 365, 2024, "2024-12-30", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DayToDateInfo(tt.dayOfYear, tt.year)
			if err != nil {
				t.Fatalf("DayToDateInfo(%d, %d): %v", tt.dayOfYear, tt.year, err)
			}
			if got.Date != tt.wantDate {
				t.Errorf("Date = %q, want %q", got.Date, tt.wantDate)
			}
			if got.Month != tt.wantMonth {
				t.Errorf("Month = %d, want %d", got.Month, tt.wantMonth)
			}
			if got.DayOfYear != tt.dayOfYear {
				t.Errorf("DayOfYear = %d, want %d", got.DayOfYear, tt.dayOfYear)
			}
		})
	}
}

func TestDayToDateInfoRejectsOutOfBounds(t *testing.T) {
	for _, day := range []int{0, -1, 366, 1000} {
		if _, err := DayToDateInfo(day, 2026); err == nil {
			t.Errorf("DayToDateInfo(%d) expected error", day)
		}
	}
}

func TestSeasonForMonth(t *testing.T) {
	tests := []struct {
		month int
		want  Season
	}{
		{1, SeasonWinter}, {2, SeasonWinter},
		{3, SeasonSpring}, {4, SeasonSpring}, {5, SeasonSpring},
		{6, SeasonSummer}, {7, SeasonSummer}, {8, SeasonSummer},
		{9, SeasonAutumn}, {10, SeasonAutumn}, {11, SeasonAutumn},
		{12, SeasonWinter},
	}

	for _, tt := range tests {
		if got := SeasonForMonth(tt.month); got != tt.want {
			t.Errorf("SeasonForMonth(%d) = %q, want %q", tt.month, got, tt.want)
		}
	}
}

func TestSeasonConsistentForAllDays(t *testing.T) {
	// Round-trip: the season of every day matches the classification of its
	// derived month, for the full non-leap year.
	for day := 1; day <= DaysInYear; day++ {
		info, err := DayToDateInfo(day, 2026)
		if err != nil {
			t.Fatalf("DayToDateInfo(%d): %v", day, err)
		}
		if info.Season != SeasonForMonth(info.Month) {
			t.Errorf("day %d: season %q inconsistent with month %d", day, info.Season, info.Month)
		}
		if info.Month < 1 || info.Month > 12 {
			t.Errorf("day %d: month %d out of bounds", day, info.Month)
		}
		if got := MonthOfDay(day); got != info.Month {
			t.Errorf("day %d: MonthOfDay = %d, DayToDateInfo month = %d", day, got, info.Month)
		}
	}
}
