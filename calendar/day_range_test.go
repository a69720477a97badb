package calendar

import (
	"reflect"
	"testing"
)

func TestCalculateDayRange(t *testing.T) {
	tests := []struct {
		name      string
		startDay  int
		endDay    int
		wantTotal int
		wantWrap  bool
		wantErr   bool
	}{
		{
			name:      "simple forward range",
			startDay:  100,
			endDay:    120,
			wantTotal: 21,
			wantWrap:  false,
		},
		{
			name:      "single day range",
			startDay:  50,
			endDay:    50,
			wantTotal: 1,
			wantWrap:  false,
		},
		{
			name:      "full year",
			startDay:  1,
			endDay:    365,
			wantTotal: 365,
			wantWrap:  false,
		},
		{
			name:      "wrap-around november to february",
			startDay:  320,
			endDay:    45,
			wantTotal: (365 - 320 + 1) + 45,
			wantWrap:  true,
		},
		{
			name:      "wrap-around scenario from late december",
			startDay:  350,
			endDay:    10,
			wantTotal: 26,
			wantWrap:  true,
		},
		{
			name:     "start below lower bound",
			startDay: 0,
			endDay:   10,
			wantErr:  true,
		},
		{
			name:     "end above upper bound",
			startDay: 10,
			endDay:   366,
			wantErr:  true,
		},
		{
			name:     "negative start",
			startDay: -5,
			endDay:   10,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := CalculateDayRange(tt.startDay, tt.endDay)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CalculateDayRange(%d, %d) expected error, got %+v", tt.startDay, tt.endDay, r)
				}
				if _, ok := err.(*InvalidRangeError); !ok {
					t.Errorf("expected *InvalidRangeError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateDayRange(%d, %d) unexpected error: %v", tt.startDay, tt.endDay, err)
			}
			if r.TotalDays != tt.wantTotal {
				t.Errorf("TotalDays = %d, want %d", r.TotalDays, tt.wantTotal)
			}
			if r.IsWrapAround != tt.wantWrap {
				t.Errorf("IsWrapAround = %v, want %v", r.IsWrapAround, tt.wantWrap)
			}
		})
	}
}

func TestTotalDaysMatchesSequenceLength(t *testing.T) {
	// Exercise a spread of valid bounds including wrap-around cases.
	starts := []int{1, 2, 59, 100, 182, 320, 350, 364, 365}
	ends := []int{1, 10, 60, 100, 200, 320, 350, 365}

	for _, start := range starts {
		for _, end := range ends {
			r, err := CalculateDayRange(start, end)
			if err != nil {
				t.Fatalf("CalculateDayRange(%d, %d) error: %v", start, end, err)
			}
			seq := GenerateDaySequence(r)
			if len(seq) != r.TotalDays {
				t.Errorf("range [%d, %d]: sequence length %d != TotalDays %d",
					start, end, len(seq), r.TotalDays)
			}
			if r.IsWrapAround != (end < start) {
				t.Errorf("range [%d, %d]: IsWrapAround = %v", start, end, r.IsWrapAround)
			}
		}
	}
}

func TestGenerateDaySequenceWrap(t *testing.T) {
	r, err := CalculateDayRange(363, 3)
	if err != nil {
		t.Fatal(err)
	}

	got := GenerateDaySequence(r)
	want := []int{363, 364, 365, 1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateDaySequence = %v, want %v", got, want)
	}
}

func TestGenerateDaySequenceRestartable(t *testing.T) {
	r, err := CalculateDayRange(350, 10)
	if err != nil {
		t.Fatal(err)
	}

	first := GenerateDaySequence(r)
	second := GenerateDaySequence(r)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("sequence not idempotent: %v vs %v", first, second)
	}
}

func TestDayRangeContains(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		end      int
		day      int
		expected bool
	}{
		{"inside forward range", 100, 200, 150, true},
		{"outside forward range", 100, 200, 250, false},
		{"wrap range pre-boundary", 350, 10, 360, true},
		{"wrap range post-boundary", 350, 10, 5, true},
		{"wrap range outside", 350, 10, 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := CalculateDayRange(tt.start, tt.end)
			if err != nil {
				t.Fatal(err)
			}
			if got := r.Contains(tt.day); got != tt.expected {
				t.Errorf("Contains(%d) = %v, want %v", tt.day, got, tt.expected)
			}
		})
	}
}
