package leave

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRequestDays(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single day", day(2026, 3, 2), day(2026, 3, 2), 1},
		{"full week", day(2026, 3, 2), day(2026, 3, 8), 7},
		{"across month boundary", day(2026, 1, 30), day(2026, 2, 2), 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RequestDays(tc.start, tc.end); got != tc.want {
				t.Fatalf("RequestDays = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestValidateRequestDates(t *testing.T) {
	start := day(2026, 3, 2)
	end := day(2026, 3, 6)
	ret := day(2026, 3, 9)

	if err := ValidateRequestDates(start, end, ret); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}

	cases := []struct {
		name            string
		start, end, ret time.Time
	}{
		{"end before start", end, start, ret},
		{"return equals end", start, end, end},
		{"return before end", start, end, day(2026, 3, 5)},
		{"missing start", time.Time{}, end, ret},
		{"missing return", start, end, time.Time{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRequestDates(tc.start, tc.end, tc.ret)
			rej, ok := AsRejection(err)
			if !ok || rej.Kind != KindInvalidDateRange {
				t.Fatalf("want INVALID_DATE_RANGE rejection, got %v", err)
			}
		})
	}
}

func TestValidateRequestDatesIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)
	ret := time.Date(2026, 3, 3, 0, 30, 0, 0, time.UTC)
	if err := ValidateRequestDates(start, end, ret); err != nil {
		t.Fatalf("time-of-day should not affect validation: %v", err)
	}
}
