package leave

import "time"

// RequestDays returns the inclusive day count of [start, end].
func RequestDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// ValidateRequestDates enforces start <= end < returnToWork on date-truncated
// values.
func ValidateRequestDates(start, end, returnToWork time.Time) error {
	start = truncateToDay(start)
	end = truncateToDay(end)
	returnToWork = truncateToDay(returnToWork)

	if start.IsZero() || end.IsZero() || returnToWork.IsZero() {
		return InvalidDateRange("start, end and return-to-work dates are required")
	}
	if end.Before(start) {
		return InvalidDateRange("end date must be on or after start date")
	}
	if !returnToWork.After(end) {
		return InvalidDateRange("return-to-work date must be after end date")
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
