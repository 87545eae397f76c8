package leave

import "time"

// DefaultAnnualLeaveDays applies when the rule table is empty entirely.
const DefaultAnnualLeaveDays = 14

// EntitlementByServiceYear returns the annual leave days earned after the
// given number of completed service anniversaries. A service year of zero
// means the first anniversary has not been reached yet and always yields
// zero days; that is policy, not a default.
//
// When no rule matches the exact service year, the rule with the largest
// configured year wins, so tenure beyond the table keeps the highest
// configured entitlement. Gaps inside the table hit the same fallback; see
// DESIGN.md before changing that.
func EntitlementByServiceYear(serviceYear int, rules []EntitlementRule) int {
	if serviceYear <= 0 {
		return 0
	}

	maxRule := EntitlementRule{YearOfService: -1}
	for _, rule := range rules {
		if rule.YearOfService == serviceYear {
			return rule.DaysEntitled
		}
		if rule.YearOfService > maxRule.YearOfService {
			maxRule = rule
		}
	}

	if maxRule.YearOfService >= 0 {
		return maxRule.DaysEntitled
	}
	return DefaultAnnualLeaveDays
}

// EntitlementByHireDate is the legacy calculation used when ledger rows are
// keyed by calendar year: yearsOfService = targetYear - hireYear (clamped to
// zero), then yearIndex = yearsOfService + 1 goes through the same lookup as
// EntitlementByServiceYear. Existing balances were created under either
// scheme, so both paths stay independently callable.
func EntitlementByHireDate(hireDate time.Time, targetYear int, rules []EntitlementRule) int {
	if hireDate.IsZero() {
		return DefaultAnnualLeaveDays
	}

	yearsOfService := targetYear - hireDate.Year()
	if yearsOfService < 0 {
		yearsOfService = 0
	}
	yearIndex := yearsOfService + 1

	maxRule := EntitlementRule{YearOfService: -1}
	for _, rule := range rules {
		if rule.YearOfService == yearIndex {
			return rule.DaysEntitled
		}
		if rule.YearOfService > maxRule.YearOfService {
			maxRule = rule
		}
	}

	if maxRule.YearOfService >= 0 {
		return maxRule.DaysEntitled
	}
	return DefaultAnnualLeaveDays
}

// ServiceYearsCompleted counts employment anniversaries reached by asOf.
func ServiceYearsCompleted(hireDate, asOf time.Time) int {
	if hireDate.IsZero() || asOf.Before(hireDate) {
		return 0
	}
	years := asOf.Year() - hireDate.Year()
	anniversary := hireDate.AddDate(years, 0, 0)
	if anniversary.After(asOf) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
