package leave

import (
	"testing"
	"time"
)

var testRules = []EntitlementRule{
	{YearOfService: 1, DaysEntitled: 14},
	{YearOfService: 5, DaysEntitled: 20},
	{YearOfService: 15, DaysEntitled: 26},
}

func TestEntitlementByServiceYear(t *testing.T) {
	cases := []struct {
		name        string
		serviceYear int
		rules       []EntitlementRule
		want        int
	}{
		{"exact match first year", 1, testRules, 14},
		{"exact match mid table", 5, testRules, 20},
		{"exact match top of table", 15, testRules, 26},
		{"gap falls back to largest rule", 3, testRules, 26},
		{"beyond table keeps largest rule", 40, testRules, 26},
		{"zero service years earns nothing", 0, testRules, 0},
		{"negative service years earns nothing", -2, testRules, 0},
		{"empty table uses default", 4, nil, DefaultAnnualLeaveDays},
		{"zero beats empty-table default", 0, nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EntitlementByServiceYear(tc.serviceYear, tc.rules)
			if got != tc.want {
				t.Fatalf("EntitlementByServiceYear(%d) = %d, want %d", tc.serviceYear, got, tc.want)
			}
		})
	}
}

func TestEntitlementByHireDate(t *testing.T) {
	hire := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		hireDate   time.Time
		targetYear int
		want       int
	}{
		{"first calendar year is index one", hire, 2020, 14},
		{"fifth year index matches rule", hire, 2024, 20},
		{"target before hire clamps to index one", hire, 2018, 14},
		{"far future keeps largest rule", hire, 2050, 26},
		{"missing hire date uses default", time.Time{}, 2024, DefaultAnnualLeaveDays},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EntitlementByHireDate(tc.hireDate, tc.targetYear, testRules)
			if got != tc.want {
				t.Fatalf("EntitlementByHireDate(%v, %d) = %d, want %d", tc.hireDate, tc.targetYear, got, tc.want)
			}
		})
	}
}

func TestEntitlementNeverDecreasesWithTenure(t *testing.T) {
	// Monotonicity holds when every service year has a rule; gapped tables
	// fall back to the largest rule (see below) and can dip afterwards.
	gapFree := []EntitlementRule{
		{YearOfService: 1, DaysEntitled: 14},
		{YearOfService: 2, DaysEntitled: 14},
		{YearOfService: 3, DaysEntitled: 16},
		{YearOfService: 4, DaysEntitled: 18},
		{YearOfService: 5, DaysEntitled: 20},
	}
	prev := 0
	for year := 1; year <= 30; year++ {
		got := EntitlementByServiceYear(year, gapFree)
		if got < prev {
			t.Fatalf("entitlement dropped from %d to %d at service year %d", prev, got, year)
		}
		prev = got
	}
}

func TestEntitlementGapYearOutEarnsNextRule(t *testing.T) {
	// A gap year takes the largest configured rule, so with {1,5,15} year 4
	// earns the year-15 amount while year 5 earns its own smaller one.
	if got := EntitlementByServiceYear(4, testRules); got != 26 {
		t.Fatalf("gap year 4 = %d, want 26", got)
	}
	if got := EntitlementByServiceYear(5, testRules); got != 20 {
		t.Fatalf("exact year 5 = %d, want 20", got)
	}
}

func TestServiceYearsCompleted(t *testing.T) {
	hire := time.Date(2020, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		asOf time.Time
		want int
	}{
		{"before hire", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{"day before first anniversary", time.Date(2021, 3, 9, 0, 0, 0, 0, time.UTC), 0},
		{"on first anniversary", time.Date(2021, 3, 10, 0, 0, 0, 0, time.UTC), 1},
		{"mid fourth year", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ServiceYearsCompleted(hire, tc.asOf)
			if got != tc.want {
				t.Fatalf("ServiceYearsCompleted(asOf=%v) = %d, want %d", tc.asOf, got, tc.want)
			}
		})
	}

	if got := ServiceYearsCompleted(time.Time{}, time.Now()); got != 0 {
		t.Fatalf("zero hire date should yield 0 service years, got %d", got)
	}
}
