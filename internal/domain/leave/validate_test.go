package leave

import (
	"testing"

	"fieldops/internal/domain/directory"
)

func activeType(name, restriction string) LeaveType {
	return LeaveType{ID: "lt-1", Name: name, MaxDays: 10, IsActive: true, GenderRestriction: restriction}
}

func TestCheckEligibilityInactiveType(t *testing.T) {
	leaveType := activeType("Sick Leave", GenderRestrictionNone)
	leaveType.IsActive = false

	err := CheckEligibility(leaveType, directory.Employee{Gender: directory.GenderMale}, 2, LeaveBalance{RemainingDays: 10})
	rej, ok := AsRejection(err)
	if !ok || rej.Kind != KindInactiveLeaveType {
		t.Fatalf("want INACTIVE_LEAVE_TYPE, got %v", err)
	}
}

func TestCheckEligibilityGenderRules(t *testing.T) {
	cases := []struct {
		name        string
		restriction string
		gender      string
		wantKind    string
	}{
		{"unrestricted ignores missing gender", GenderRestrictionNone, "", ""},
		{"restricted requires recorded gender", GenderRestrictionFemale, "", KindGenderUnspecified},
		{"female-only rejects male", GenderRestrictionFemale, directory.GenderMale, KindGenderRestricted},
		{"female-only admits female", GenderRestrictionFemale, directory.GenderFemale, ""},
		{"male-only rejects female", GenderRestrictionMale, directory.GenderFemale, KindGenderRestricted},
		{"male-only admits male", GenderRestrictionMale, directory.GenderMale, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckEligibility(activeType("Special Leave", tc.restriction), directory.Employee{Gender: tc.gender}, 2, LeaveBalance{RemainingDays: 10})
			if tc.wantKind == "" {
				if err != nil {
					t.Fatalf("want no error, got %v", err)
				}
				return
			}
			rej, ok := AsRejection(err)
			if !ok || rej.Kind != tc.wantKind {
				t.Fatalf("want %s, got %v", tc.wantKind, err)
			}
		})
	}
}

func TestCheckEligibilityBalance(t *testing.T) {
	employee := directory.Employee{Gender: directory.GenderMale}

	err := CheckEligibility(activeType("Sick Leave", GenderRestrictionNone), employee, 5, LeaveBalance{RemainingDays: 3})
	rej, ok := AsRejection(err)
	if !ok || rej.Kind != KindInsufficientBalance {
		t.Fatalf("want INSUFFICIENT_BALANCE, got %v", err)
	}
	if rej.Details["remaining"] != 3 || rej.Details["requested"] != 5 {
		t.Fatalf("rejection should carry the operands, got %v", rej.Details)
	}

	if err := CheckEligibility(activeType("Sick Leave", GenderRestrictionNone), employee, 3, LeaveBalance{RemainingDays: 3}); err != nil {
		t.Fatalf("exact balance should be allowed: %v", err)
	}
}

func TestCheckEligibilityAnnualLeaveSkipsBalance(t *testing.T) {
	employee := directory.Employee{Gender: directory.GenderFemale}
	err := CheckEligibility(activeType(AnnualLeaveTypeName, GenderRestrictionNone), employee, 30, LeaveBalance{RemainingDays: 0})
	if err != nil {
		t.Fatalf("annual leave creation must not enforce balance: %v", err)
	}
}
