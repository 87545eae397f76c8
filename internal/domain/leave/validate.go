package leave

import "fieldops/internal/domain/directory"

// CheckEligibility validates a candidate request against the leave type's
// activation state, its gender restriction, and the ledger balance. Checks
// run in that order and the first failure wins. It never mutates anything;
// the balance it receives was materialized by the caller.
//
// Balance sufficiency is skipped entirely for the annual tenure-based type:
// its balance is informational at creation time and only becomes binding at
// approval. That is deliberate policy, not an omission.
func CheckEligibility(leaveType LeaveType, employee directory.Employee, requestedDays int, balance LeaveBalance) error {
	if !leaveType.IsActive {
		return InactiveLeaveType(leaveType.Name)
	}

	if leaveType.GenderRestriction != GenderRestrictionNone {
		if employee.Gender == "" {
			return GenderUnspecified()
		}
		switch leaveType.GenderRestriction {
		case GenderRestrictionMale:
			if employee.Gender != directory.GenderMale {
				return GenderRestricted(leaveType.GenderRestriction)
			}
		case GenderRestrictionFemale:
			if employee.Gender != directory.GenderFemale {
				return GenderRestricted(leaveType.GenderRestriction)
			}
		}
	}

	if leaveType.Name != AnnualLeaveTypeName && balance.RemainingDays < requestedDays {
		return InsufficientBalance(balance.RemainingDays, requestedDays)
	}

	return nil
}
