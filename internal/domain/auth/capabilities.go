package auth

import "fieldops/internal/domain/directory"

// The capability set is closed: capabilities derive from the employee role
// and nothing else. Modeled as an enumerated set rather than a free-form
// permission map because the valid keys are fixed in practice.
const (
	CapApproveLeaves = "leave.approve"
	CapManageTypes   = "leave.manage_types"
	CapManageRules   = "leave.manage_rules"
	CapViewAllLeaves = "leave.view_all"
)

var roleCapabilities = map[string][]string{
	directory.RoleAdmin: {
		CapApproveLeaves,
		CapManageTypes,
		CapManageRules,
		CapViewAllLeaves,
	},
	directory.RoleManager: {
		CapApproveLeaves,
		CapManageTypes,
		CapManageRules,
		CapViewAllLeaves,
	},
	directory.RoleEmployee: {},
}

func CapabilitiesForRole(role string) []string {
	caps := roleCapabilities[role]
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}

// Principal is the acting identity supplied by the session layer. The leave
// subsystem trusts it without re-verifying credentials.
type Principal struct {
	EmployeeID string
	Role       string
}

func (p Principal) Can(capability string) bool {
	for _, c := range roleCapabilities[p.Role] {
		if c == capability {
			return true
		}
	}
	return false
}
