package leave

import "time"

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	GenderRestrictionNone   = "NONE"
	GenderRestrictionMale   = "MALE_ONLY"
	GenderRestrictionFemale = "FEMALE_ONLY"
)

// AnnualLeaveTypeName is the distinguished tenure-based leave type. Its
// entitlement comes from the rule table rather than MaxDays, and its name,
// day count and active flag cannot be changed through the generic type
// editing path.
const AnnualLeaveTypeName = "Annual Leave"

type LeaveType struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	MaxDays           int       `json:"maxDays"`
	IsPaid            bool      `json:"isPaid"`
	IsActive          bool      `json:"isActive"`
	GenderRestriction string    `json:"genderRestriction"`
	Description       string    `json:"description,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// EntitlementRule maps a completed year of service to the annual leave days
// earned that year. At most one rule per YearOfService.
type EntitlementRule struct {
	ID            string `json:"id"`
	YearOfService int    `json:"yearOfService"`
	DaysEntitled  int    `json:"daysEntitled"`
}

// LeaveBalance is one ledger row per (employee, leave type, period).
// Invariant: RemainingDays == TotalDays - UsedDays.
type LeaveBalance struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	LeaveTypeID   string    `json:"leaveTypeId"`
	LeaveTypeName string    `json:"leaveTypeName,omitempty"`
	Period        int       `json:"period"`
	TotalDays     int       `json:"totalDays"`
	UsedDays      int       `json:"usedDays"`
	RemainingDays int       `json:"remainingDays"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type LeaveRequest struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	EmployeeName     string     `json:"employeeName,omitempty"`
	LeaveTypeID      string     `json:"leaveTypeId"`
	LeaveTypeName    string     `json:"leaveTypeName,omitempty"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          time.Time  `json:"endDate"`
	ReturnToWorkDate time.Time  `json:"returnToWorkDate"`
	TotalDays        int        `json:"totalDays"`
	Status           string     `json:"status"`
	Message          string     `json:"message,omitempty"`
	RejectionReason  string     `json:"rejectionReason,omitempty"`
	ApproverID       string     `json:"approvedBy,omitempty"`
	ApproverName     string     `json:"approverName,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
