package leave

import (
	"errors"
	"fmt"
)

// Rejection kinds. Every business-rule failure is detected before any
// mutation and returned as one of these; only infrastructure errors are
// retryable by the caller.
const (
	KindNotFound            = "NOT_FOUND"
	KindInactiveLeaveType   = "INACTIVE_LEAVE_TYPE"
	KindGenderUnspecified   = "GENDER_UNSPECIFIED"
	KindGenderRestricted    = "GENDER_RESTRICTED"
	KindInsufficientBalance = "INSUFFICIENT_BALANCE"
	KindInvalidState        = "INVALID_STATE"
	KindUnauthorized        = "UNAUTHORIZED"
	KindInvalidDateRange    = "INVALID_DATE_RANGE"
	KindDuplicateRule       = "DUPLICATE_RULE"
	KindConflict            = "CONFLICT"
)

// Rejection is a typed business-rule failure. Details carry the operands the
// boundary layer needs to render an actionable message (e.g. remaining vs
// requested days) without this package knowing about presentation.
type Rejection struct {
	Kind    string
	Message string
	Details map[string]any
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

// AsRejection unwraps err into a Rejection if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

func NotFound(what string) *Rejection {
	return &Rejection{Kind: KindNotFound, Message: what + " not found"}
}

func InactiveLeaveType(name string) *Rejection {
	return &Rejection{
		Kind:    KindInactiveLeaveType,
		Message: "leave type is not active",
		Details: map[string]any{"leaveType": name},
	}
}

func GenderUnspecified() *Rejection {
	return &Rejection{
		Kind:    KindGenderUnspecified,
		Message: "employee has no recorded gender; this leave type requires one",
	}
}

func GenderRestricted(restriction string) *Rejection {
	return &Rejection{
		Kind:    KindGenderRestricted,
		Message: "leave type is restricted to a different gender",
		Details: map[string]any{"restriction": restriction},
	}
}

func InsufficientBalance(remaining, requested int) *Rejection {
	return &Rejection{
		Kind:    KindInsufficientBalance,
		Message: fmt.Sprintf("insufficient balance: %d days remaining, %d requested", remaining, requested),
		Details: map[string]any{"remaining": remaining, "requested": requested},
	}
}

func InvalidState(message string) *Rejection {
	return &Rejection{Kind: KindInvalidState, Message: message}
}

func Unauthorized(message string) *Rejection {
	return &Rejection{Kind: KindUnauthorized, Message: message}
}

func InvalidDateRange(message string) *Rejection {
	return &Rejection{Kind: KindInvalidDateRange, Message: message}
}

func DuplicateRule(yearOfService int) *Rejection {
	return &Rejection{
		Kind:    KindDuplicateRule,
		Message: fmt.Sprintf("duplicate rule for year of service %d", yearOfService),
		Details: map[string]any{"yearOfService": yearOfService},
	}
}

func Conflict(message string) *Rejection {
	return &Rejection{Kind: KindConflict, Message: message}
}
