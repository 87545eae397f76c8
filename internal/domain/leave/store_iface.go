package leave

import (
	"context"
	"time"
)

// BalanceKey identifies one ledger row.
type BalanceKey struct {
	EmployeeID  string
	LeaveTypeID string
	Period      int
}

type RequestFilter struct {
	EmployeeID string
	Status     string
	ActiveOn   *time.Time
	Limit      int
	Offset     int
}

// StoreAPI is the persistence surface the lifecycle service depends on.
// The transition methods (Approve/Reject/Cancel/EditRequestDates) each run
// as a single transaction: the request-status write and the paired ledger
// mutation commit together or not at all. They also pin the status and day
// count the service observed, so a transition that raced in between fails
// with INVALID_STATE rather than applying a stale ledger amount.
type StoreAPI interface {
	ListTypes(ctx context.Context, includeInactive bool) ([]LeaveType, error)
	LeaveTypeByID(ctx context.Context, id string) (LeaveType, error)
	LeaveTypeByName(ctx context.Context, name string) (LeaveType, error)
	CreateType(ctx context.Context, t LeaveType) (string, error)
	UpdateType(ctx context.Context, t LeaveType) error
	DeleteType(ctx context.Context, id string) error
	TypeHasRequests(ctx context.Context, id string) (bool, error)

	ListRules(ctx context.Context) ([]EntitlementRule, error)
	ReplaceRules(ctx context.Context, rules []EntitlementRule) ([]EntitlementRule, error)

	GetOrCreateBalance(ctx context.Context, key BalanceKey, totalDays int) (LeaveBalance, error)
	ListBalances(ctx context.Context, employeeID string, period int) ([]LeaveBalance, error)

	RequestByID(ctx context.Context, id string) (LeaveRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]LeaveRequest, error)
	CreateRequest(ctx context.Context, req LeaveRequest) (string, error)
	UpdatePendingRequest(ctx context.Context, req LeaveRequest) error

	ApproveRequest(ctx context.Context, requestID, approverID string, approvedAt time.Time, key BalanceKey, days, totalIfCreate int) error
	RejectRequest(ctx context.Context, requestID, approverID, reason string, decidedAt time.Time) error
	CancelRequest(ctx context.Context, requestID string, refund bool, observed string, key BalanceKey, days, totalIfCreate int) error
	EditRequestDates(ctx context.Context, requestID string, newEnd, newReturn time.Time, newTotal int, key BalanceKey, oldTotal, totalIfCreate int) error
}
