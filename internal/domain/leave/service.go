package leave

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"fieldops/internal/domain/auth"
	"fieldops/internal/domain/directory"
)

// DirectoryAPI is the read-only employee directory boundary.
type DirectoryAPI interface {
	EmployeeByID(ctx context.Context, employeeID string) (directory.Employee, error)
}

// Service owns the request state machine and the paired ledger mutations.
// Every transition validates before mutating; the store commits the status
// write and the ledger adjustment in one transaction.
type Service struct {
	Store     StoreAPI
	Directory DirectoryAPI
	Now       func() time.Time
}

func NewService(store StoreAPI, dir DirectoryAPI) *Service {
	return &Service{Store: store, Directory: dir, Now: time.Now}
}

type CreateRequestInput struct {
	LeaveTypeID      string
	StartDate        time.Time
	EndDate          time.Time
	ReturnToWorkDate time.Time
	Message          string
}

func (s *Service) CreateRequest(ctx context.Context, actor auth.Principal, input CreateRequestInput) (LeaveRequest, error) {
	if err := ValidateRequestDates(input.StartDate, input.EndDate, input.ReturnToWorkDate); err != nil {
		return LeaveRequest{}, err
	}
	totalDays := RequestDays(input.StartDate, input.EndDate)

	leaveType, err := s.Store.LeaveTypeByID(ctx, input.LeaveTypeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, NotFound("leave type")
	}
	if err != nil {
		return LeaveRequest{}, err
	}

	employee, err := s.Directory.EmployeeByID(ctx, actor.EmployeeID)
	if errors.Is(err, directory.ErrNotFound) {
		return LeaveRequest{}, NotFound("employee")
	}
	if err != nil {
		return LeaveRequest{}, err
	}

	balance, err := s.materializeBalance(ctx, employee, leaveType, input.StartDate.Year())
	if err != nil {
		return LeaveRequest{}, err
	}

	if err := CheckEligibility(leaveType, employee, totalDays, balance); err != nil {
		return LeaveRequest{}, err
	}

	id, err := s.Store.CreateRequest(ctx, LeaveRequest{
		EmployeeID:       actor.EmployeeID,
		LeaveTypeID:      leaveType.ID,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		ReturnToWorkDate: input.ReturnToWorkDate,
		TotalDays:        totalDays,
		Status:           StatusPending,
		Message:          input.Message,
	})
	if err != nil {
		return LeaveRequest{}, err
	}
	return s.Store.RequestByID(ctx, id)
}

// Decide approves or rejects a PENDING request. Approval charges the ledger
// row keyed by the start date's period; rejection records the reason and
// leaves the ledger alone since pending requests never touched it.
func (s *Service) Decide(ctx context.Context, actor auth.Principal, requestID string, approved bool, rejectionReason string) (LeaveRequest, error) {
	if !actor.Can(auth.CapApproveLeaves) {
		return LeaveRequest{}, Unauthorized("leave approval capability required")
	}

	req, err := s.Store.RequestByID(ctx, requestID)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, NotFound("leave request")
	}
	if err != nil {
		return LeaveRequest{}, err
	}

	// Self-approval stays barred no matter what capabilities the actor holds.
	if req.EmployeeID == actor.EmployeeID {
		return LeaveRequest{}, Unauthorized("cannot decide your own leave request")
	}
	if req.Status != StatusPending {
		return LeaveRequest{}, InvalidState("only pending requests can be decided")
	}

	if approved {
		key, totalIfCreate, err := s.balanceTarget(ctx, req)
		if err != nil {
			return LeaveRequest{}, err
		}
		if err := s.Store.ApproveRequest(ctx, requestID, actor.EmployeeID, s.Now().UTC(), key, req.TotalDays, totalIfCreate); err != nil {
			return LeaveRequest{}, err
		}
	} else {
		if strings.TrimSpace(rejectionReason) == "" {
			return LeaveRequest{}, Conflict("a rejection reason is required")
		}
		if err := s.Store.RejectRequest(ctx, requestID, actor.EmployeeID, rejectionReason, s.Now().UTC()); err != nil {
			return LeaveRequest{}, err
		}
	}
	return s.Store.RequestByID(ctx, requestID)
}

// Cancel moves a request to CANCELLED. Approvers may cancel anything still
// cancellable, including past-dated approved leave, to correct bookkeeping.
// The owning employee may cancel a pending request any time but an approved
// one only before it starts. Cancelling an approved request reverses its
// ledger charge; a pending one never charged anything.
func (s *Service) Cancel(ctx context.Context, actor auth.Principal, requestID string) (LeaveRequest, error) {
	req, err := s.Store.RequestByID(ctx, requestID)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, NotFound("leave request")
	}
	if err != nil {
		return LeaveRequest{}, err
	}

	isApprover := actor.Can(auth.CapApproveLeaves)
	isOwner := req.EmployeeID == actor.EmployeeID

	refund := false
	switch req.Status {
	case StatusPending:
		if !isOwner && !isApprover {
			return LeaveRequest{}, Unauthorized("not allowed to cancel this request")
		}
	case StatusApproved:
		if !isApprover {
			if !isOwner {
				return LeaveRequest{}, Unauthorized("not allowed to cancel this request")
			}
			today := truncateToDay(s.Now())
			if !req.StartDate.After(today) {
				return LeaveRequest{}, Unauthorized("approved leave that has started can only be cancelled by an approver")
			}
		}
		refund = true
	default:
		return LeaveRequest{}, InvalidState("request is not in a cancellable state")
	}

	key, totalIfCreate, err := s.balanceTarget(ctx, req)
	if err != nil {
		return LeaveRequest{}, err
	}
	if err := s.Store.CancelRequest(ctx, requestID, refund, req.Status, key, req.TotalDays, totalIfCreate); err != nil {
		return LeaveRequest{}, err
	}
	return s.Store.RequestByID(ctx, requestID)
}

// EditDates shortens or extends an approved request. The ledger is
// reconciled by releasing the old total then charging the new one, the same
// primitive pair used by approve and cancel.
func (s *Service) EditDates(ctx context.Context, actor auth.Principal, requestID string, newEnd, newReturn time.Time) (LeaveRequest, error) {
	if !actor.Can(auth.CapApproveLeaves) {
		return LeaveRequest{}, Unauthorized("leave approval capability required")
	}

	req, err := s.Store.RequestByID(ctx, requestID)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, NotFound("leave request")
	}
	if err != nil {
		return LeaveRequest{}, err
	}
	if req.Status != StatusApproved {
		return LeaveRequest{}, InvalidState("only approved requests can have dates edited")
	}

	newEnd = truncateToDay(newEnd)
	newReturn = truncateToDay(newReturn)
	if newEnd.Before(truncateToDay(req.StartDate)) {
		return LeaveRequest{}, InvalidDateRange("new end date cannot be before the start date")
	}
	if newReturn.Before(newEnd) {
		return LeaveRequest{}, InvalidDateRange("new return-to-work date cannot be before the end date")
	}
	newTotal := RequestDays(truncateToDay(req.StartDate), newEnd)

	key, totalIfCreate, err := s.balanceTarget(ctx, req)
	if err != nil {
		return LeaveRequest{}, err
	}
	if err := s.Store.EditRequestDates(ctx, requestID, newEnd, newReturn, newTotal, key, req.TotalDays, totalIfCreate); err != nil {
		return LeaveRequest{}, err
	}
	return s.Store.RequestByID(ctx, requestID)
}

type UpdateRequestInput struct {
	LeaveTypeID      string
	StartDate        time.Time
	EndDate          time.Time
	ReturnToWorkDate time.Time
	Message          string
}

// UpdateRequest is the generic content edit, legal only while PENDING.
func (s *Service) UpdateRequest(ctx context.Context, actor auth.Principal, requestID string, input UpdateRequestInput) (LeaveRequest, error) {
	req, err := s.Store.RequestByID(ctx, requestID)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, NotFound("leave request")
	}
	if err != nil {
		return LeaveRequest{}, err
	}
	if req.EmployeeID != actor.EmployeeID && !actor.Can(auth.CapApproveLeaves) {
		return LeaveRequest{}, Unauthorized("not allowed to update this request")
	}
	if req.Status != StatusPending {
		return LeaveRequest{}, InvalidState("only pending requests can be updated")
	}
	if err := ValidateRequestDates(input.StartDate, input.EndDate, input.ReturnToWorkDate); err != nil {
		return LeaveRequest{}, err
	}

	leaveTypeID := req.LeaveTypeID
	if input.LeaveTypeID != "" {
		if _, err := s.Store.LeaveTypeByID(ctx, input.LeaveTypeID); errors.Is(err, pgx.ErrNoRows) {
			return LeaveRequest{}, NotFound("leave type")
		} else if err != nil {
			return LeaveRequest{}, err
		}
		leaveTypeID = input.LeaveTypeID
	}

	req.LeaveTypeID = leaveTypeID
	req.StartDate = input.StartDate
	req.EndDate = input.EndDate
	req.ReturnToWorkDate = input.ReturnToWorkDate
	req.TotalDays = RequestDays(input.StartDate, input.EndDate)
	req.Message = input.Message

	if err := s.Store.UpdatePendingRequest(ctx, req); err != nil {
		return LeaveRequest{}, err
	}
	return s.Store.RequestByID(ctx, requestID)
}

func (s *Service) RequestByID(ctx context.Context, actor auth.Principal, requestID string) (LeaveRequest, error) {
	req, err := s.Store.RequestByID(ctx, requestID)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, NotFound("leave request")
	}
	if err != nil {
		return LeaveRequest{}, err
	}
	if req.EmployeeID != actor.EmployeeID && !actor.Can(auth.CapViewAllLeaves) {
		return LeaveRequest{}, Unauthorized("not allowed to view this request")
	}
	return req, nil
}

// ListRequests scopes listings: employees only ever see their own.
func (s *Service) ListRequests(ctx context.Context, actor auth.Principal, filter RequestFilter) ([]LeaveRequest, error) {
	if !actor.Can(auth.CapViewAllLeaves) {
		filter.EmployeeID = actor.EmployeeID
	}
	return s.Store.ListRequests(ctx, filter)
}

// ActiveRequests lists approved leave spanning the given date.
func (s *Service) ActiveRequests(ctx context.Context, actor auth.Principal, on time.Time) ([]LeaveRequest, error) {
	on = truncateToDay(on)
	filter := RequestFilter{Status: StatusApproved, ActiveOn: &on}
	if !actor.Can(auth.CapViewAllLeaves) {
		filter.EmployeeID = actor.EmployeeID
	}
	return s.Store.ListRequests(ctx, filter)
}

type LeaveStatus struct {
	OnLeave          bool       `json:"isOnLeave"`
	LeaveTypeName    string     `json:"leaveType,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	ReturnToWorkDate *time.Time `json:"returnToWorkDate,omitempty"`
}

// StatusOn reports whether the employee is on approved leave on the date.
func (s *Service) StatusOn(ctx context.Context, employeeID string, on time.Time) (LeaveStatus, error) {
	on = truncateToDay(on)
	requests, err := s.Store.ListRequests(ctx, RequestFilter{
		EmployeeID: employeeID,
		Status:     StatusApproved,
		ActiveOn:   &on,
	})
	if err != nil {
		return LeaveStatus{}, err
	}
	if len(requests) == 0 {
		return LeaveStatus{}, nil
	}
	req := requests[0]
	return LeaveStatus{
		OnLeave:          true,
		LeaveTypeName:    req.LeaveTypeName,
		StartDate:        &req.StartDate,
		EndDate:          &req.EndDate,
		ReturnToWorkDate: &req.ReturnToWorkDate,
	}, nil
}

// Balances materializes and returns the employee's ledger rows for every
// active leave type in the given period. Materialization is idempotent, so
// repeated calls observe the same rows.
func (s *Service) Balances(ctx context.Context, actor auth.Principal, employeeID string, period int) ([]LeaveBalance, error) {
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID != actor.EmployeeID && !actor.Can(auth.CapViewAllLeaves) {
		return nil, Unauthorized("not allowed to view these balances")
	}
	if period == 0 {
		period = s.Now().Year()
	}

	employee, err := s.Directory.EmployeeByID(ctx, employeeID)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, NotFound("employee")
	}
	if err != nil {
		return nil, err
	}

	types, err := s.Store.ListTypes(ctx, false)
	if err != nil {
		return nil, err
	}

	balances := make([]LeaveBalance, 0, len(types))
	for _, leaveType := range types {
		balance, err := s.materializeBalance(ctx, employee, leaveType, period)
		if err != nil {
			return nil, err
		}
		balance.LeaveTypeName = leaveType.Name
		balances = append(balances, balance)
	}
	return balances, nil
}

func (s *Service) materializeBalance(ctx context.Context, employee directory.Employee, leaveType LeaveType, period int) (LeaveBalance, error) {
	totalDays := leaveType.MaxDays
	if leaveType.Name == AnnualLeaveTypeName {
		rules, err := s.Store.ListRules(ctx)
		if err != nil {
			return LeaveBalance{}, err
		}
		var hireDate time.Time
		if employee.HireDate != nil {
			hireDate = *employee.HireDate
		}
		totalDays = EntitlementByHireDate(hireDate, period, rules)
	}
	return s.Store.GetOrCreateBalance(ctx, BalanceKey{
		EmployeeID:  employee.ID,
		LeaveTypeID: leaveType.ID,
		Period:      period,
	}, totalDays)
}

// balanceTarget resolves the ledger key a transition charges or releases
// against, plus the entitlement to seed the row with if it does not exist
// yet (legacy requests can predate their balance row).
func (s *Service) balanceTarget(ctx context.Context, req LeaveRequest) (BalanceKey, int, error) {
	leaveType, err := s.Store.LeaveTypeByID(ctx, req.LeaveTypeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return BalanceKey{}, 0, NotFound("leave type")
	}
	if err != nil {
		return BalanceKey{}, 0, err
	}

	employee, err := s.Directory.EmployeeByID(ctx, req.EmployeeID)
	if errors.Is(err, directory.ErrNotFound) {
		return BalanceKey{}, 0, NotFound("employee")
	}
	if err != nil {
		return BalanceKey{}, 0, err
	}

	period := req.StartDate.Year()
	totalDays := leaveType.MaxDays
	if leaveType.Name == AnnualLeaveTypeName {
		rules, err := s.Store.ListRules(ctx)
		if err != nil {
			return BalanceKey{}, 0, err
		}
		var hireDate time.Time
		if employee.HireDate != nil {
			hireDate = *employee.HireDate
		}
		totalDays = EntitlementByHireDate(hireDate, period, rules)
	}

	return BalanceKey{EmployeeID: req.EmployeeID, LeaveTypeID: leaveType.ID, Period: period}, totalDays, nil
}

func (s *Service) ListRules(ctx context.Context) ([]EntitlementRule, error) {
	return s.Store.ListRules(ctx)
}

// ReplaceRules swaps the whole entitlement rule table atomically.
func (s *Service) ReplaceRules(ctx context.Context, actor auth.Principal, rules []EntitlementRule) ([]EntitlementRule, error) {
	if !actor.Can(auth.CapManageRules) {
		return nil, Unauthorized("rule management capability required")
	}

	seen := make(map[int]bool, len(rules))
	for _, rule := range rules {
		if rule.YearOfService < 1 {
			return nil, InvalidDateRange("yearOfService must be a positive integer")
		}
		if rule.DaysEntitled < 0 {
			return nil, InvalidDateRange("daysEntitled cannot be negative")
		}
		if seen[rule.YearOfService] {
			return nil, DuplicateRule(rule.YearOfService)
		}
		seen[rule.YearOfService] = true
	}
	return s.Store.ReplaceRules(ctx, rules)
}

// ServiceYearEntitlement exposes the anniversary-based calculation for the
// configured rule table.
func (s *Service) ServiceYearEntitlement(ctx context.Context, serviceYear int) (int, error) {
	rules, err := s.Store.ListRules(ctx)
	if err != nil {
		return 0, err
	}
	return EntitlementByServiceYear(serviceYear, rules), nil
}
