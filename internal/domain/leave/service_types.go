package leave

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"fieldops/internal/domain/auth"
)

func (s *Service) ListLeaveTypes(ctx context.Context, actor auth.Principal, includeInactive bool) ([]LeaveType, error) {
	if !actor.Can(auth.CapManageTypes) {
		includeInactive = false
	}
	return s.Store.ListTypes(ctx, includeInactive)
}

func (s *Service) LeaveTypeByID(ctx context.Context, actor auth.Principal, id string) (LeaveType, error) {
	leaveType, err := s.Store.LeaveTypeByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveType{}, NotFound("leave type")
	}
	if err != nil {
		return LeaveType{}, err
	}
	if !leaveType.IsActive && !actor.Can(auth.CapManageTypes) {
		return LeaveType{}, Unauthorized("not allowed to view this leave type")
	}
	return leaveType, nil
}

func (s *Service) CreateLeaveType(ctx context.Context, actor auth.Principal, t LeaveType) (LeaveType, error) {
	if !actor.Can(auth.CapManageTypes) {
		return LeaveType{}, Unauthorized("leave type management capability required")
	}
	if t.GenderRestriction == "" {
		t.GenderRestriction = GenderRestrictionNone
	}
	t.IsActive = true

	id, err := s.Store.CreateType(ctx, t)
	if err != nil {
		return LeaveType{}, err
	}
	return s.Store.LeaveTypeByID(ctx, id)
}

type UpdateLeaveTypeInput struct {
	Name              *string
	MaxDays           *int
	IsPaid            *bool
	GenderRestriction *string
	Description       *string
}

// UpdateLeaveType applies a partial edit. The annual tenure-based type keeps
// its name and day count: the day count is owned by the entitlement rule
// table, not by MaxDays.
func (s *Service) UpdateLeaveType(ctx context.Context, actor auth.Principal, id string, input UpdateLeaveTypeInput) (LeaveType, error) {
	if !actor.Can(auth.CapManageTypes) {
		return LeaveType{}, Unauthorized("leave type management capability required")
	}

	leaveType, err := s.Store.LeaveTypeByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveType{}, NotFound("leave type")
	}
	if err != nil {
		return LeaveType{}, err
	}

	if leaveType.Name == AnnualLeaveTypeName {
		if input.Name != nil && *input.Name != AnnualLeaveTypeName {
			return LeaveType{}, Conflict("the annual leave type cannot be renamed")
		}
		if input.MaxDays != nil && *input.MaxDays != leaveType.MaxDays {
			return LeaveType{}, Conflict("annual leave days are managed through the entitlement rules")
		}
	}

	if input.Name != nil {
		leaveType.Name = *input.Name
	}
	if input.MaxDays != nil {
		leaveType.MaxDays = *input.MaxDays
	}
	if input.IsPaid != nil {
		leaveType.IsPaid = *input.IsPaid
	}
	if input.GenderRestriction != nil {
		leaveType.GenderRestriction = *input.GenderRestriction
	}
	if input.Description != nil {
		leaveType.Description = *input.Description
	}

	if err := s.Store.UpdateType(ctx, leaveType); err != nil {
		return LeaveType{}, err
	}
	return s.Store.LeaveTypeByID(ctx, id)
}

// DeleteLeaveType removes a type that has never been requested. Types with
// request history can only be deactivated.
func (s *Service) DeleteLeaveType(ctx context.Context, actor auth.Principal, id string) error {
	if !actor.Can(auth.CapManageTypes) {
		return Unauthorized("leave type management capability required")
	}

	leaveType, err := s.Store.LeaveTypeByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("leave type")
	}
	if err != nil {
		return err
	}
	if leaveType.Name == AnnualLeaveTypeName {
		return Conflict("the annual leave type cannot be deleted")
	}

	hasRequests, err := s.Store.TypeHasRequests(ctx, id)
	if err != nil {
		return err
	}
	if hasRequests {
		return Conflict("leave type has existing requests; deactivate it instead")
	}
	return s.Store.DeleteType(ctx, id)
}

func (s *Service) ToggleLeaveTypeActive(ctx context.Context, actor auth.Principal, id string) (LeaveType, error) {
	if !actor.Can(auth.CapManageTypes) {
		return LeaveType{}, Unauthorized("leave type management capability required")
	}

	leaveType, err := s.Store.LeaveTypeByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveType{}, NotFound("leave type")
	}
	if err != nil {
		return LeaveType{}, err
	}
	if leaveType.Name == AnnualLeaveTypeName && leaveType.IsActive {
		return LeaveType{}, Conflict("the annual leave type cannot be deactivated")
	}

	leaveType.IsActive = !leaveType.IsActive
	if err := s.Store.UpdateType(ctx, leaveType); err != nil {
		return LeaveType{}, err
	}
	return s.Store.LeaveTypeByID(ctx, id)
}
