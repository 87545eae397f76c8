package leave

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) ListTypes(ctx context.Context, includeInactive bool) ([]LeaveType, error) {
	query := `
    SELECT id, name, max_days, is_paid, is_active, gender_restriction, COALESCE(description, ''), created_at, updated_at
    FROM leave_types
  `
	if !includeInactive {
		query += " WHERE is_active"
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []LeaveType
	for rows.Next() {
		var t LeaveType
		if err := rows.Scan(&t.ID, &t.Name, &t.MaxDays, &t.IsPaid, &t.IsActive, &t.GenderRestriction, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) LeaveTypeByID(ctx context.Context, id string) (LeaveType, error) {
	var t LeaveType
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, max_days, is_paid, is_active, gender_restriction, COALESCE(description, ''), created_at, updated_at
    FROM leave_types
    WHERE id = $1
  `, id).Scan(&t.ID, &t.Name, &t.MaxDays, &t.IsPaid, &t.IsActive, &t.GenderRestriction, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *Store) LeaveTypeByName(ctx context.Context, name string) (LeaveType, error) {
	var t LeaveType
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, max_days, is_paid, is_active, gender_restriction, COALESCE(description, ''), created_at, updated_at
    FROM leave_types
    WHERE name = $1
  `, name).Scan(&t.ID, &t.Name, &t.MaxDays, &t.IsPaid, &t.IsActive, &t.GenderRestriction, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *Store) CreateType(ctx context.Context, t LeaveType) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (name, max_days, is_paid, is_active, gender_restriction, description)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,''))
    RETURNING id
  `, t.Name, t.MaxDays, t.IsPaid, t.IsActive, t.GenderRestriction, t.Description).Scan(&id)
	if isUniqueViolation(err) {
		return "", Conflict(fmt.Sprintf("leave type %q already exists", t.Name))
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateType(ctx context.Context, t LeaveType) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_types
    SET name = $2, max_days = $3, is_paid = $4, is_active = $5, gender_restriction = $6, description = NULLIF($7,''), updated_at = now()
    WHERE id = $1
  `, t.ID, t.Name, t.MaxDays, t.IsPaid, t.IsActive, t.GenderRestriction, t.Description)
	if isUniqueViolation(err) {
		return Conflict(fmt.Sprintf("leave type %q already exists", t.Name))
	}
	return err
}

func (s *Store) DeleteType(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM leave_types WHERE id = $1", id)
	return err
}

func (s *Store) TypeHasRequests(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests WHERE leave_type_id = $1", id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

const requestColumns = `
    r.id, r.employee_id, e.full_name, r.leave_type_id, lt.name,
    r.start_date, r.end_date, r.return_to_work_date, r.total_days,
    r.status, COALESCE(r.message, ''), COALESCE(r.rejection_reason, ''),
    COALESCE(r.approved_by::text, ''), COALESCE(a.full_name, ''), r.approved_at,
    r.created_at, r.updated_at`

const requestJoins = `
    FROM leave_requests r
    JOIN employees e ON r.employee_id = e.id
    JOIN leave_types lt ON r.leave_type_id = lt.id
    LEFT JOIN employees a ON r.approved_by = a.id`

func scanRequest(row interface{ Scan(dest ...any) error }) (LeaveRequest, error) {
	var req LeaveRequest
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.EmployeeName, &req.LeaveTypeID, &req.LeaveTypeName,
		&req.StartDate, &req.EndDate, &req.ReturnToWorkDate, &req.TotalDays,
		&req.Status, &req.Message, &req.RejectionReason,
		&req.ApproverID, &req.ApproverName, &req.ApprovedAt,
		&req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

func (s *Store) RequestByID(ctx context.Context, id string) (LeaveRequest, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+requestColumns+requestJoins+" WHERE r.id = $1", id)
	return scanRequest(row)
}

func (s *Store) ListRequests(ctx context.Context, filter RequestFilter) ([]LeaveRequest, error) {
	query := "SELECT" + requestColumns + requestJoins + " WHERE 1=1"
	var args []any

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND r.employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	if filter.ActiveOn != nil {
		args = append(args, *filter.ActiveOn)
		query += fmt.Sprintf(" AND r.start_date <= $%d AND r.end_date >= $%d", len(args), len(args))
	}
	query += " ORDER BY r.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Store) CreateRequest(ctx context.Context, req LeaveRequest) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (employee_id, leave_type_id, start_date, end_date, return_to_work_date, total_days, status, message)
    VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''))
    RETURNING id
  `, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate, req.ReturnToWorkDate, req.TotalDays, req.Status, req.Message).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdatePendingRequest rewrites the content fields of a request that is
// still PENDING. The status guard lives in the WHERE clause so a racing
// approval cannot be overwritten.
func (s *Store) UpdatePendingRequest(ctx context.Context, req LeaveRequest) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET leave_type_id = $2, start_date = $3, end_date = $4, return_to_work_date = $5,
        total_days = $6, message = NULLIF($7,''), updated_at = now()
    WHERE id = $1 AND status = $8
  `, req.ID, req.LeaveTypeID, req.StartDate, req.EndDate, req.ReturnToWorkDate, req.TotalDays, req.Message, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return InvalidState("only pending requests can be updated")
	}
	return nil
}

// The transition UPDATEs pin both the status and the day count the caller
// read. A transition that committed in between leaves zero rows matching, the
// ledger mutation rolls back and the caller sees INVALID_STATE instead of a
// charge or refund computed from a stale read.
func (s *Store) ApproveRequest(ctx context.Context, requestID, approverID string, approvedAt time.Time, key BalanceKey, days, totalIfCreate int) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	balanceID, err := ensureBalanceForUpdateTx(ctx, tx, key, totalIfCreate)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2, approved_by = $3, approved_at = $4, updated_at = now()
    WHERE id = $1 AND status = $5 AND total_days = $6
  `, requestID, StatusApproved, approverID, approvedAt, StatusPending, days)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return InvalidState("only pending requests can be decided")
	}

	if err := chargeBalanceTx(ctx, tx, balanceID, days); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) RejectRequest(ctx context.Context, requestID, approverID, reason string, decidedAt time.Time) error {
	// Rejection never touched the ledger, so no balance row is involved.
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2, rejection_reason = $3, approved_by = $4, approved_at = $5, updated_at = now()
    WHERE id = $1 AND status = $6
  `, requestID, StatusRejected, reason, approverID, decidedAt, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return InvalidState("only pending requests can be decided")
	}
	return nil
}

// CancelRequest pins the status the caller observed rather than accepting
// either cancellable state: the refund decision was derived from that read,
// so an approval landing in between must fail the cancel, not skip the refund.
func (s *Store) CancelRequest(ctx context.Context, requestID string, refund bool, observed string, key BalanceKey, days, totalIfCreate int) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	if refund {
		balanceID, err := ensureBalanceForUpdateTx(ctx, tx, key, totalIfCreate)
		if err != nil {
			return err
		}
		if err := releaseBalanceTx(ctx, tx, balanceID, days); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2, updated_at = now()
    WHERE id = $1 AND status = $3 AND total_days = $4
  `, requestID, StatusCancelled, observed, days)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return InvalidState("request is not in a cancellable state")
	}
	return tx.Commit(ctx)
}

// EditRequestDates reconciles the ledger by releasing the old total and
// charging the new one against the same row. The two-step form keeps one
// code path for all balance mutation; the net effect equals the delta.
func (s *Store) EditRequestDates(ctx context.Context, requestID string, newEnd, newReturn time.Time, newTotal int, key BalanceKey, oldTotal, totalIfCreate int) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	balanceID, err := ensureBalanceForUpdateTx(ctx, tx, key, totalIfCreate)
	if err != nil {
		return err
	}
	if err := releaseBalanceTx(ctx, tx, balanceID, oldTotal); err != nil {
		return err
	}
	if err := chargeBalanceTx(ctx, tx, balanceID, newTotal); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET end_date = $2, return_to_work_date = $3, total_days = $4, updated_at = now()
    WHERE id = $1 AND status = $5 AND total_days = $6
  `, requestID, newEnd, newReturn, newTotal, StatusApproved, oldTotal)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return InvalidState("only approved requests can have dates edited")
	}
	return tx.Commit(ctx)
}
