package leave

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"fieldops/internal/platform/querier"
)

// GetOrCreateBalance returns the ledger row for key, creating it with the
// supplied totalDays on first reference. The insert uses ON CONFLICT DO
// NOTHING so two callers racing on the same key both observe exactly one
// row; the loser of the race just reselects.
func (s *Store) GetOrCreateBalance(ctx context.Context, key BalanceKey, totalDays int) (LeaveBalance, error) {
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (employee_id, leave_type_id, period, total_days, used_days, remaining_days)
    VALUES ($1,$2,$3,$4,0,$4)
    ON CONFLICT (employee_id, leave_type_id, period) DO NOTHING
  `, key.EmployeeID, key.LeaveTypeID, key.Period, totalDays); err != nil {
		return LeaveBalance{}, err
	}
	return s.balanceByKey(ctx, s.DB, key)
}

func (s *Store) balanceByKey(ctx context.Context, q querier.Querier, key BalanceKey) (LeaveBalance, error) {
	var b LeaveBalance
	err := q.QueryRow(ctx, `
    SELECT id, employee_id, leave_type_id, period, total_days, used_days, remaining_days, created_at, updated_at
    FROM leave_balances
    WHERE employee_id = $1 AND leave_type_id = $2 AND period = $3
  `, key.EmployeeID, key.LeaveTypeID, key.Period).Scan(
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Period,
		&b.TotalDays, &b.UsedDays, &b.RemainingDays, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (s *Store) ListBalances(ctx context.Context, employeeID string, period int) ([]LeaveBalance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT b.id, b.employee_id, b.leave_type_id, lt.name, b.period, b.total_days, b.used_days, b.remaining_days, b.created_at, b.updated_at
    FROM leave_balances b
    JOIN leave_types lt ON b.leave_type_id = lt.id
    WHERE b.employee_id = $1 AND b.period = $2
    ORDER BY lt.name
  `, employeeID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []LeaveBalance
	for rows.Next() {
		var b LeaveBalance
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.LeaveTypeName, &b.Period, &b.TotalDays, &b.UsedDays, &b.RemainingDays, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// ensureBalanceForUpdateTx materializes the ledger row if needed and takes a
// row lock on it, serializing concurrent transitions that target the same
// balance. Transitions on different rows proceed in parallel.
func ensureBalanceForUpdateTx(ctx context.Context, tx pgx.Tx, key BalanceKey, totalDays int) (string, error) {
	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (employee_id, leave_type_id, period, total_days, used_days, remaining_days)
    VALUES ($1,$2,$3,$4,0,$4)
    ON CONFLICT (employee_id, leave_type_id, period) DO NOTHING
  `, key.EmployeeID, key.LeaveTypeID, key.Period, totalDays); err != nil {
		return "", err
	}

	var id string
	err := tx.QueryRow(ctx, `
    SELECT id
    FROM leave_balances
    WHERE employee_id = $1 AND leave_type_id = $2 AND period = $3
    FOR UPDATE
  `, key.EmployeeID, key.LeaveTypeID, key.Period).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", Conflict("balance row vanished during transition")
	}
	return id, err
}

// chargeBalanceTx and releaseBalanceTx are the only writers of
// used_days/remaining_days; both fields move together so the
// remaining == total - used invariant holds at every commit point.
func chargeBalanceTx(ctx context.Context, tx pgx.Tx, balanceID string, days int) error {
	_, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET used_days = used_days + $2, remaining_days = remaining_days - $2, updated_at = now()
    WHERE id = $1
  `, balanceID, days)
	return err
}

func releaseBalanceTx(ctx context.Context, tx pgx.Tx, balanceID string, days int) error {
	_, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET used_days = used_days - $2, remaining_days = remaining_days + $2, updated_at = now()
    WHERE id = $1
  `, balanceID, days)
	return err
}
