package leave_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops/internal/db"
	"fieldops/internal/domain/leave"
)

// newIntegrationStore connects to TEST_DATABASE_URL and applies migrations.
// Tests are skipped when the variable is unset so the suite stays runnable
// without a database.
func newIntegrationStore(t *testing.T) (*leave.Store, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, "../../../migrations"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	return leave.NewStore(pool), pool
}

func createFixtureEmployee(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
    INSERT INTO employees (full_name, email, hashed_password, role, gender, hire_date, is_active)
    VALUES ('Test Employee', $1, 'x', 'EMPLOYEE', 'MALE', '2020-06-15', true)
    RETURNING id
  `, fmt.Sprintf("it-%s@example.com", uuid.NewString())).Scan(&id)
	if err != nil {
		t.Fatalf("create employee failed: %v", err)
	}
	return id
}

func createFixtureType(t *testing.T, store *leave.Store, maxDays int) leave.LeaveType {
	t.Helper()
	id, err := store.CreateType(context.Background(), leave.LeaveType{
		Name:              "IT Leave " + uuid.NewString(),
		MaxDays:           maxDays,
		IsPaid:            true,
		IsActive:          true,
		GenderRestriction: leave.GenderRestrictionNone,
	})
	if err != nil {
		t.Fatalf("create type failed: %v", err)
	}
	created, err := store.LeaveTypeByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload type failed: %v", err)
	}
	return created
}

func TestStoreLifecycleRoundTrip(t *testing.T) {
	store, pool := newIntegrationStore(t)
	ctx := context.Background()

	employeeID := createFixtureEmployee(t, pool)
	approverID := createFixtureEmployee(t, pool)
	leaveType := createFixtureType(t, store, 10)
	key := leave.BalanceKey{EmployeeID: employeeID, LeaveTypeID: leaveType.ID, Period: 2026}

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	requestID, err := store.CreateRequest(ctx, leave.LeaveRequest{
		EmployeeID:       employeeID,
		LeaveTypeID:      leaveType.ID,
		StartDate:        start,
		EndDate:          end,
		ReturnToWorkDate: ret,
		TotalDays:        5,
		Status:           leave.StatusPending,
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}

	if err := store.ApproveRequest(ctx, requestID, approverID, time.Now().UTC(), key, 5, 10); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	balance, err := store.GetOrCreateBalance(ctx, key, 10)
	if err != nil {
		t.Fatalf("balance lookup failed: %v", err)
	}
	if balance.UsedDays != 5 || balance.RemainingDays != 5 {
		t.Fatalf("approval did not charge the ledger: %+v", balance)
	}

	// The status guard in the UPDATE makes a second approval a no-op error.
	err = store.ApproveRequest(ctx, requestID, approverID, time.Now().UTC(), key, 5, 10)
	rej, ok := leave.AsRejection(err)
	if !ok || rej.Kind != leave.KindInvalidState {
		t.Fatalf("double approve must fail with INVALID_STATE, got %v", err)
	}

	// Shorten to 3 days: net ledger effect is -2 used.
	if err := store.EditRequestDates(ctx, requestID, start.AddDate(0, 0, 2), start.AddDate(0, 0, 3), 3, key, 5, 10); err != nil {
		t.Fatalf("edit dates failed: %v", err)
	}
	balance, err = store.GetOrCreateBalance(ctx, key, 10)
	if err != nil {
		t.Fatalf("balance lookup failed: %v", err)
	}
	if balance.UsedDays != 3 || balance.RemainingDays != 7 {
		t.Fatalf("edit did not reconcile the ledger: %+v", balance)
	}

	// A canceller still holding the 5-day read must fail instead of
	// refunding 5 against a row charged 3.
	err = store.CancelRequest(ctx, requestID, true, leave.StatusApproved, key, 5, 10)
	rej, ok = leave.AsRejection(err)
	if !ok || rej.Kind != leave.KindInvalidState {
		t.Fatalf("stale-days cancel must fail with INVALID_STATE, got %v", err)
	}
	balance, err = store.GetOrCreateBalance(ctx, key, 10)
	if err != nil {
		t.Fatalf("balance lookup failed: %v", err)
	}
	if balance.UsedDays != 3 || balance.RemainingDays != 7 {
		t.Fatalf("failed cancel must not move the ledger: %+v", balance)
	}

	if err := store.CancelRequest(ctx, requestID, true, leave.StatusApproved, key, 3, 10); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	balance, err = store.GetOrCreateBalance(ctx, key, 10)
	if err != nil {
		t.Fatalf("balance lookup failed: %v", err)
	}
	if balance.UsedDays != 0 || balance.RemainingDays != 10 {
		t.Fatalf("cancel did not refund the ledger: %+v", balance)
	}

	final, err := store.RequestByID(ctx, requestID)
	if err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	if final.Status != leave.StatusCancelled || final.TotalDays != 3 {
		t.Fatalf("unexpected final request: %+v", final)
	}
}

func TestStoreGetOrCreateBalanceIdempotent(t *testing.T) {
	store, pool := newIntegrationStore(t)
	ctx := context.Background()

	employeeID := createFixtureEmployee(t, pool)
	leaveType := createFixtureType(t, store, 10)
	key := leave.BalanceKey{EmployeeID: employeeID, LeaveTypeID: leaveType.ID, Period: 2026}

	first, err := store.GetOrCreateBalance(ctx, key, 10)
	if err != nil {
		t.Fatalf("first get-or-create failed: %v", err)
	}
	// A later call with a different seed must not reset the row.
	second, err := store.GetOrCreateBalance(ctx, key, 99)
	if err != nil {
		t.Fatalf("second get-or-create failed: %v", err)
	}
	if first.ID != second.ID || second.TotalDays != 10 {
		t.Fatalf("get-or-create is not idempotent: %+v vs %+v", first, second)
	}
}

func TestStoreReplaceRulesAtomic(t *testing.T) {
	store, _ := newIntegrationStore(t)
	ctx := context.Background()

	replaced, err := store.ReplaceRules(ctx, []leave.EntitlementRule{
		{YearOfService: 1, DaysEntitled: 14},
		{YearOfService: 5, DaysEntitled: 20},
	})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if len(replaced) != 2 {
		t.Fatalf("want 2 rules, got %d", len(replaced))
	}

	rules, err := store.ListRules(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rules) != 2 || rules[0].YearOfService != 1 || rules[1].YearOfService != 5 {
		t.Fatalf("unexpected rules after replace: %+v", rules)
	}
}
