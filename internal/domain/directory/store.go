package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"fieldops/internal/platform/querier"
)

var ErrNotFound = errors.New("employee not found")

// Store is a read-only lookup over the employee directory. The leave
// subsystem never mutates employee records.
type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployeeByID(ctx context.Context, employeeID string) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, full_name, email, role, COALESCE(gender, ''), hire_date, is_active, created_at
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&e.ID, &e.FullName, &e.Email, &e.Role, &e.Gender, &e.HireDate, &e.IsActive, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}
