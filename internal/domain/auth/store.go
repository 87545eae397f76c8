package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"fieldops/internal/platform/querier"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type credentials struct {
	EmployeeID     string
	Role           string
	HashedPassword string
}

// Authenticate verifies an email/password pair against the directory and
// returns the principal it maps to. Inactive employees cannot log in.
func (s *Store) Authenticate(ctx context.Context, email, password string) (Principal, error) {
	var creds credentials
	err := s.DB.QueryRow(ctx, `
    SELECT id, role, hashed_password
    FROM employees
    WHERE email = $1 AND is_active
  `, email).Scan(&creds.EmployeeID, &creds.Role, &creds.HashedPassword)
	if errors.Is(err, pgx.ErrNoRows) {
		return Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return Principal{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(creds.HashedPassword), []byte(password)) != nil {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{EmployeeID: creds.EmployeeID, Role: creds.Role}, nil
}
