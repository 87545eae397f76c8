package db

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"fieldops/internal/platform/config"
)

type seedLeaveType struct {
	name              string
	maxDays           int
	isPaid            bool
	genderRestriction string
	description       string
}

var defaultLeaveTypes = []seedLeaveType{
	{name: "Annual Leave", maxDays: 14, isPaid: true, genderRestriction: "NONE", description: "Tenure-based paid annual leave"},
	{name: "Sick Leave", maxDays: 10, isPaid: true, genderRestriction: "NONE", description: "Paid sick leave with medical report"},
	{name: "Maternity Leave", maxDays: 112, isPaid: true, genderRestriction: "FEMALE_ONLY", description: "Statutory maternity leave"},
	{name: "Paternity Leave", maxDays: 5, isPaid: true, genderRestriction: "MALE_ONLY", description: "Paternity leave on birth of a child"},
	{name: "Unpaid Leave", maxDays: 30, isPaid: false, genderRestriction: "NONE", description: "Unpaid leave of absence"},
}

var defaultEntitlementRules = []struct {
	yearOfService int
	daysEntitled  int
}{
	{1, 14},
	{5, 20},
	{15, 26},
}

// Seed creates the bootstrap admin, the default leave types and the default
// entitlement rules. Every insert is ON CONFLICT DO NOTHING so it is safe to
// run on every startup.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO employees (full_name, email, hashed_password, role, is_active)
			VALUES ('Administrator', $1, $2, 'ADMIN', true)
			ON CONFLICT (email) DO NOTHING`,
			cfg.SeedAdminEmail, string(hash))
		if err != nil {
			return err
		}
	} else {
		slog.Warn("seed: SEED_ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	for _, lt := range defaultLeaveTypes {
		_, err := pool.Exec(ctx, `
			INSERT INTO leave_types (name, max_days, is_paid, is_active, gender_restriction, description)
			VALUES ($1, $2, $3, true, $4, $5)
			ON CONFLICT (name) DO NOTHING`,
			lt.name, lt.maxDays, lt.isPaid, lt.genderRestriction, lt.description)
		if err != nil {
			return err
		}
	}

	for _, rule := range defaultEntitlementRules {
		_, err := pool.Exec(ctx, `
			INSERT INTO entitlement_rules (year_of_service, days_entitled)
			VALUES ($1, $2)
			ON CONFLICT (year_of_service) DO NOTHING`,
			rule.yearOfService, rule.daysEntitled)
		if err != nil {
			return err
		}
	}

	return nil
}
