package leave

import "context"

func (s *Store) ListRules(ctx context.Context) ([]EntitlementRule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, year_of_service, days_entitled
    FROM entitlement_rules
    ORDER BY year_of_service
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []EntitlementRule
	for rows.Next() {
		var rule EntitlementRule
		if err := rows.Scan(&rule.ID, &rule.YearOfService, &rule.DaysEntitled); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// ReplaceRules swaps the whole rule table in one transaction: either every
// rule updates or none do.
func (s *Store) ReplaceRules(ctx context.Context, rules []EntitlementRule) ([]EntitlementRule, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback(ctx, tx)

	if _, err := tx.Exec(ctx, "DELETE FROM entitlement_rules"); err != nil {
		return nil, err
	}

	inserted := make([]EntitlementRule, 0, len(rules))
	for _, rule := range rules {
		var id string
		err := tx.QueryRow(ctx, `
      INSERT INTO entitlement_rules (year_of_service, days_entitled)
      VALUES ($1,$2)
      RETURNING id
    `, rule.YearOfService, rule.DaysEntitled).Scan(&id)
		if isUniqueViolation(err) {
			return nil, DuplicateRule(rule.YearOfService)
		}
		if err != nil {
			return nil, err
		}
		rule.ID = id
		inserted = append(inserted, rule)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inserted, nil
}
