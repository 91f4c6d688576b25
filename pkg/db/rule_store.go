package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"fraud-core/internal/fraud"
)

// RuleStore persists fraud rules in SQLite. Listing follows rowid order, so
// insertion order stays the evaluation order across restarts.
type RuleStore struct {
	db *sql.DB
}

// NewRuleStore creates a rule store over an open database.
func NewRuleStore(d *Database) *RuleStore {
	return &RuleStore{db: d.DB}
}

// SeedIfEmpty inserts the given rules when the table has no rows yet.
func (s *RuleStore) SeedIfEmpty(ctx context.Context, rules []fraud.Rule) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM fraud_rules`).Scan(&n); err != nil {
		return fmt.Errorf("count rules: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, r := range rules {
		if err := s.CreateRule(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *RuleStore) ListRules(ctx context.Context) ([]fraud.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, status, conditions, action, created_at, updated_at
		FROM fraud_rules
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []fraud.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *RuleStore) GetRule(ctx context.Context, id string) (fraud.Rule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, status, conditions, action, created_at, updated_at
		FROM fraud_rules
		WHERE id = ?
	`, id)
	r, err := scanRule(row)
	if err == sql.ErrNoRows {
		return fraud.Rule{}, fmt.Errorf("%w: rule %s", fraud.ErrNotFound, id)
	}
	if err != nil {
		return fraud.Rule{}, err
	}
	return r, nil
}

func (s *RuleStore) CreateRule(ctx context.Context, r fraud.Rule) error {
	conditions, err := json.Marshal(r.Conditions)
	if err != nil {
		return fmt.Errorf("encode conditions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fraud_rules (id, name, description, status, conditions, action, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Description, r.Status, string(conditions), r.Action, r.CreatedAt, nullableTime(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

func (s *RuleStore) UpdateRule(ctx context.Context, id string, patch fraud.RulePatch) (fraud.Rule, error) {
	current, err := s.GetRule(ctx, id)
	if err != nil {
		return fraud.Rule{}, err
	}
	updated, err := patch.Apply(current)
	if err != nil {
		return fraud.Rule{}, err
	}
	conditions, err := json.Marshal(updated.Conditions)
	if err != nil {
		return fraud.Rule{}, fmt.Errorf("encode conditions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE fraud_rules
		SET name = ?, description = ?, status = ?, conditions = ?, action = ?, updated_at = ?
		WHERE id = ?
	`, updated.Name, updated.Description, updated.Status, string(conditions), updated.Action, nullableTime(updated.UpdatedAt), id)
	if err != nil {
		return fraud.Rule{}, fmt.Errorf("update rule: %w", err)
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (fraud.Rule, error) {
	var (
		r          fraud.Rule
		conditions string
		updatedAt  sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Status, &conditions, &r.Action, &r.CreatedAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return fraud.Rule{}, err
		}
		return fraud.Rule{}, fmt.Errorf("scan rule: %w", err)
	}
	if err := json.Unmarshal([]byte(conditions), &r.Conditions); err != nil {
		return fraud.Rule{}, fmt.Errorf("decode conditions for rule %s: %w", r.ID, err)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		r.UpdatedAt = &t
	}
	return r, nil
}
