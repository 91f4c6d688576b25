package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fraud-core/internal/fraud"
)

// AlertStore persists the alert log in SQLite.
type AlertStore struct {
	db *sql.DB
}

// NewAlertStore creates an alert store over an open database.
func NewAlertStore(d *Database) *AlertStore {
	return &AlertStore{db: d.DB}
}

// SeedIfEmpty inserts the given alerts when the table has no rows yet.
func (s *AlertStore) SeedIfEmpty(ctx context.Context, alerts []fraud.Alert) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM fraud_alerts`).Scan(&n); err != nil {
		return fmt.Errorf("count alerts: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, a := range alerts {
		if err := s.AppendAlert(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// CountOpen returns how many alerts are still awaiting resolution.
func (s *AlertStore) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM fraud_alerts WHERE status IN (?, ?)
	`, fraud.AlertPendingReview, fraud.AlertBlocked).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open alerts: %w", err)
	}
	return n, nil
}

func (s *AlertStore) ListAlerts(ctx context.Context) ([]fraud.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, customer_id, rule_id, rule_name, amount, country, status, notes, created_at, resolved_at
		FROM fraud_alerts
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []fraud.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *AlertStore) GetAlert(ctx context.Context, id string) (fraud.Alert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, transaction_id, customer_id, rule_id, rule_name, amount, country, status, notes, created_at, resolved_at
		FROM fraud_alerts
		WHERE id = ?
	`, id)
	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return fraud.Alert{}, fmt.Errorf("%w: alert %s", fraud.ErrNotFound, id)
	}
	if err != nil {
		return fraud.Alert{}, err
	}
	return a, nil
}

func (s *AlertStore) AppendAlert(ctx context.Context, a fraud.Alert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fraud_alerts (id, transaction_id, customer_id, rule_id, rule_name, amount, country, status, notes, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.TransactionID, a.CustomerID, a.RuleID, a.RuleName, a.Amount, a.Country, a.Status, a.Notes, a.CreatedAt, nullableTime(a.ResolvedAt))
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *AlertStore) ResolveAlert(ctx context.Context, id, action, notes string) (fraud.Alert, error) {
	if err := fraud.ValidateResolution(action); err != nil {
		return fraud.Alert{}, err
	}
	current, err := s.GetAlert(ctx, id)
	if err != nil {
		return fraud.Alert{}, err
	}
	resolved, err := current.ResolveInto(action, notes)
	if err != nil {
		return fraud.Alert{}, err
	}
	// Guard the terminal transition in SQL as well: a concurrent resolver
	// loses instead of overwriting.
	res, err := s.db.ExecContext(ctx, `
		UPDATE fraud_alerts
		SET status = ?, notes = ?, resolved_at = ?
		WHERE id = ? AND status IN (?, ?)
	`, resolved.Status, resolved.Notes, nullableTime(resolved.ResolvedAt), id,
		fraud.AlertPendingReview, fraud.AlertBlocked)
	if err != nil {
		return fraud.Alert{}, fmt.Errorf("resolve alert: %w", err)
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return fraud.Alert{}, fmt.Errorf("resolve alert: %w", err)
	}
	if changed == 0 {
		return fraud.Alert{}, fraud.ErrConflict
	}
	return resolved, nil
}

func scanAlert(row rowScanner) (fraud.Alert, error) {
	var (
		a          fraud.Alert
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.TransactionID, &a.CustomerID, &a.RuleID, &a.RuleName, &a.Amount, &a.Country, &a.Status, &a.Notes, &a.CreatedAt, &resolvedAt); err != nil {
		if err == sql.ErrNoRows {
			return fraud.Alert{}, err
		}
		return fraud.Alert{}, fmt.Errorf("scan alert: %w", err)
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		a.ResolvedAt = &t
	}
	return a, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
