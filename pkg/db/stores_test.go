package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fraud-core/internal/fraud"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "fraud.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := ApplyMigrations(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func seededRuleStore(t *testing.T) *RuleStore {
	t.Helper()
	store := NewRuleStore(openTestDB(t))
	if err := store.SeedIfEmpty(context.Background(), fraud.SeedRules()); err != nil {
		t.Fatalf("seed rules: %v", err)
	}
	return store
}

func seededAlertStore(t *testing.T) *AlertStore {
	t.Helper()
	store := NewAlertStore(openTestDB(t))
	if err := store.SeedIfEmpty(context.Background(), fraud.SeedAlerts()); err != nil {
		t.Fatalf("seed alerts: %v", err)
	}
	return store
}

func TestRuleStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := seededRuleStore(t)

	rules, err := store.ListRules(ctx)
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	if len(rules) != 3 || rules[0].ID != "rule-001" || rules[2].ID != "rule-003" {
		t.Fatalf("seed order lost: %+v", rules)
	}

	// Conditions survive the JSON column round trip.
	got, err := store.GetRule(ctx, "rule-002")
	if err != nil {
		t.Fatalf("GetRule: %v", err)
	}
	freq := got.Conditions.Frequency
	if freq == nil || freq.Value != 3 || freq.TimeWindow.String() != "5m" {
		t.Fatalf("conditions mangled: %+v", got.Conditions)
	}

	if _, err := store.GetRule(ctx, "rule-999"); !errors.Is(err, fraud.ErrNotFound) {
		t.Fatalf("missing rule: expected ErrNotFound, got %v", err)
	}
}

func TestRuleStoreSeedIfEmptyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := seededRuleStore(t)

	if err := store.SeedIfEmpty(ctx, fraud.SeedRules()); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	rules, _ := store.ListRules(ctx)
	if len(rules) != 3 {
		t.Fatalf("reseed duplicated rows: %d", len(rules))
	}
}

func TestRuleStoreCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := seededRuleStore(t)

	rule, err := fraud.NewRule(fraud.RuleInput{
		Name:       "Velocity Cap",
		Conditions: &fraud.ConditionSet{Amount: &fraud.AmountCondition{Operator: fraud.OpGte, Value: 250}},
		Action:     fraud.ActionReview,
	})
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	if err := store.CreateRule(ctx, rule); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	rules, _ := store.ListRules(ctx)
	if len(rules) != 4 || rules[3].ID != rule.ID {
		t.Fatalf("created rule must evaluate last: %+v", rules)
	}

	status := fraud.RuleStatusInactive
	updated, err := store.UpdateRule(ctx, rule.ID, fraud.RulePatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateRule: %v", err)
	}
	if updated.Status != fraud.RuleStatusInactive || updated.UpdatedAt == nil {
		t.Fatalf("updated=%+v", updated)
	}

	persisted, _ := store.GetRule(ctx, rule.ID)
	if persisted.Status != fraud.RuleStatusInactive || persisted.UpdatedAt == nil {
		t.Fatalf("update not persisted: %+v", persisted)
	}

	bad := "paused"
	if _, err := store.UpdateRule(ctx, rule.ID, fraud.RulePatch{Status: &bad}); !fraud.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	name := "x"
	if _, err := store.UpdateRule(ctx, "rule-999", fraud.RulePatch{Name: &name}); !errors.Is(err, fraud.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRuleStoreFrequencyWindowSurvivesPersistence(t *testing.T) {
	ctx := context.Background()
	store := NewRuleStore(openTestDB(t))

	rule, err := fraud.NewRule(fraud.RuleInput{
		Name: "Card Burst",
		Conditions: &fraud.ConditionSet{
			Frequency: &fraud.FrequencyCondition{Operator: fraud.OpGt, Value: 3, TimeWindow: fraud.Duration{D: 90 * time.Second}},
		},
		Action: fraud.ActionReview,
	})
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	if err := store.CreateRule(ctx, rule); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	got, err := store.GetRule(ctx, rule.ID)
	if err != nil {
		t.Fatalf("GetRule: %v", err)
	}
	if got.Conditions.Frequency.TimeWindow.D != 90*time.Second {
		t.Fatalf("window came back as %v", got.Conditions.Frequency.TimeWindow)
	}
	if _, err := store.ListRules(ctx); err != nil {
		t.Fatalf("ListRules: %v", err)
	}
}

func TestAlertStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := seededAlertStore(t)

	alerts, err := store.ListAlerts(ctx)
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(alerts) != 3 || alerts[0].ID != "alert-001" {
		t.Fatalf("seed order lost: %+v", alerts)
	}

	got, err := store.GetAlert(ctx, "alert-002")
	if err != nil {
		t.Fatalf("GetAlert: %v", err)
	}
	if got.Country != "RU" || got.Status != fraud.AlertBlocked || got.ResolvedAt != nil {
		t.Fatalf("alert mangled: %+v", got)
	}

	if _, err := store.GetAlert(ctx, "alert-404"); !errors.Is(err, fraud.ErrNotFound) {
		t.Fatalf("missing alert: expected ErrNotFound, got %v", err)
	}

	open, err := store.CountOpen(ctx)
	if err != nil {
		t.Fatalf("CountOpen: %v", err)
	}
	if open != 3 {
		t.Fatalf("open=%d, expected 3", open)
	}
}

func TestAlertStoreResolve(t *testing.T) {
	ctx := context.Background()
	store := seededAlertStore(t)

	resolved, err := store.ResolveAlert(ctx, "alert-001", "approve", "verified with customer")
	if err != nil {
		t.Fatalf("ResolveAlert: %v", err)
	}
	if resolved.Status != fraud.AlertApproved || resolved.Notes != "verified with customer" || resolved.ResolvedAt == nil {
		t.Fatalf("resolved=%+v", resolved)
	}

	persisted, _ := store.GetAlert(ctx, "alert-001")
	if persisted.Status != fraud.AlertApproved || persisted.ResolvedAt == nil {
		t.Fatalf("resolution not persisted: %+v", persisted)
	}

	if _, err := store.ResolveAlert(ctx, "alert-001", "reject", ""); !errors.Is(err, fraud.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := store.ResolveAlert(ctx, "alert-002", "escalate", ""); !fraud.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := store.ResolveAlert(ctx, "alert-404", "approve", ""); !errors.Is(err, fraud.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Action validation comes first, even for an unknown id.
	if _, err := store.ResolveAlert(ctx, "alert-404", "escalate", ""); !fraud.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	open, _ := store.CountOpen(ctx)
	if open != 2 {
		t.Fatalf("open=%d after one resolution, expected 2", open)
	}
}

func TestAlertStoreAppend(t *testing.T) {
	ctx := context.Background()
	store := seededAlertStore(t)

	alert := fraud.NewAlert(
		fraud.Transaction{TransactionID: "t1", CustomerID: "c1", Amount: 9000, Country: "BR"},
		fraud.SeedRules()[2],
		fraud.SeedAlerts()[0].CreatedAt,
	)
	if err := store.AppendAlert(ctx, alert); err != nil {
		t.Fatalf("AppendAlert: %v", err)
	}

	alerts, _ := store.ListAlerts(ctx)
	if len(alerts) != 4 || alerts[3].ID != alert.ID {
		t.Fatalf("append must preserve order: %+v", alerts)
	}
	if alerts[3].Status != fraud.AlertBlocked {
		t.Fatalf("status=%s, expected blocked", alerts[3].Status)
	}
}
