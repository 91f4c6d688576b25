package fraud

import (
	"context"
	"log"
	"sync"
	"time"

	"fraud-core/internal/events"
	"fraud-core/internal/monitor"
)

// Engine evaluates transactions against the active rule set and appends an
// alert for each flagged evaluation. Evaluation itself is a pure function of
// the input plus current state; the alert append is its only side effect.
type Engine struct {
	rules   RuleStore
	alerts  AlertStore
	bus     *events.Bus
	metrics *monitor.Metrics
	recent  *activityLog
}

// NewEngine wires the evaluator. bus and metrics may be nil.
func NewEngine(rules RuleStore, alerts AlertStore, bus *events.Bus, metrics *monitor.Metrics) *Engine {
	return &Engine{
		rules:   rules,
		alerts:  alerts,
		bus:     bus,
		metrics: metrics,
		recent:  newActivityLog(),
	}
}

// Analyze runs the transaction through every active rule in insertion order.
//
// The verdict aggregates across all matched rules (block wins over review),
// while alert attribution is first-match-wins: exactly one alert is created
// per flagged evaluation, referencing the first rule that matched.
func (e *Engine) Analyze(ctx context.Context, tx Transaction) (Evaluation, error) {
	if tx.TransactionID == "" || tx.CustomerID == "" || tx.Amount == 0 {
		return Evaluation{}, validationErr("Missing required fields")
	}

	rules, err := e.rules.ListRules(ctx)
	if err != nil {
		return Evaluation{}, err
	}

	now := time.Now().UTC()
	frequency := func(window time.Duration) int {
		return e.recent.count(tx.CustomerID, now, window)
	}

	var matched []Rule
	for _, rule := range rules {
		if !rule.Active() {
			continue
		}
		if rule.Conditions.Matches(tx, frequency) {
			matched = append(matched, rule)
		}
	}
	e.recent.record(tx.CustomerID, now)

	result := Evaluation{
		TransactionID: tx.TransactionID,
		CustomerID:    tx.CustomerID,
		Amount:        tx.Amount,
		Country:       tx.Country,
		Flagged:       len(matched) > 0,
		Risk:          RiskLow,
		Action:        VerdictApprove,
		FlaggedRules:  make([]FlaggedRule, 0, len(matched)),
		Timestamp:     now,
	}

	blocked := false
	for _, rule := range matched {
		if rule.Action == ActionBlock {
			blocked = true
		}
		result.FlaggedRules = append(result.FlaggedRules, FlaggedRule{
			ID:     rule.ID,
			Name:   rule.Name,
			Action: rule.Action,
		})
	}
	if result.Flagged {
		if blocked {
			result.Risk = RiskHigh
			result.Action = VerdictBlock
		} else {
			result.Risk = RiskMedium
			result.Action = VerdictReview
		}
	}

	if e.metrics != nil {
		e.metrics.Evaluated(result.Flagged)
		for _, fr := range result.FlaggedRules {
			e.metrics.RuleFlagged(fr.Name)
		}
	}

	if !result.Flagged {
		return result, nil
	}

	alert := NewAlert(tx, matched[0], now)
	if err := e.alerts.AppendAlert(ctx, alert); err != nil {
		return Evaluation{}, err
	}
	result.AlertID = alert.ID

	log.Printf("[FRAUD] flagged txn=%s customer=%s rule=%s risk=%s action=%s alert=%s",
		tx.TransactionID, tx.CustomerID, matched[0].ID, result.Risk, result.Action, alert.ID)

	if e.metrics != nil {
		e.metrics.AlertCreated()
	}
	if e.bus != nil {
		e.bus.Publish(events.EventAlertCreated, alert)
	}
	return result, nil
}

// activityLog tracks analyze timestamps per customer for frequency conditions.
// Entries older than the longest retained window are pruned on write.
type activityLog struct {
	mu     sync.Mutex
	byCust map[string][]time.Time
}

// Window history is capped at one hour; frequency rules with longer windows
// undercount rather than grow the log without bound.
const activityRetention = time.Hour

func newActivityLog() *activityLog {
	return &activityLog{byCust: make(map[string][]time.Time)}
}

func (l *activityLog) record(customerID string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := at.Add(-activityRetention)
	kept := l.byCust[customerID][:0]
	for _, t := range l.byCust[customerID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.byCust[customerID] = append(kept, at)
}

func (l *activityLog) count(customerID string, now time.Time, window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := now.Add(-window)
	n := 0
	for _, t := range l.byCust[customerID] {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}
