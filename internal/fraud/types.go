package fraud

import (
	"encoding/json"
	"time"
)

// Rule status values
const (
	RuleStatusActive   = "active"
	RuleStatusInactive = "inactive"
)

// Rule actions
const (
	ActionReview = "review"
	ActionBlock  = "block"
)

// Alert status values
const (
	AlertPendingReview = "pending_review"
	AlertBlocked       = "blocked"
	AlertApproved      = "approved"
	AlertRejected      = "rejected"
)

// Risk levels reported in an evaluation verdict
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Verdict actions (a superset of rule actions: an unflagged transaction is approved)
const (
	VerdictApprove = "approve"
	VerdictReview  = "review"
	VerdictBlock   = "block"
)

// Rule is a declarative fraud condition with an action to take when it matches.
// Rules are never mutated by evaluation; only an explicit update changes them.
type Rule struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      string        `json:"status"`
	Conditions  *ConditionSet `json:"conditions"`
	Action      string        `json:"action"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   *time.Time    `json:"updatedAt,omitempty"`
}

// Active reports whether the rule participates in evaluation.
func (r Rule) Active() bool {
	return r.Status == RuleStatusActive
}

// RuleInput carries the caller-supplied fields of a new rule.
type RuleInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Conditions  *ConditionSet `json:"conditions"`
	Action      string        `json:"action"`
}

// RulePatch is a partial rule update. Nil fields are left untouched.
type RulePatch struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Status      *string       `json:"status"`
	Conditions  *ConditionSet `json:"conditions"`
	Action      *string       `json:"action"`
}

// Alert is the persistent record created when an analyzed transaction matches
// at least one rule. It tracks the resolution workflow.
type Alert struct {
	ID            string     `json:"id"`
	TransactionID string     `json:"transactionId"`
	CustomerID    string     `json:"customerId"`
	RuleID        string     `json:"ruleId"`
	RuleName      string     `json:"ruleName"`
	Amount        float64    `json:"amount"`
	Country       string     `json:"country,omitempty"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ResolvedAt    *time.Time `json:"resolvedAt,omitempty"`
}

// Resolved reports whether the alert has reached a terminal status.
func (a Alert) Resolved() bool {
	return a.Status == AlertApproved || a.Status == AlertRejected
}

// Transaction is the input descriptor for a fraud analysis.
// TransactionID, CustomerID and Amount are required; Country and CardDetails
// are optional context.
type Transaction struct {
	TransactionID string          `json:"transactionId"`
	CustomerID    string          `json:"customerId"`
	Amount        float64         `json:"amount"`
	Country       string          `json:"country,omitempty"`
	CardDetails   json.RawMessage `json:"cardDetails,omitempty"`
}

// FlaggedRule identifies a rule that matched during evaluation.
type FlaggedRule struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Action string `json:"action"`
}

// Evaluation is the ephemeral verdict returned from an analyze call.
// It is never stored; the only durable side effect of a flagged evaluation is
// the alert identified by AlertID.
type Evaluation struct {
	TransactionID string        `json:"transactionId"`
	CustomerID    string        `json:"customerId"`
	Amount        float64       `json:"amount"`
	Country       string        `json:"country,omitempty"`
	Flagged       bool          `json:"flagged"`
	Risk          string        `json:"risk"`
	Action        string        `json:"action"`
	FlaggedRules  []FlaggedRule `json:"flaggedRules"`
	AlertID       string        `json:"alertId,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}
