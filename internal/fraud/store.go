package fraud

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RuleStore holds the rule set. List order is insertion order, which is also
// evaluation order.
type RuleStore interface {
	ListRules(ctx context.Context) ([]Rule, error)
	GetRule(ctx context.Context, id string) (Rule, error)
	CreateRule(ctx context.Context, rule Rule) error
	UpdateRule(ctx context.Context, id string, patch RulePatch) (Rule, error)
}

// AlertStore holds the alert log.
type AlertStore interface {
	ListAlerts(ctx context.Context) ([]Alert, error)
	GetAlert(ctx context.Context, id string) (Alert, error)
	AppendAlert(ctx context.Context, alert Alert) error
	ResolveAlert(ctx context.Context, id, action, notes string) (Alert, error)
}

// NewRule validates caller input and assembles a rule ready for storage.
// Fresh rules are active and evaluate after every existing rule.
func NewRule(in RuleInput) (Rule, error) {
	if in.Name == "" || in.Conditions.Empty() || in.Action == "" {
		return Rule{}, validationErr("Missing required fields")
	}
	if in.Action != ActionReview && in.Action != ActionBlock {
		return Rule{}, validationErr("Action must be one of: review, block")
	}
	if err := in.Conditions.Validate(); err != nil {
		return Rule{}, validationErr(err.Error())
	}
	return Rule{
		ID:          "rule-" + shortID(),
		Name:        in.Name,
		Description: in.Description,
		Status:      RuleStatusActive,
		Conditions:  in.Conditions,
		Action:      in.Action,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Apply merges the patch onto a rule and stamps UpdatedAt. Unknown status or
// action values are rejected rather than stored blindly.
func (p RulePatch) Apply(rule Rule) (Rule, error) {
	if p.Name != nil {
		if *p.Name == "" {
			return Rule{}, validationErr("Name must not be empty")
		}
		rule.Name = *p.Name
	}
	if p.Description != nil {
		rule.Description = *p.Description
	}
	if p.Status != nil {
		if *p.Status != RuleStatusActive && *p.Status != RuleStatusInactive {
			return Rule{}, validationErr("Status must be one of: active, inactive")
		}
		rule.Status = *p.Status
	}
	if p.Action != nil {
		if *p.Action != ActionReview && *p.Action != ActionBlock {
			return Rule{}, validationErr("Action must be one of: review, block")
		}
		rule.Action = *p.Action
	}
	if p.Conditions != nil {
		if err := p.Conditions.Validate(); err != nil {
			return Rule{}, validationErr(err.Error())
		}
		rule.Conditions = p.Conditions
	}
	now := time.Now().UTC()
	rule.UpdatedAt = &now
	return rule, nil
}

// ValidateResolution rejects resolution actions other than approve/reject.
// Stores call it before the alert lookup so a bad action reports as invalid
// input even when the id is unknown.
func ValidateResolution(action string) error {
	if action != "approve" && action != "reject" {
		return validationErr("Valid action (approve/reject) is required")
	}
	return nil
}

// ResolveInto applies a resolution to the alert. It owns the lifecycle guard:
// approve/reject are the only valid actions and terminal alerts stay terminal.
func (a Alert) ResolveInto(action, notes string) (Alert, error) {
	if err := ValidateResolution(action); err != nil {
		return Alert{}, err
	}
	if a.Resolved() {
		return Alert{}, ErrConflict
	}
	if action == "approve" {
		a.Status = AlertApproved
	} else {
		a.Status = AlertRejected
	}
	a.Notes = notes
	now := time.Now().UTC()
	a.ResolvedAt = &now
	return a, nil
}

// NewAlert builds the alert record for a flagged evaluation, attributed to the
// first matched rule.
func NewAlert(tx Transaction, primary Rule, at time.Time) Alert {
	status := AlertPendingReview
	if primary.Action == ActionBlock {
		status = AlertBlocked
	}
	return Alert{
		ID:            "alert-" + shortID(),
		TransactionID: tx.TransactionID,
		CustomerID:    tx.CustomerID,
		RuleID:        primary.ID,
		RuleName:      primary.Name,
		Amount:        tx.Amount,
		Country:       tx.Country,
		Status:        status,
		CreatedAt:     at,
	}
}

func shortID() string {
	return uuid.NewString()[:8]
}
