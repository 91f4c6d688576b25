// Package ruleset loads fraud rules from a YAML file, replacing the built-in
// seed set, and optionally hot-swaps the set when the file changes.
package ruleset

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fraud-core/internal/fraud"
)

// File is the top-level YAML document shape.
type File struct {
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec is one rule entry in a rule file. ID and Status are optional;
// omitted values get a generated id and "active".
type RuleSpec struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Status      string              `yaml:"status"`
	Action      string              `yaml:"action"`
	Conditions  *fraud.ConditionSet `yaml:"conditions"`
}

// Load parses and validates a rule file. File order is evaluation order.
func Load(path string) ([]fraud.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw YAML rule-file content.
func Parse(raw []byte) ([]fraud.Rule, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rule file declares no rules")
	}

	seen := make(map[string]bool, len(f.Rules))
	rules := make([]fraud.Rule, 0, len(f.Rules))
	now := time.Now().UTC()
	for i, spec := range f.Rules {
		rule, err := spec.toRule(now)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("rule %d: duplicate id %s", i+1, rule.ID)
		}
		seen[rule.ID] = true
		rules = append(rules, rule)
	}
	return rules, nil
}

func (spec RuleSpec) toRule(now time.Time) (fraud.Rule, error) {
	if spec.Name == "" {
		return fraud.Rule{}, fmt.Errorf("name is required")
	}
	if spec.Action != fraud.ActionReview && spec.Action != fraud.ActionBlock {
		return fraud.Rule{}, fmt.Errorf("action must be one of: review, block")
	}
	if spec.Conditions.Empty() {
		return fraud.Rule{}, fmt.Errorf("conditions must declare at least one check")
	}
	if err := spec.Conditions.Validate(); err != nil {
		return fraud.Rule{}, err
	}

	rule, err := fraud.NewRule(fraud.RuleInput{
		Name:        spec.Name,
		Description: spec.Description,
		Conditions:  spec.Conditions,
		Action:      spec.Action,
	})
	if err != nil {
		return fraud.Rule{}, err
	}
	rule.CreatedAt = now
	if spec.ID != "" {
		rule.ID = spec.ID
	}
	if spec.Status != "" {
		if spec.Status != fraud.RuleStatusActive && spec.Status != fraud.RuleStatusInactive {
			return fraud.Rule{}, fmt.Errorf("status must be one of: active, inactive")
		}
		rule.Status = spec.Status
	}
	return rule, nil
}
