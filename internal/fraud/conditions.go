package fraud

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Condition operators
const (
	OpGt    = "gt"
	OpGte   = "gte"
	OpLt    = "lt"
	OpLte   = "lte"
	OpEq    = "eq"
	OpIn    = "in"
	OpNotIn = "not_in"
)

// ConditionSet is a rule's declarative condition bag, keyed by check name.
// A rule matches a transaction only when every condition present in the set
// matches. The wire shape mirrors the dashboard contract, e.g.
//
//	{"amount":{"operator":"gt","value":1000},
//	 "location":{"operator":"not_in","value":["US","CA","UK","EU"]},
//	 "frequency":{"operator":"gt","value":3,"timeWindow":"5m"}}
type ConditionSet struct {
	Amount    *AmountCondition    `json:"amount,omitempty" yaml:"amount,omitempty"`
	Location  *LocationCondition  `json:"location,omitempty" yaml:"location,omitempty"`
	Frequency *FrequencyCondition `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

// AmountCondition compares the transaction amount against a threshold.
type AmountCondition struct {
	Operator string  `json:"operator" yaml:"operator"`
	Value    float64 `json:"value" yaml:"value"`
}

// LocationCondition checks the transaction country against a country list.
// A transaction without a country never matches a location condition.
type LocationCondition struct {
	Operator string   `json:"operator" yaml:"operator"`
	Values   []string `json:"value" yaml:"value"`
}

// FrequencyCondition checks how many transactions the same customer submitted
// for analysis inside the trailing time window.
type FrequencyCondition struct {
	Operator   string   `json:"operator" yaml:"operator"`
	Value      int      `json:"value" yaml:"value"`
	TimeWindow Duration `json:"timeWindow" yaml:"timeWindow"`
}

// Empty reports whether the set holds no conditions at all.
func (c *ConditionSet) Empty() bool {
	return c == nil || (c.Amount == nil && c.Location == nil && c.Frequency == nil)
}

// Validate rejects unknown operators and non-positive windows.
func (c *ConditionSet) Validate() error {
	if c.Empty() {
		return fmt.Errorf("conditions must declare at least one check")
	}
	if c.Amount != nil {
		switch c.Amount.Operator {
		case OpGt, OpGte, OpLt, OpLte, OpEq:
		default:
			return fmt.Errorf("amount condition: unknown operator %q", c.Amount.Operator)
		}
	}
	if c.Location != nil {
		switch c.Location.Operator {
		case OpIn, OpNotIn:
		default:
			return fmt.Errorf("location condition: unknown operator %q", c.Location.Operator)
		}
		if len(c.Location.Values) == 0 {
			return fmt.Errorf("location condition: country list is empty")
		}
	}
	if c.Frequency != nil {
		if c.Frequency.Operator != OpGt {
			return fmt.Errorf("frequency condition: unknown operator %q", c.Frequency.Operator)
		}
		if c.Frequency.TimeWindow.D <= 0 {
			return fmt.Errorf("frequency condition: timeWindow must be positive")
		}
	}
	return nil
}

// Matches folds the set over a transaction. frequency reports how many prior
// analyses the customer has inside a given trailing window; it is only invoked
// when the set carries a frequency condition.
func (c *ConditionSet) Matches(tx Transaction, frequency func(window time.Duration) int) bool {
	if c.Empty() {
		return false
	}
	if c.Amount != nil && !c.Amount.matches(tx.Amount) {
		return false
	}
	if c.Location != nil && !c.Location.matches(tx.Country) {
		return false
	}
	if c.Frequency != nil {
		if frequency == nil {
			return false
		}
		if !(frequency(c.Frequency.TimeWindow.D) > c.Frequency.Value) {
			return false
		}
	}
	return true
}

func (a *AmountCondition) matches(amount float64) bool {
	switch a.Operator {
	case OpGt:
		return amount > a.Value
	case OpGte:
		return amount >= a.Value
	case OpLt:
		return amount < a.Value
	case OpLte:
		return amount <= a.Value
	case OpEq:
		return amount == a.Value
	default:
		return false
	}
}

func (l *LocationCondition) matches(country string) bool {
	if country == "" {
		return false
	}
	listed := false
	for _, c := range l.Values {
		if c == country {
			listed = true
			break
		}
	}
	switch l.Operator {
	case OpIn:
		return listed
	case OpNotIn:
		return !listed
	default:
		return false
	}
}

// Duration marshals as a compact string ("5m", "1h30m") on both JSON and YAML
// wires, matching the timeWindow values the dashboard sends.
type Duration struct {
	D time.Duration
}

func (d Duration) String() string {
	s := d.D.String()
	// Trim zero tails time.Duration.String appends ("5m0s" -> "5m",
	// "2h0m" -> "2h"). Only whole zero components go; "1m30s" stays intact.
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid timeWindow %q: %w", raw, err)
	}
	d.D = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid timeWindow %q: %w", raw, err)
	}
	d.D = parsed
	return nil
}
