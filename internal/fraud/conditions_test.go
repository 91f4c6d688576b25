package fraud

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAmountConditionOperators(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		value    float64
		amount   float64
		want     bool
	}{
		{"gt above", OpGt, 1000, 1000.01, true},
		{"gt equal", OpGt, 1000, 1000, false},
		{"gte equal", OpGte, 1000, 1000, true},
		{"lt below", OpLt, 10, 5, true},
		{"lte above", OpLte, 10, 11, false},
		{"eq match", OpEq, 42, 42, true},
		{"unknown operator", "between", 10, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := AmountCondition{Operator: tt.operator, Value: tt.value}
			if got := cond.matches(tt.amount); got != tt.want {
				t.Fatalf("matches(%v)=%v, expected %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestLocationConditionOperators(t *testing.T) {
	allow := []string{"US", "CA", "UK", "EU"}
	tests := []struct {
		name     string
		operator string
		country  string
		want     bool
	}{
		{"not_in listed", OpNotIn, "US", false},
		{"not_in unlisted", OpNotIn, "RU", true},
		{"in listed", OpIn, "CA", true},
		{"in unlisted", OpIn, "BR", false},
		{"absent country never matches", OpNotIn, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := LocationCondition{Operator: tt.operator, Values: allow}
			if got := cond.matches(tt.country); got != tt.want {
				t.Fatalf("matches(%q)=%v, expected %v", tt.country, got, tt.want)
			}
		})
	}
}

func TestConditionSetRequiresEveryCheck(t *testing.T) {
	set := &ConditionSet{
		Amount:   &AmountCondition{Operator: OpGt, Value: 1000},
		Location: &LocationCondition{Operator: OpNotIn, Values: []string{"US"}},
	}

	// Amount trips but location does not: no match.
	tx := Transaction{Amount: 2000, Country: "US"}
	if set.Matches(tx, nil) {
		t.Fatalf("expected no match when only one of two conditions holds")
	}

	// Both trip.
	tx.Country = "RU"
	if !set.Matches(tx, nil) {
		t.Fatalf("expected match when every condition holds")
	}
}

func TestFrequencyConditionUsesWindowCount(t *testing.T) {
	set := &ConditionSet{
		Frequency: &FrequencyCondition{Operator: OpGt, Value: 3, TimeWindow: Duration{D: 5 * time.Minute}},
	}
	tx := Transaction{Amount: 10}

	if set.Matches(tx, func(window time.Duration) int { return 3 }) {
		t.Fatalf("count equal to threshold must not match")
	}
	if !set.Matches(tx, func(window time.Duration) int { return 4 }) {
		t.Fatalf("count above threshold must match")
	}
	if set.Matches(tx, nil) {
		t.Fatalf("frequency condition without a counter must not match")
	}
}

func TestConditionSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     *ConditionSet
		wantErr bool
	}{
		{"nil set", nil, true},
		{"empty set", &ConditionSet{}, true},
		{"valid amount", &ConditionSet{Amount: &AmountCondition{Operator: OpGt, Value: 1}}, false},
		{"bad amount operator", &ConditionSet{Amount: &AmountCondition{Operator: "above", Value: 1}}, true},
		{"empty country list", &ConditionSet{Location: &LocationCondition{Operator: OpIn}}, true},
		{"bad frequency window", &ConditionSet{Frequency: &FrequencyCondition{Operator: OpGt, Value: 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate()=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationWireRoundTrip(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Minute, `"5m"`},
		{30 * time.Second, `"30s"`},
		{90 * time.Second, `"1m30s"`},
		{45*time.Minute + 10*time.Second, `"45m10s"`},
		{time.Hour, `"1h"`},
		{2*time.Hour + 30*time.Minute, `"2h30m"`},
		{time.Hour + 30*time.Second, `"1h0m30s"`},
	}

	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			out, err := json.Marshal(Duration{D: tt.d})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tt.want {
				t.Fatalf("marshals as %s, expected %s", out, tt.want)
			}
			var back Duration
			if err := json.Unmarshal(out, &back); err != nil {
				t.Fatalf("unmarshal %s: %v", out, err)
			}
			if back.D != tt.d {
				t.Fatalf("round-trip changed %v to %v", tt.d, back.D)
			}
		})
	}
}

func TestConditionSetWireShape(t *testing.T) {
	raw := `{"amount":{"operator":"gt","value":1000},"frequency":{"operator":"gt","value":3,"timeWindow":"5m"}}`

	var set ConditionSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if set.Amount == nil || set.Amount.Operator != OpGt || set.Amount.Value != 1000 {
		t.Fatalf("amount condition not decoded: %+v", set.Amount)
	}
	if set.Frequency == nil || set.Frequency.TimeWindow.D != 5*time.Minute {
		t.Fatalf("frequency window not decoded: %+v", set.Frequency)
	}

	out, err := json.Marshal(set.Frequency.TimeWindow)
	if err != nil {
		t.Fatalf("marshal window: %v", err)
	}
	if string(out) != `"5m"` {
		t.Fatalf("window marshals as %s, expected \"5m\"", out)
	}
}
