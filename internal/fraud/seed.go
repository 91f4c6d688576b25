package fraud

import "time"

func mustTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedRules returns the rule set the service boots with when no rule file is
// configured. Insertion order matters: it is the evaluation order.
func SeedRules() []Rule {
	return []Rule{
		{
			ID:          "rule-001",
			Name:        "High Amount Transactions",
			Description: "Flag transactions over $1,000",
			Status:      RuleStatusActive,
			Conditions: &ConditionSet{
				Amount: &AmountCondition{Operator: OpGt, Value: 1000},
			},
			Action:    ActionReview,
			CreatedAt: mustTime("2023-01-10T00:00:00Z"),
		},
		{
			ID:          "rule-002",
			Name:        "Multiple Transactions",
			Description: "Flag multiple transactions from the same card in a short time",
			Status:      RuleStatusActive,
			Conditions: &ConditionSet{
				Frequency: &FrequencyCondition{Operator: OpGt, Value: 3, TimeWindow: Duration{D: 5 * time.Minute}},
			},
			Action:    ActionReview,
			CreatedAt: mustTime("2023-01-15T00:00:00Z"),
		},
		{
			ID:          "rule-003",
			Name:        "Unusual Location",
			Description: "Flag transactions from unexpected countries",
			Status:      RuleStatusActive,
			Conditions: &ConditionSet{
				Location: &LocationCondition{Operator: OpNotIn, Values: []string{"US", "CA", "UK", "EU"}},
			},
			Action:    ActionBlock,
			CreatedAt: mustTime("2023-02-05T00:00:00Z"),
		},
	}
}

// SeedAlerts returns the demo alert history shown on a fresh dashboard.
func SeedAlerts() []Alert {
	return []Alert{
		{
			ID:            "alert-001",
			TransactionID: "txn-123456",
			CustomerID:    "cus-001",
			RuleID:        "rule-001",
			RuleName:      "High Amount Transactions",
			Amount:        1500.00,
			Status:        AlertPendingReview,
			CreatedAt:     mustTime("2023-05-15T10:25:30Z"),
		},
		{
			ID:            "alert-002",
			TransactionID: "txn-789012",
			CustomerID:    "cus-002",
			RuleID:        "rule-003",
			RuleName:      "Unusual Location",
			Country:       "RU",
			Status:        AlertBlocked,
			CreatedAt:     mustTime("2023-05-16T15:45:22Z"),
		},
		{
			ID:            "alert-003",
			TransactionID: "txn-345678",
			CustomerID:    "cus-003",
			RuleID:        "rule-002",
			RuleName:      "Multiple Transactions",
			Status:        AlertPendingReview,
			CreatedAt:     mustTime("2023-05-17T08:12:15Z"),
		},
	}
}
