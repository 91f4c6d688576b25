package fraud

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRuleStore keeps rules in an insertion-ordered slice guarded by a
// RWMutex. It backs tests and DB-less runs.
type MemoryRuleStore struct {
	mu    sync.RWMutex
	rules []Rule
	index map[string]int
}

// NewMemoryRuleStore creates a store pre-populated with seed, preserving order.
func NewMemoryRuleStore(seed []Rule) *MemoryRuleStore {
	s := &MemoryRuleStore{index: make(map[string]int, len(seed))}
	for _, r := range seed {
		s.index[r.ID] = len(s.rules)
		s.rules = append(s.rules, r)
	}
	return s
}

func (s *MemoryRuleStore) ListRules(ctx context.Context) ([]Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

func (s *MemoryRuleStore) GetRule(ctx context.Context, id string) (Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Rule{}, fmt.Errorf("%w: rule %s", ErrNotFound, id)
	}
	return s.rules[i], nil
}

func (s *MemoryRuleStore) CreateRule(ctx context.Context, rule Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[rule.ID]; exists {
		return fmt.Errorf("rule %s already exists", rule.ID)
	}
	s.index[rule.ID] = len(s.rules)
	s.rules = append(s.rules, rule)
	return nil
}

func (s *MemoryRuleStore) UpdateRule(ctx context.Context, id string, patch RulePatch) (Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Rule{}, fmt.Errorf("%w: rule %s", ErrNotFound, id)
	}
	updated, err := patch.Apply(s.rules[i])
	if err != nil {
		return Rule{}, err
	}
	s.rules[i] = updated
	return updated, nil
}

// ReplaceAll swaps the whole rule set, used by the rule-file watcher on a hot
// reload. Evaluation order becomes the order of the new set.
func (s *MemoryRuleStore) ReplaceAll(ctx context.Context, rules []Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := make(map[string]int, len(rules))
	for i, r := range rules {
		if _, dup := index[r.ID]; dup {
			return fmt.Errorf("duplicate rule id %s", r.ID)
		}
		index[r.ID] = i
	}
	s.rules = append(s.rules[:0:0], rules...)
	s.index = index
	return nil
}

// MemoryAlertStore is the in-memory alert log.
type MemoryAlertStore struct {
	mu     sync.RWMutex
	alerts []Alert
	index  map[string]int
}

// NewMemoryAlertStore creates a store pre-populated with seed.
func NewMemoryAlertStore(seed []Alert) *MemoryAlertStore {
	s := &MemoryAlertStore{index: make(map[string]int, len(seed))}
	for _, a := range seed {
		s.index[a.ID] = len(s.alerts)
		s.alerts = append(s.alerts, a)
	}
	return s
}

func (s *MemoryAlertStore) ListAlerts(ctx context.Context) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Alert, len(s.alerts))
	copy(out, s.alerts)
	return out, nil
}

func (s *MemoryAlertStore) GetAlert(ctx context.Context, id string) (Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Alert{}, fmt.Errorf("%w: alert %s", ErrNotFound, id)
	}
	return s.alerts[i], nil
}

func (s *MemoryAlertStore) AppendAlert(ctx context.Context, alert Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[alert.ID]; exists {
		return fmt.Errorf("alert %s already exists", alert.ID)
	}
	s.index[alert.ID] = len(s.alerts)
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *MemoryAlertStore) ResolveAlert(ctx context.Context, id, action, notes string) (Alert, error) {
	if err := ValidateResolution(action); err != nil {
		return Alert{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Alert{}, fmt.Errorf("%w: alert %s", ErrNotFound, id)
	}
	resolved, err := s.alerts[i].ResolveInto(action, notes)
	if err != nil {
		return Alert{}, err
	}
	s.alerts[i] = resolved
	return resolved, nil
}
