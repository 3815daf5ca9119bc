package memory

import (
	"context"
	"sort"
	"sync"

	notifications "treasury-cloud/internal/notifications/domain"
)

// RuleRepository is an in-memory rule store for tests and local runs.
type RuleRepository struct {
	mu    sync.RWMutex
	rules map[string]map[string]notifications.Rule
}

// NewRuleRepository constructs an empty store.
func NewRuleRepository() *RuleRepository {
	return &RuleRepository{rules: make(map[string]map[string]notifications.Rule)}
}

// Upsert inserts or replaces the rule keyed by tenant and rule id.
func (r *RuleRepository) Upsert(_ context.Context, rule notifications.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.rules[rule.TenantID]
	if !ok {
		byID = make(map[string]notifications.Rule)
		r.rules[rule.TenantID] = byID
	}
	byID[rule.RuleID] = rule
	return nil
}

// ListByTenant returns all rules for the tenant ordered by creation time.
func (r *RuleRepository) ListByTenant(_ context.Context, tenantID string) ([]notifications.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []notifications.Rule
	for _, rule := range r.rules[tenantID] {
		result = append(result, rule)
	}
	sortRules(result)
	return result, nil
}

// ListEnabledByKind returns enabled rules subscribed to the kind.
func (r *RuleRepository) ListEnabledByKind(_ context.Context, tenantID, kind string) ([]notifications.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []notifications.Rule
	for _, rule := range r.rules[tenantID] {
		if rule.Enabled && rule.EventKind == kind {
			result = append(result, rule)
		}
	}
	sortRules(result)
	return result, nil
}

func sortRules(rules []notifications.Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].RuleID < rules[j].RuleID
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
}
