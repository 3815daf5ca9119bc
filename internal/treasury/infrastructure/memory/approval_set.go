package memory

import (
	"context"
	"sync"
)

// ApprovalSetRepository is an in-memory approver registry.
type ApprovalSetRepository struct {
	mu   sync.RWMutex
	data map[string]map[string]bool
}

// NewApprovalSetRepository constructs a registry.
func NewApprovalSetRepository() *ApprovalSetRepository {
	return &ApprovalSetRepository{data: make(map[string]map[string]bool)}
}

// RegisterApprovers adds accounts to the tenant's approver set.
func (r *ApprovalSetRepository) RegisterApprovers(ctx context.Context, tenantID string, accounts []string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.data[tenantID]
	if !ok {
		set = make(map[string]bool)
		r.data[tenantID] = set
	}
	for _, account := range accounts {
		if account != "" {
			set[account] = true
		}
	}
	return nil
}

// IsAuthorized reports whether the account is in the tenant's approver set.
func (r *ApprovalSetRepository) IsAuthorized(ctx context.Context, tenantID, account string) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data[tenantID][account], nil
}

// ApproverCount returns the size of the tenant's approver set.
func (r *ApprovalSetRepository) ApproverCount(ctx context.Context, tenantID string) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data[tenantID]), nil
}
