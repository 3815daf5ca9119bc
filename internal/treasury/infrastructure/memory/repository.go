package memory

import (
	"context"
	"sync"

	"treasury-cloud/internal/treasury/domain"
)

// TreasuryRepository is an in-memory repository for treasury aggregates.
type TreasuryRepository struct {
	mu   sync.RWMutex
	data map[string]treasury.TreasurySnapshot
}

// NewTreasuryRepository constructs a repository.
func NewTreasuryRepository() *TreasuryRepository {
	return &TreasuryRepository{data: make(map[string]treasury.TreasurySnapshot)}
}

// FindByTenant loads the tenant's treasury.
func (r *TreasuryRepository) FindByTenant(ctx context.Context, tenantID string) (*treasury.Treasury, error) {
	_ = ctx
	r.mu.RLock()
	snap, ok := r.data[tenantID]
	r.mu.RUnlock()
	if !ok {
		return nil, treasury.ErrTreasuryNotFound
	}
	return treasury.RehydrateTreasury(snap)
}

// Save persists the aggregate snapshot, guarding against concurrent writers
// with the snapshot version.
func (r *TreasuryRepository) Save(ctx context.Context, aggregate *treasury.Treasury) error {
	_ = ctx
	if aggregate == nil {
		return treasury.ErrNilAggregate
	}

	snap := aggregate.Snapshot()
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.data[snap.TenantID]
	if exists && stored.Version != snap.Version {
		return treasury.ErrVersionConflict
	}
	snap.Version++
	r.data[snap.TenantID] = snap

	aggregate.MarkPersisted()
	return nil
}
