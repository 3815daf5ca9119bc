package treasury

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TreasurySnapshot is the persisted representation of a treasury aggregate.
// Repositories exchange snapshots; everything else works on the aggregate.
type TreasurySnapshot struct {
	TenantID          string
	Owner             string
	TotalBalance      decimal.Decimal
	Allocation        FundAllocation
	Stats             Stats
	MaxTransferAmount decimal.Decimal
	Cooldown          time.Duration
	Shutdown          bool
	Version           int64
	Pending           []*TransferRecord
}

// Snapshot captures the aggregate state for persistence.
func (t *Treasury) Snapshot() TreasurySnapshot {
	pending := make([]*TransferRecord, 0, len(t.pending))
	for _, record := range t.pending {
		pending = append(pending, record.Clone())
	}
	return TreasurySnapshot{
		TenantID:          t.tenantID,
		Owner:             t.owner,
		TotalBalance:      t.totalBalance,
		Allocation:        t.allocation,
		Stats:             t.stats,
		MaxTransferAmount: t.maxTransferAmount,
		Cooldown:          t.cooldown,
		Shutdown:          t.shutdown,
		Version:           t.version,
		Pending:           pending,
	}
}

// RehydrateTreasury rebuilds an aggregate from a persisted snapshot.
func RehydrateTreasury(snap TreasurySnapshot) (*Treasury, error) {
	if snap.TenantID == "" {
		return nil, fmt.Errorf("%w: empty tenant id", ErrInvalidInput)
	}
	if snap.Owner == "" {
		return nil, fmt.Errorf("%w: empty owner account", ErrInvalidInput)
	}
	pending := make(map[string]*TransferRecord, len(snap.Pending))
	for _, record := range snap.Pending {
		pending[record.TransferID] = record.Clone()
	}
	return &Treasury{
		tenantID:          snap.TenantID,
		owner:             snap.Owner,
		pending:           pending,
		totalBalance:      snap.TotalBalance,
		allocation:        snap.Allocation,
		stats:             snap.Stats,
		maxTransferAmount: snap.MaxTransferAmount,
		cooldown:          snap.Cooldown,
		shutdown:          snap.Shutdown,
		version:           snap.Version,
	}, nil
}
