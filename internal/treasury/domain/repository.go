package treasury

import "context"

// Repository persists treasury aggregates as whole snapshots. Save is
// all-or-nothing and guarded by the snapshot version, so a call that fails
// mid-way leaves no partial state behind.
type Repository interface {
	FindByTenant(ctx context.Context, tenantID string) (*Treasury, error)
	Save(ctx context.Context, aggregate *Treasury) error
}

// ApprovalSet is the external registry of accounts allowed to act on a
// tenant's treasury. It is consulted fresh on every operation; results must
// not be cached.
type ApprovalSet interface {
	IsAuthorized(ctx context.Context, tenantID, account string) (bool, error)
	ApproverCount(ctx context.Context, tenantID string) (int, error)
}
