package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	treasury "treasury-cloud/internal/treasury/domain"
)

// ApprovalSetRepository stores the per-tenant approver roster. The service
// consults it on every submit and approve, so membership changes take effect
// on the next call without any cache to invalidate.
type ApprovalSetRepository struct {
	db *sql.DB
}

// NewApprovalSetRepository constructs a repository.
func NewApprovalSetRepository(db *sql.DB) *ApprovalSetRepository {
	return &ApprovalSetRepository{db: db}
}

// RegisterApprovers adds accounts to the tenant's roster. Existing entries
// are left untouched.
func (r *ApprovalSetRepository) RegisterApprovers(ctx context.Context, tenantID string, accounts []string) error {
	if r == nil || r.db == nil {
		return errors.New("approval set repo: nil db")
	}
	if tenantID == "" {
		return fmt.Errorf("%w: empty tenant id", treasury.ErrInvalidInput)
	}
	for _, account := range accounts {
		if account == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `
INSERT INTO treasury_approvers (tenant_id, account, added_at)
VALUES ($1, $2, now())
ON CONFLICT (tenant_id, account) DO NOTHING`, tenantID, account); err != nil {
			return fmt.Errorf("approval set repo: register: %w", err)
		}
	}
	return nil
}

// IsAuthorized reports whether the account is on the tenant's roster.
func (r *ApprovalSetRepository) IsAuthorized(ctx context.Context, tenantID, account string) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("approval set repo: nil db")
	}
	var one int
	err := r.db.QueryRowContext(ctx, `
SELECT 1 FROM treasury_approvers WHERE tenant_id = $1 AND account = $2`, tenantID, account).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ApproverCount returns the roster size for the tenant.
func (r *ApprovalSetRepository) ApproverCount(ctx context.Context, tenantID string) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("approval set repo: nil db")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM treasury_approvers WHERE tenant_id = $1`, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
