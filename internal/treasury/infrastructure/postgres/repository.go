package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	treasury "treasury-cloud/internal/treasury/domain"
)

// TreasuryRepository persists treasury aggregates as whole snapshots: the
// treasuries row carries the ledger, stats and policy, treasury_transfers
// carries the pending index. Save writes both inside one transaction guarded
// by the snapshot version.
type TreasuryRepository struct {
	db *sql.DB
}

// NewTreasuryRepository constructs a repository.
func NewTreasuryRepository(db *sql.DB) *TreasuryRepository {
	return &TreasuryRepository{db: db}
}

// FindByTenant loads the tenant's treasury with its pending index.
func (r *TreasuryRepository) FindByTenant(ctx context.Context, tenantID string) (*treasury.Treasury, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("treasury repo: nil db")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("%w: empty tenant id", treasury.ErrInvalidInput)
	}

	var snap treasury.TreasurySnapshot
	var cooldownSeconds int64
	row := r.db.QueryRowContext(ctx, `
SELECT tenant_id, owner_account, total_balance, insurance_pct, operational_pct, emergency_pct,
	pending_transfers, executed_transfers, total_transferred,
	max_transfer_amount, cooldown_seconds, shutdown, version
FROM treasuries
WHERE tenant_id = $1`, tenantID)
	if err := row.Scan(
		&snap.TenantID,
		&snap.Owner,
		&snap.TotalBalance,
		&snap.Allocation.InsurancePct,
		&snap.Allocation.OperationalPct,
		&snap.Allocation.EmergencyPct,
		&snap.Stats.PendingTransfers,
		&snap.Stats.ExecutedTransfers,
		&snap.Stats.TotalTransferred,
		&snap.MaxTransferAmount,
		&cooldownSeconds,
		&snap.Shutdown,
		&snap.Version,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, treasury.ErrTreasuryNotFound
		}
		return nil, err
	}
	snap.Cooldown = time.Duration(cooldownSeconds) * time.Second

	rows, err := r.db.QueryContext(ctx, `
SELECT transfer_id, submitter, destination, amount, reason, approvals, required_approvals,
	approvers, created_at, is_emergency
FROM treasury_transfers
WHERE tenant_id = $1
ORDER BY created_at ASC, transfer_id ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		record := &treasury.TransferRecord{Status: treasury.StatusPending}
		var approvers []byte
		if err := rows.Scan(
			&record.TransferID,
			&record.Submitter,
			&record.Destination,
			&record.Amount,
			&record.Reason,
			&record.Approvals,
			&record.RequiredApprovals,
			&approvers,
			&record.CreatedAt,
			&record.IsEmergency,
		); err != nil {
			return nil, err
		}
		if len(approvers) > 0 {
			if err := json.Unmarshal(approvers, &record.Approvers); err != nil {
				return nil, fmt.Errorf("treasury repo: decode approvers: %w", err)
			}
		}
		record.CreatedAt = record.CreatedAt.UTC()
		snap.Pending = append(snap.Pending, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return treasury.RehydrateTreasury(snap)
}

// Save writes the snapshot. New aggregates insert; existing ones update with
// a version check so concurrent writers cannot both commit.
func (r *TreasuryRepository) Save(ctx context.Context, aggregate *treasury.Treasury) error {
	if r == nil || r.db == nil {
		return errors.New("treasury repo: nil db")
	}
	if aggregate == nil {
		return treasury.ErrNilAggregate
	}

	snap := aggregate.Snapshot()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	cooldownSeconds := int64(snap.Cooldown / time.Second)
	if aggregate.IsNew() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO treasuries (
	tenant_id, owner_account, total_balance, insurance_pct, operational_pct, emergency_pct,
	pending_transfers, executed_transfers, total_transferred,
	max_transfer_amount, cooldown_seconds, shutdown, version, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())`,
			snap.TenantID, snap.Owner, snap.TotalBalance,
			snap.Allocation.InsurancePct, snap.Allocation.OperationalPct, snap.Allocation.EmergencyPct,
			snap.Stats.PendingTransfers, snap.Stats.ExecutedTransfers, snap.Stats.TotalTransferred,
			snap.MaxTransferAmount, cooldownSeconds, snap.Shutdown, snap.Version+1,
		); err != nil {
			return fmt.Errorf("treasury repo: insert: %w", err)
		}
	} else {
		result, err := tx.ExecContext(ctx, `
UPDATE treasuries
SET owner_account = $2, total_balance = $3, insurance_pct = $4, operational_pct = $5,
	emergency_pct = $6, pending_transfers = $7, executed_transfers = $8,
	total_transferred = $9, max_transfer_amount = $10, cooldown_seconds = $11,
	shutdown = $12, version = $13, updated_at = now()
WHERE tenant_id = $1 AND version = $14`,
			snap.TenantID, snap.Owner, snap.TotalBalance,
			snap.Allocation.InsurancePct, snap.Allocation.OperationalPct, snap.Allocation.EmergencyPct,
			snap.Stats.PendingTransfers, snap.Stats.ExecutedTransfers, snap.Stats.TotalTransferred,
			snap.MaxTransferAmount, cooldownSeconds, snap.Shutdown, snap.Version+1, snap.Version,
		)
		if err != nil {
			return fmt.Errorf("treasury repo: update: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return treasury.ErrVersionConflict
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM treasury_transfers WHERE tenant_id = $1`, snap.TenantID); err != nil {
		return fmt.Errorf("treasury repo: clear pending index: %w", err)
	}
	for _, record := range snap.Pending {
		approvers, err := json.Marshal(record.Approvers)
		if err != nil {
			return fmt.Errorf("treasury repo: encode approvers: %w", err)
		}
		if record.Approvers == nil {
			approvers = []byte("[]")
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO treasury_transfers (
	tenant_id, transfer_id, submitter, destination, amount, reason,
	approvals, required_approvals, approvers, created_at, is_emergency
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			snap.TenantID, record.TransferID, record.Submitter, record.Destination,
			record.Amount, record.Reason, record.Approvals, record.RequiredApprovals,
			approvers, record.CreatedAt, record.IsEmergency,
		); err != nil {
			return fmt.Errorf("treasury repo: insert pending transfer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	aggregate.MarkPersisted()
	return nil
}
