package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	reporting "treasury-cloud/internal/reporting/domain"
)

// HistoryRepository stores the transfer history read model in Postgres.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository constructs a repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts one entry. Replayed event ids are ignored so projection
// retries stay idempotent.
func (r *HistoryRepository) Append(ctx context.Context, entry reporting.HistoryEntry) error {
	if r == nil || r.db == nil {
		return errors.New("history repo: nil db")
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO treasury_transfer_history (
	event_id, tenant_id, transfer_id, kind, actor, destination, amount,
	reason, approvals, required_approvals, is_emergency, note, occurred_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (event_id) DO NOTHING`,
		entry.EventID,
		entry.TenantID,
		entry.TransferID,
		entry.Kind,
		entry.Actor,
		entry.Destination,
		entry.Amount,
		entry.Reason,
		entry.Approvals,
		entry.RequiredApprovals,
		entry.IsEmergency,
		entry.Note,
		entry.OccurredAt.UTC(),
	)
	return err
}

// List returns entries matching the filter ordered by occurrence.
func (r *HistoryRepository) List(ctx context.Context, filter reporting.HistoryFilter) ([]reporting.HistoryEntry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("history repo: nil db")
	}
	if filter.TenantID == "" {
		return nil, errors.New("history repo: missing tenant id")
	}
	query := `
SELECT event_id, tenant_id, transfer_id, kind, actor, destination, amount,
	reason, approvals, required_approvals, is_emergency, note, occurred_at
FROM treasury_transfer_history
WHERE tenant_id = $1`
	args := []any{filter.TenantID}
	if filter.TransferID != "" {
		args = append(args, filter.TransferID)
		query += fmt.Sprintf(" AND transfer_id = $%d", len(args))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From.UTC())
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To.UTC())
		query += fmt.Sprintf(" AND occurred_at < $%d", len(args))
	}
	query += " ORDER BY occurred_at ASC, event_id ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reporting.HistoryEntry
	for rows.Next() {
		var entry reporting.HistoryEntry
		if err := rows.Scan(
			&entry.EventID,
			&entry.TenantID,
			&entry.TransferID,
			&entry.Kind,
			&entry.Actor,
			&entry.Destination,
			&entry.Amount,
			&entry.Reason,
			&entry.Approvals,
			&entry.RequiredApprovals,
			&entry.IsEmergency,
			&entry.Note,
			&entry.OccurredAt,
		); err != nil {
			return nil, err
		}
		entry.OccurredAt = entry.OccurredAt.UTC()
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Summary returns executed totals for the tenant.
func (r *HistoryRepository) Summary(ctx context.Context, tenantID string) (reporting.HistorySummary, error) {
	if r == nil || r.db == nil {
		return reporting.HistorySummary{}, errors.New("history repo: nil db")
	}
	if tenantID == "" {
		return reporting.HistorySummary{}, errors.New("history repo: missing tenant id")
	}
	var summary reporting.HistorySummary
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(amount), 0)
FROM treasury_transfer_history
WHERE tenant_id = $1 AND kind = $2`, tenantID, reporting.KindExecuted).
		Scan(&summary.ExecutedCount, &summary.TotalTransferred)
	if err != nil {
		return reporting.HistorySummary{}, err
	}
	return summary, nil
}
