package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	notifications "treasury-cloud/internal/notifications/domain"
)

// RuleRepository stores notification rules in Postgres.
type RuleRepository struct {
	db *sql.DB
}

// NewRuleRepository constructs a repository.
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// Upsert inserts or replaces the rule keyed by tenant and rule id.
func (r *RuleRepository) Upsert(ctx context.Context, rule notifications.Rule) error {
	if r == nil || r.db == nil {
		return errors.New("rule repo: nil db")
	}
	if err := rule.Validate(); err != nil {
		return err
	}
	minAmount := decimal.NullDecimal{}
	if rule.MinAmount != nil {
		minAmount = decimal.NullDecimal{Decimal: *rule.MinAmount, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO notification_rules (
	tenant_id, rule_id, name, event_kind, min_amount, emergency_only, enabled,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (tenant_id, rule_id) DO UPDATE SET
	name = EXCLUDED.name,
	event_kind = EXCLUDED.event_kind,
	min_amount = EXCLUDED.min_amount,
	emergency_only = EXCLUDED.emergency_only,
	enabled = EXCLUDED.enabled,
	updated_at = EXCLUDED.updated_at`,
		rule.TenantID,
		rule.RuleID,
		rule.Name,
		rule.EventKind,
		minAmount,
		rule.EmergencyOnly,
		rule.Enabled,
		rule.CreatedAt.UTC(),
		rule.UpdatedAt.UTC(),
	)
	return err
}

// ListByTenant returns all rules for the tenant.
func (r *RuleRepository) ListByTenant(ctx context.Context, tenantID string) ([]notifications.Rule, error) {
	return r.list(ctx, `
SELECT tenant_id, rule_id, name, event_kind, min_amount, emergency_only, enabled,
	created_at, updated_at
FROM notification_rules
WHERE tenant_id = $1
ORDER BY created_at ASC, rule_id ASC`, tenantID)
}

// ListEnabledByKind returns enabled rules subscribed to the kind.
func (r *RuleRepository) ListEnabledByKind(ctx context.Context, tenantID, kind string) ([]notifications.Rule, error) {
	return r.list(ctx, `
SELECT tenant_id, rule_id, name, event_kind, min_amount, emergency_only, enabled,
	created_at, updated_at
FROM notification_rules
WHERE tenant_id = $1 AND event_kind = $2 AND enabled
ORDER BY created_at ASC, rule_id ASC`, tenantID, kind)
}

func (r *RuleRepository) list(ctx context.Context, query string, args ...any) ([]notifications.Rule, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("rule repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []notifications.Rule
	for rows.Next() {
		var rule notifications.Rule
		var minAmount decimal.NullDecimal
		if err := rows.Scan(
			&rule.TenantID,
			&rule.RuleID,
			&rule.Name,
			&rule.EventKind,
			&minAmount,
			&rule.EmergencyOnly,
			&rule.Enabled,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if minAmount.Valid {
			amount := minAmount.Decimal
			rule.MinAmount = &amount
		}
		rule.CreatedAt = rule.CreatedAt.UTC()
		rule.UpdatedAt = rule.UpdatedAt.UTC()
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
