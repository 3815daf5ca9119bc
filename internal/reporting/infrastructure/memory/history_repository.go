package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	reporting "treasury-cloud/internal/reporting/domain"
)

// HistoryRepository is an in-memory history read model.
type HistoryRepository struct {
	mu      sync.RWMutex
	entries map[string]reporting.HistoryEntry
}

// NewHistoryRepository constructs a repository.
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{entries: make(map[string]reporting.HistoryEntry)}
}

// Append stores one entry keyed by event id.
func (r *HistoryRepository) Append(ctx context.Context, entry reporting.HistoryEntry) error {
	_ = ctx
	if err := entry.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.entries[entry.EventID]; seen {
		return nil
	}
	entry.OccurredAt = entry.OccurredAt.UTC()
	r.entries[entry.EventID] = entry
	return nil
}

// List returns entries matching the filter ordered by occurrence.
func (r *HistoryRepository) List(ctx context.Context, filter reporting.HistoryFilter) ([]reporting.HistoryEntry, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []reporting.HistoryEntry
	for _, entry := range r.entries {
		if entry.TenantID != filter.TenantID {
			continue
		}
		if filter.TransferID != "" && entry.TransferID != filter.TransferID {
			continue
		}
		if filter.Kind != "" && entry.Kind != filter.Kind {
			continue
		}
		if !filter.From.IsZero() && entry.OccurredAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !entry.OccurredAt.Before(filter.To) {
			continue
		}
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OccurredAt.Equal(result[j].OccurredAt) {
			return result[i].EventID < result[j].EventID
		}
		return result[i].OccurredAt.Before(result[j].OccurredAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Summary returns executed totals for the tenant.
func (r *HistoryRepository) Summary(ctx context.Context, tenantID string) (reporting.HistorySummary, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := reporting.HistorySummary{TotalTransferred: decimal.Zero}
	for _, entry := range r.entries {
		if entry.TenantID != tenantID || entry.Kind != reporting.KindExecuted {
			continue
		}
		summary.ExecutedCount++
		summary.TotalTransferred = summary.TotalTransferred.Add(entry.Amount)
	}
	return summary, nil
}
