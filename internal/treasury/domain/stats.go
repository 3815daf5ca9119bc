package treasury

import "github.com/shopspring/decimal"

// Stats tracks treasury activity counters. The counters are derived solely
// from transfer transitions inside the aggregate and always match what a
// full scan of the records would produce.
type Stats struct {
	PendingTransfers  int64           `json:"pending_transfers"`
	ExecutedTransfers int64           `json:"executed_transfers"`
	TotalTransferred  decimal.Decimal `json:"total_transferred"`
}

// NewStats returns zeroed counters.
func NewStats() Stats {
	return Stats{TotalTransferred: decimal.Zero}
}
