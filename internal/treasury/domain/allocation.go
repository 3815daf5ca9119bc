package treasury

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FundAllocation is the percentage split of the pool into derived sub-funds.
// The three percentages must sum to exactly 100.
type FundAllocation struct {
	InsurancePct   int `json:"insurance_pct"`
	OperationalPct int `json:"operational_pct"`
	EmergencyPct   int `json:"emergency_pct"`
}

// DefaultAllocation returns the standard 60/30/10 split.
func DefaultAllocation() FundAllocation {
	return FundAllocation{InsurancePct: 60, OperationalPct: 30, EmergencyPct: 10}
}

// Validate checks the allocation percentages.
func (a FundAllocation) Validate() error {
	if a.InsurancePct < 0 || a.OperationalPct < 0 || a.EmergencyPct < 0 {
		return fmt.Errorf("%w: allocation percentages must not be negative", ErrInvalidInput)
	}
	if a.InsurancePct+a.OperationalPct+a.EmergencyPct != 100 {
		return fmt.Errorf("%w: allocation percentages must sum to 100", ErrInvalidInput)
	}
	return nil
}

// Split computes the derived sub-fund balances for a total. Each share is
// floor(total * pct / 100); the three shares may undershoot the total by up
// to 2 units, never exceed it. Sub-funds are a view over the total, not
// independently stored state.
func (a FundAllocation) Split(total decimal.Decimal) (insurance, operational, emergency decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	insurance = total.Mul(decimal.NewFromInt(int64(a.InsurancePct))).Div(hundred).Floor()
	operational = total.Mul(decimal.NewFromInt(int64(a.OperationalPct))).Div(hundred).Floor()
	emergency = total.Mul(decimal.NewFromInt(int64(a.EmergencyPct))).Div(hundred).Floor()
	return insurance, operational, emergency
}
