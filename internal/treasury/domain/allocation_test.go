package treasury

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFundAllocation_ValidateRejectsBadSum(t *testing.T) {
	alloc := FundAllocation{InsurancePct: 50, OperationalPct: 30, EmergencyPct: 10}
	if err := alloc.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFundAllocation_ValidateRejectsNegative(t *testing.T) {
	alloc := FundAllocation{InsurancePct: 120, OperationalPct: -30, EmergencyPct: 10}
	if err := alloc.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFundAllocation_ValidateAcceptsDefault(t *testing.T) {
	if err := DefaultAllocation().Validate(); err != nil {
		t.Fatalf("default allocation: %v", err)
	}
}

func TestFundAllocation_SplitFloorsEachShare(t *testing.T) {
	insurance, operational, emergency := DefaultAllocation().Split(decimal.NewFromInt(101))
	if !insurance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected insurance 60, got %s", insurance)
	}
	if !operational.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected operational 30, got %s", operational)
	}
	if !emergency.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected emergency 10, got %s", emergency)
	}
}

func TestFundAllocation_SplitDriftBounded(t *testing.T) {
	alloc := FundAllocation{InsurancePct: 33, OperationalPct: 33, EmergencyPct: 34}
	two := decimal.NewFromInt(2)
	for total := int64(0); total <= 500; total++ {
		totalDec := decimal.NewFromInt(total)
		insurance, operational, emergency := alloc.Split(totalDec)
		sum := insurance.Add(operational).Add(emergency)
		if sum.GreaterThan(totalDec) {
			t.Fatalf("split of %d exceeds total: %s", total, sum)
		}
		if totalDec.Sub(sum).GreaterThan(two) {
			t.Fatalf("split of %d drifts by more than 2: %s", total, totalDec.Sub(sum))
		}
	}
}
