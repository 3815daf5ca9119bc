package treasury

import (
	"errors"
	"testing"
)

func TestRequiredApprovals_RegularRequiresAllApprovers(t *testing.T) {
	quorum, err := RequiredApprovals(5, false, nil)
	if err != nil {
		t.Fatalf("required approvals: %v", err)
	}
	if quorum != 5 {
		t.Fatalf("expected 5, got %d", quorum)
	}
}

func TestRequiredApprovals_EmergencyCompoundsHalving(t *testing.T) {
	quorum, err := RequiredApprovals(5, true, nil)
	if err != nil {
		t.Fatalf("required approvals: %v", err)
	}
	// ceil(5/2) = 3, halved again to ceil(3/2) = 2.
	if quorum != 2 {
		t.Fatalf("expected 2, got %d", quorum)
	}

	quorum, err = RequiredApprovals(4, true, nil)
	if err != nil {
		t.Fatalf("required approvals: %v", err)
	}
	if quorum != 1 {
		t.Fatalf("expected 1, got %d", quorum)
	}
}

func TestRequiredApprovals_OverrideTakenAsIs(t *testing.T) {
	override := 3
	quorum, err := RequiredApprovals(10, false, &override)
	if err != nil {
		t.Fatalf("required approvals: %v", err)
	}
	if quorum != 3 {
		t.Fatalf("expected 3, got %d", quorum)
	}
}

func TestRequiredApprovals_OverrideHalvedOnceForEmergency(t *testing.T) {
	override := 5
	quorum, err := RequiredApprovals(10, true, &override)
	if err != nil {
		t.Fatalf("required approvals: %v", err)
	}
	if quorum != 3 {
		t.Fatalf("expected 3, got %d", quorum)
	}
}

func TestRequiredApprovals_OverrideBelowOneRejected(t *testing.T) {
	override := 0
	if _, err := RequiredApprovals(10, false, &override); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRequiredApprovals_NeverBelowOne(t *testing.T) {
	quorum, err := RequiredApprovals(0, false, nil)
	if err != nil {
		t.Fatalf("required approvals: %v", err)
	}
	if quorum != 1 {
		t.Fatalf("expected 1, got %d", quorum)
	}

	quorum, err = RequiredApprovals(1, true, nil)
	if err != nil {
		t.Fatalf("required approvals: %v", err)
	}
	if quorum != 1 {
		t.Fatalf("expected 1, got %d", quorum)
	}
}
