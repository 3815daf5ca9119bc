package treasury

import "fmt"

// RequiredApprovals computes the approval quorum frozen onto a transfer at
// submission time.
//
// An explicit override is taken as-is (validated to be at least 1). Without
// an override a regular transfer requires every current approver and an
// emergency transfer requires ceil(n/2). An emergency transfer then halves
// the quorum once more, so an emergency without override ends at
// ceil(ceil(n/2)/2). The result is never below 1.
func RequiredApprovals(approverCount int, isEmergency bool, override *int) (int, error) {
	var quorum int
	switch {
	case override != nil:
		if *override < 1 {
			return 0, fmt.Errorf("%w: explicit quorum must be at least 1", ErrInvalidInput)
		}
		quorum = *override
	case isEmergency:
		quorum = ceilHalf(approverCount)
	default:
		quorum = approverCount
	}
	if isEmergency {
		quorum = ceilHalf(quorum)
	}
	if quorum < 1 {
		quorum = 1
	}
	return quorum, nil
}

func ceilHalf(n int) int {
	return (n + 1) / 2
}
