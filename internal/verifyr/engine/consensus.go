package engine

import "github.com/holiman/uint256"

// ResolveConsensus finalizes a report whose voting window has elapsed.
//
// The threshold is read from the current params, not from submission time.
// A ConsensusNotReached result leaves the report unchanged; since no vote can
// be admitted after close, retrying yields the same answer.
func (s *State) ResolveConsensus(env Env, reportID uint64) error {
	report, ok := s.Reports[reportID]
	if !ok {
		return ErrReportNotFound
	}
	// Still open counts as "window not elapsed", same kind as a late vote.
	if env.Now < report.CloseTime {
		return ErrVerificationClosed
	}
	if report.Status {
		return ErrInvalidStatus
	}
	if report.PositiveVotes < RequiredPositive(report.VerificationCount, s.Params.VerificationThreshold) {
		return ErrConsensusNotReached
	}
	report.Status = true
	return nil
}

// RequiredPositive is floor(count * threshold / 100), computed in 256 bits so
// the product cannot wrap.
func RequiredPositive(count, threshold uint64) uint64 {
	n := new(uint256.Int).Mul(uint256.NewInt(count), uint256.NewInt(threshold))
	n.Div(n, uint256.NewInt(100))
	if !n.IsUint64() {
		// Only reachable with threshold > 100, which the setters reject.
		return ^uint64(0)
	}
	return n.Uint64()
}

// Phase is the externally observable lifecycle position of a report.
type Phase string

const (
	PhaseOpen      Phase = "open"
	PhaseClosed    Phase = "closed"
	PhaseFinalized Phase = "finalized"
)

// PhaseAt reports where r sits at logical time now.
func (r Report) PhaseAt(now uint64) Phase {
	switch {
	case r.Status:
		return PhaseFinalized
	case now < r.CloseTime:
		return PhaseOpen
	default:
		return PhaseClosed
	}
}
