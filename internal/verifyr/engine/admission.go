package engine

import (
	"fmt"
	"math"
)

// VerifyReport admits the caller's staked vote on a report.
//
// Checks run in a fixed order and the first failure wins. On success the
// stake is escrowed to ContractPrincipal, the vote record is created and the
// report tallies advance by one vote.
func (s *State) VerifyReport(env Env, reportID uint64, vote bool, stake uint64) error {
	report, ok := s.Reports[reportID]
	if !ok {
		return ErrReportNotFound
	}
	// Report 0 exists but is rejected here; both paths stay observable.
	if reportID == 0 {
		return ErrInvalidReportID
	}
	if stake < s.Params.MinStakeAmount || stake == 0 {
		return ErrInvalidStakeAmount
	}
	if env.Stakes == nil || env.Stakes.StakeOf(env.Caller) == 0 {
		return ErrNotRegisteredUser
	}
	key := VerificationKey{ReportID: reportID, Voter: env.Caller}
	if _, dup := s.Verifications[key]; dup {
		return ErrAlreadyVerified
	}
	if env.Now >= report.CloseTime {
		return ErrVerificationClosed
	}
	if env.Ledger == nil || env.Ledger.BalanceOf(env.Caller) < stake {
		return ErrInsufficientStake
	}
	if report.TotalStake > math.MaxUint64-stake {
		return ErrInvalidStakeAmount
	}

	if err := env.Ledger.Transfer(stake, env.Caller, ContractPrincipal); err != nil {
		return fmt.Errorf("%w: escrow: %v", ErrInsufficientStake, err)
	}
	s.Verifications[key] = Verification{Vote: vote, StakeAmount: stake, Timestamp: env.Now}
	report.VerificationCount++
	if vote {
		report.PositiveVotes++
	} else {
		report.NegativeVotes++
	}
	report.TotalStake += stake
	return nil
}

// Verification returns the vote voter cast on a report, if any.
func (s *State) Verification(reportID uint64, voter Principal) (Verification, bool) {
	v, ok := s.Verifications[VerificationKey{ReportID: reportID, Voter: voter}]
	return v, ok
}
