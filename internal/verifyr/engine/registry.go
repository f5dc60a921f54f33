package engine

import "math"

// SubmitReport registers a new open report and returns its id.
// Ids start at 0 and are never reused. No collateral moves at submission.
// A voting window that would end past math.MaxUint64 is rejected before an
// id is taken.
func (s *State) SubmitReport(env Env, evidence []byte, category string) (uint64, error) {
	hash, err := ParseHash(evidence)
	if err != nil {
		return 0, err
	}
	cat, err := ParseCategory(category)
	if err != nil {
		return 0, err
	}
	if env.Now > math.MaxUint64-s.Params.VerificationDuration {
		return 0, ErrInvalidTimestamp
	}
	s.ensureTables()

	id := s.NextReportID
	s.Reports[id] = &Report{
		ID:           id,
		Submitter:    env.Caller,
		EvidenceHash: hash,
		Category:     cat,
		CreatedAt:    env.Now,
		CloseTime:    env.Now + s.Params.VerificationDuration,
	}
	s.NextReportID++
	return id, nil
}

// Report returns a copy of the report with the given id.
func (s *State) Report(id uint64) (Report, bool) {
	r, ok := s.Reports[id]
	if !ok {
		return Report{}, false
	}
	return *r, true
}
