package engine

// StakeOracle answers whether a principal is registered: a positive stake
// is the only registration fact the engine consults.
type StakeOracle interface {
	StakeOf(p Principal) uint64
}

// Ledger is the token ledger holding caller balances and escrow.
// Transfer must either move the full amount and record it, or do nothing.
type Ledger interface {
	BalanceOf(p Principal) uint64
	Transfer(amount uint64, from, to Principal) error
}

// Env carries everything an operation needs from outside the state: the
// invoking identity, the logical time and the external collaborators.
type Env struct {
	Caller Principal
	Now    uint64
	Stakes StakeOracle
	Ledger Ledger
}

// State is the complete contract storage. Every exported method is one
// operation: it validates fully before its first write, so a returned error
// means nothing changed.
type State struct {
	Params        Params                           `json:"params"`
	NextReportID  uint64                           `json:"next_report_id"`
	Reports       map[uint64]*Report               `json:"reports"`
	Verifications map[VerificationKey]Verification `json:"verifications"`
}

// NewState returns empty storage configured with params.
func NewState(params Params) *State {
	return &State{
		Params:        params,
		Reports:       make(map[uint64]*Report),
		Verifications: make(map[VerificationKey]Verification),
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := &State{
		Params:        s.Params,
		NextReportID:  s.NextReportID,
		Reports:       make(map[uint64]*Report, len(s.Reports)),
		Verifications: make(map[VerificationKey]Verification, len(s.Verifications)),
	}
	for id, r := range s.Reports {
		cp := *r
		c.Reports[id] = &cp
	}
	for k, v := range s.Verifications {
		c.Verifications[k] = v
	}
	return c
}

// ensureTables makes a state decoded from an empty snapshot usable.
func (s *State) ensureTables() {
	if s.Reports == nil {
		s.Reports = make(map[uint64]*Report)
	}
	if s.Verifications == nil {
		s.Verifications = make(map[VerificationKey]Verification)
	}
}
