package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
)

// Engine serializes operations over one State. Each call reads the clock
// once and runs to completion before the next one starts.
type Engine struct {
	mu     sync.Mutex
	state  *State
	stakes StakeOracle
	ledger Ledger
	clock  Clock
	log    *zap.SugaredLogger
}

// New wraps state with its collaborators. A nil state starts empty
// with DefaultParams.
func New(state *State, stakes StakeOracle, ledger Ledger, clock Clock) *Engine {
	if state == nil {
		state = NewState(DefaultParams())
	}
	state.ensureTables()
	return &Engine{
		state:  state,
		stakes: stakes,
		ledger: ledger,
		clock:  clock,
		log:    logger.L(),
	}
}

func (e *Engine) env(caller Principal) Env {
	return Env{Caller: caller, Now: e.clock.Now(), Stakes: e.stakes, Ledger: e.ledger}
}

func (e *Engine) SubmitReport(caller Principal, evidence []byte, category string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	env := e.env(caller)
	id, err := e.state.SubmitReport(env, evidence, category)
	if err != nil {
		e.log.Debugw("submit rejected", "caller", caller, "category", category, "err", err)
		return 0, err
	}
	e.log.Infow("report submitted", "id", id, "caller", caller, "category", category, "close_time", e.state.Reports[id].CloseTime)
	return id, nil
}

func (e *Engine) VerifyReport(caller Principal, reportID uint64, vote bool, stake uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	env := e.env(caller)
	if err := e.state.VerifyReport(env, reportID, vote, stake); err != nil {
		e.log.Debugw("vote rejected", "report", reportID, "caller", caller, "stake", stake, "now", env.Now, "err", err)
		return err
	}
	r := e.state.Reports[reportID]
	e.log.Infow("vote admitted", "report", reportID, "caller", caller, "vote", vote, "stake", stake,
		"count", r.VerificationCount, "total_stake", r.TotalStake)
	return nil
}

func (e *Engine) ResolveConsensus(caller Principal, reportID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	env := e.env(caller)
	if err := e.state.ResolveConsensus(env, reportID); err != nil {
		e.log.Debugw("resolve rejected", "report", reportID, "now", env.Now, "err", err)
		return err
	}
	e.log.Infow("report finalized", "report", reportID, "threshold", e.state.Params.VerificationThreshold)
	return nil
}

func (e *Engine) SetVerificationThreshold(caller Principal, v uint64) error {
	return e.setParam(caller, "verification_threshold", v, e.state.SetVerificationThreshold)
}

func (e *Engine) SetMinStakeAmount(caller Principal, v uint64) error {
	return e.setParam(caller, "min_stake_amount", v, e.state.SetMinStakeAmount)
}

func (e *Engine) SetPenaltyRate(caller Principal, v uint64) error {
	return e.setParam(caller, "penalty_rate", v, e.state.SetPenaltyRate)
}

func (e *Engine) SetRewardRate(caller Principal, v uint64) error {
	return e.setParam(caller, "reward_rate", v, e.state.SetRewardRate)
}

func (e *Engine) SetVerificationDuration(caller Principal, v uint64) error {
	return e.setParam(caller, "verification_duration", v, e.state.SetVerificationDuration)
}

// ParamNames lists the names Setter accepts.
var ParamNames = []string{
	"verification-threshold",
	"min-stake-amount",
	"penalty-rate",
	"reward-rate",
	"verification-duration",
}

// Setter returns the admin setter for a parameter name from ParamNames.
func (e *Engine) Setter(name string) (func(Principal, uint64) error, bool) {
	switch name {
	case "verification-threshold":
		return e.SetVerificationThreshold, true
	case "min-stake-amount":
		return e.SetMinStakeAmount, true
	case "penalty-rate":
		return e.SetPenaltyRate, true
	case "reward-rate":
		return e.SetRewardRate, true
	case "verification-duration":
		return e.SetVerificationDuration, true
	}
	return nil, false
}

func (e *Engine) setParam(caller Principal, name string, v uint64, set func(Env, uint64) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := set(e.env(caller), v); err != nil {
		e.log.Debugw("param rejected", "param", name, "value", v, "caller", caller, "err", err)
		return err
	}
	e.log.Infow("param updated", "param", name, "value", v)
	return nil
}

// Report returns a copy of a report.
func (e *Engine) Report(id uint64) (Report, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Report(id)
}

// Verification returns a copy of a vote record.
func (e *Engine) Verification(reportID uint64, voter Principal) (Verification, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Verification(reportID, voter)
}

func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Params
}

func (e *Engine) NextReportID() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.NextReportID
}

// Now returns the current logical time.
func (e *Engine) Now() uint64 { return e.clock.Now() }

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Do runs fn with the state while holding the operation lock, so callers can
// pair a read of the state with reads of the collaborators (snapshotting the
// ledger alongside the state, for instance) without an operation landing in
// between. fn must not call back into the Engine.
func (e *Engine) Do(fn func(s *State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.state)
}
