// Package sim drives a seeded synthetic workload through an in-memory
// engine and reports what the admission and consensus rules did with it.
package sim

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/ledger"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
)

var categories = []string{
	string(engine.CategoryInfrastructure),
	string(engine.CategoryCorruption),
	string(engine.CategoryEnvironment),
}

// Summary is the outcome of one run.
type Summary struct {
	Seed      int64          `json:"seed"`
	Submitted int            `json:"submitted"`
	Admitted  int            `json:"admitted"`
	Rejected  map[string]int `json:"rejected"`
	Finalized int            `json:"finalized"`
	// Unresolved counts reports whose resolution was rejected.
	Unresolved int            `json:"unresolved"`
	Resolution map[string]int `json:"resolution_errors"`
	Escrowed   uint64         `json:"escrowed"`
	Minted     uint64         `json:"minted"`
	Height     uint64         `json:"height"`
	// Conserved is true when total balances equal total minted and the
	// escrow account holds exactly the stake tallied on reports.
	Conserved bool `json:"conserved"`
}

// Run executes sc and returns its summary. The same scenario always yields
// the same summary.
func Run(sc Scenario) (*Summary, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	log := logger.L()
	faker := gofakeit.New(uint64(sc.Seed))

	params := sc.Params.apply(engine.DefaultParams())
	led := ledger.NewMemory()
	stakes := ledger.NewRegistry()
	clock := engine.NewManualClock(0)
	eng := engine.New(engine.NewState(params), stakes, led, clock)

	sum := &Summary{
		Seed:       sc.Seed,
		Rejected:   map[string]int{},
		Resolution: map[string]int{},
	}

	voters := make([]engine.Principal, sc.Voters)
	for i := range voters {
		p := engine.Principal(fmt.Sprintf("%s-%d", faker.Username(), i))
		voters[i] = p
		if sc.Funding > 0 {
			if err := led.Mint(p, sc.Funding); err != nil {
				return nil, fmt.Errorf("fund %s: %w", p, err)
			}
			sum.Minted += sc.Funding
		}
		if faker.Float64Range(0, 1) < sc.UnregisteredRatio {
			continue
		}
		if err := stakes.Register(p, uint64(faker.Number(1, 1000))); err != nil {
			return nil, fmt.Errorf("register %s: %w", p, err)
		}
	}

	ids := make([]uint64, 0, sc.Reports)
	for i := 0; i < sc.Reports; i++ {
		submitter := voters[faker.Number(0, len(voters)-1)]
		evidence := sha256.Sum256([]byte(faker.UUID()))
		category := categories[faker.Number(0, len(categories)-1)]
		id, err := eng.SubmitReport(submitter, evidence[:], category)
		if err != nil {
			return nil, fmt.Errorf("submit report %d: %w", i, err)
		}
		ids = append(ids, id)
		sum.Submitted++
	}

	for _, id := range ids {
		for j := 0; j < sc.VotesPerReport; j++ {
			voter := voters[faker.Number(0, len(voters)-1)]
			vote := faker.Float64Range(0, 1) < sc.SupportRatio
			stake := uint64(faker.Number(int(sc.StakeMin), int(sc.StakeMax)))
			if err := eng.VerifyReport(voter, id, vote, stake); err != nil {
				sum.Rejected[errorName(err)]++
				continue
			}
			sum.Admitted++
		}
	}

	if _, err := clock.Advance(params.VerificationDuration); err != nil {
		return nil, fmt.Errorf("close voting windows: %w", err)
	}
	sum.Height = clock.Now()
	for _, id := range ids {
		if err := eng.ResolveConsensus(params.Admin, id); err != nil {
			sum.Unresolved++
			sum.Resolution[errorName(err)]++
			continue
		}
		sum.Finalized++
	}

	sum.Escrowed = led.BalanceOf(engine.ContractPrincipal)
	sum.Conserved = conserved(eng, led, ids, sum.Minted)
	log.Infow("simulation finished", "seed", sc.Seed, "submitted", sum.Submitted,
		"admitted", sum.Admitted, "finalized", sum.Finalized, "conserved", sum.Conserved)
	return sum, nil
}

func conserved(eng *engine.Engine, led *ledger.Memory, ids []uint64, minted uint64) bool {
	var total uint64
	for _, b := range led.Export().Balances {
		total += b
	}
	var tallied uint64
	for _, id := range ids {
		r, _ := eng.Report(id)
		tallied += r.TotalStake
	}
	return total == minted && tallied == led.BalanceOf(engine.ContractPrincipal)
}

func errorName(err error) string {
	var e *engine.Error
	if errors.As(err, &e) {
		return e.Name
	}
	return err.Error()
}
