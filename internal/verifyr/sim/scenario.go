package sim

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
)

// Scenario describes one simulated workload, parsed from YAML.
type Scenario struct {
	Seed           int64   `yaml:"seed"`
	Reports        int     `yaml:"reports"`
	Voters         int     `yaml:"voters"`
	VotesPerReport int     `yaml:"votes_per_report"`
	SupportRatio   float64 `yaml:"support_ratio"`
	// UnregisteredRatio is the share of voters that never register a stake.
	UnregisteredRatio float64 `yaml:"unregistered_ratio"`
	StakeMin          uint64  `yaml:"stake_min"`
	StakeMax          uint64  `yaml:"stake_max"`
	Funding           uint64  `yaml:"funding"`

	Params ParamOverrides `yaml:"params"`
}

// ParamOverrides replaces default params field by field. Zero keeps the
// default.
type ParamOverrides struct {
	VerificationThreshold uint64 `yaml:"verification_threshold"`
	MinStakeAmount        uint64 `yaml:"min_stake_amount"`
	VerificationDuration  uint64 `yaml:"verification_duration"`
}

func (o ParamOverrides) apply(p engine.Params) engine.Params {
	if o.VerificationThreshold != 0 {
		p.VerificationThreshold = o.VerificationThreshold
	}
	if o.MinStakeAmount != 0 {
		p.MinStakeAmount = o.MinStakeAmount
	}
	if o.VerificationDuration != 0 {
		p.VerificationDuration = o.VerificationDuration
	}
	return p
}

// DefaultScenario is a small mixed workload.
func DefaultScenario() Scenario {
	return Scenario{
		Seed:              1,
		Reports:           10,
		Voters:            25,
		VotesPerReport:    8,
		SupportRatio:      0.6,
		UnregisteredRatio: 0.1,
		StakeMin:          50,
		StakeMax:          400,
		Funding:           2000,
	}
}

// LoadScenario reads a YAML scenario. Fields missing from the file keep
// their DefaultScenario values.
func LoadScenario(path string) (Scenario, error) {
	sc := DefaultScenario()
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return sc, sc.Validate()
}

func (sc Scenario) Validate() error {
	switch {
	case sc.Reports <= 0:
		return errors.New("scenario: reports must be positive")
	case sc.Voters <= 0:
		return errors.New("scenario: voters must be positive")
	case sc.VotesPerReport < 0:
		return errors.New("scenario: votes_per_report must not be negative")
	case sc.SupportRatio < 0 || sc.SupportRatio > 1:
		return errors.New("scenario: support_ratio must be within [0,1]")
	case sc.UnregisteredRatio < 0 || sc.UnregisteredRatio > 1:
		return errors.New("scenario: unregistered_ratio must be within [0,1]")
	case sc.StakeMax < sc.StakeMin:
		return errors.New("scenario: stake_max must be >= stake_min")
	}
	return sc.Params.apply(engine.DefaultParams()).Validate()
}
