package engine

const (
	MaxThreshold   = 100
	MaxPenaltyRate = 50
	MaxRewardRate  = 20
)

// Params is the admin-mutable contract configuration.
//
// MaxVerificationsPerReport, PenaltyRate and RewardRate are stored and
// validated but not consulted by admission or resolution.
type Params struct {
	VerificationThreshold     uint64    `json:"verification_threshold"` // percent, (0,100]
	MinStakeAmount            uint64    `json:"min_stake_amount"`
	MaxVerificationsPerReport uint64    `json:"max_verifications_per_report"`
	PenaltyRate               uint64    `json:"penalty_rate"`
	RewardRate                uint64    `json:"reward_rate"`
	VerificationDuration      uint64    `json:"verification_duration"`
	Admin                     Principal `json:"admin"`
}

// DefaultParams returns the parameters of a freshly deployed contract.
func DefaultParams() Params {
	return Params{
		VerificationThreshold:     51,
		MinStakeAmount:            100,
		MaxVerificationsPerReport: 100,
		PenaltyRate:               20,
		RewardRate:                10,
		VerificationDuration:      144,
		Admin:                     "ST1TEST",
	}
}

// Validate applies the setter range checks to every field.
func (p Params) Validate() error {
	if err := validThreshold(p.VerificationThreshold); err != nil {
		return err
	}
	if err := validMinStake(p.MinStakeAmount); err != nil {
		return err
	}
	if err := validPenaltyRate(p.PenaltyRate); err != nil {
		return err
	}
	if err := validRewardRate(p.RewardRate); err != nil {
		return err
	}
	return validDuration(p.VerificationDuration)
}

func validThreshold(v uint64) error {
	if v == 0 || v > MaxThreshold {
		return ErrInvalidThreshold
	}
	return nil
}

func validMinStake(v uint64) error {
	if v == 0 {
		return ErrInvalidStakeAmount
	}
	return nil
}

func validPenaltyRate(v uint64) error {
	if v > MaxPenaltyRate {
		return ErrInvalidPenaltyRate
	}
	return nil
}

func validRewardRate(v uint64) error {
	if v > MaxRewardRate {
		return ErrInvalidRewardRate
	}
	return nil
}

func validDuration(v uint64) error {
	if v == 0 {
		return ErrInvalidDuration
	}
	return nil
}

// setParam is the guarded write shared by every setter: admin check,
// range check, then a single field write.
func (s *State) setParam(env Env, validate func(uint64) error, field *uint64, v uint64) error {
	if env.Caller != s.Params.Admin {
		return ErrNotAuthorized
	}
	if err := validate(v); err != nil {
		return err
	}
	*field = v
	return nil
}

func (s *State) SetVerificationThreshold(env Env, v uint64) error {
	return s.setParam(env, validThreshold, &s.Params.VerificationThreshold, v)
}

func (s *State) SetMinStakeAmount(env Env, v uint64) error {
	return s.setParam(env, validMinStake, &s.Params.MinStakeAmount, v)
}

func (s *State) SetPenaltyRate(env Env, v uint64) error {
	return s.setParam(env, validPenaltyRate, &s.Params.PenaltyRate, v)
}

func (s *State) SetRewardRate(env Env, v uint64) error {
	return s.setParam(env, validRewardRate, &s.Params.RewardRate, v)
}

// SetVerificationDuration only affects reports submitted afterwards; close
// times are fixed at submission.
func (s *State) SetVerificationDuration(env Env, v uint64) error {
	return s.setParam(env, validDuration, &s.Params.VerificationDuration, v)
}
