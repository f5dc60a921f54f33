package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
)

type LoggingCfg struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// EngineCfg seeds the contract parameters of a fresh snapshot. Once a
// snapshot exists, parameters only change through the admin setters.
type EngineCfg struct {
	VerificationThreshold     uint64 `mapstructure:"verification_threshold"`
	MinStakeAmount            uint64 `mapstructure:"min_stake_amount"`
	MaxVerificationsPerReport uint64 `mapstructure:"max_verifications_per_report"`
	PenaltyRate               uint64 `mapstructure:"penalty_rate"`
	RewardRate                uint64 `mapstructure:"reward_rate"`
	VerificationDuration      uint64 `mapstructure:"verification_duration"`
	Admin                     string `mapstructure:"admin"`
}

type StoreCfg struct {
	Driver string `mapstructure:"driver"` // file|sqlite3|mysql|postgres
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type JournalCfg struct {
	File           string `mapstructure:"file"`
	StateFile      string `mapstructure:"state_file"`
	CheckpointDir  string `mapstructure:"checkpoint_dir"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
}

type ServerCfg struct {
	Addr          string   `mapstructure:"addr"`
	JWTSecret     string   `mapstructure:"jwt_secret"`
	AllowOrigins  []string `mapstructure:"allow_origins"`
	BlockInterval string   `mapstructure:"block_interval"`
}

type Config struct {
	Version string     `mapstructure:"version"`
	Engine  EngineCfg  `mapstructure:"engine"`
	Store   StoreCfg   `mapstructure:"store"`
	Journal JournalCfg `mapstructure:"journal"`
	Server  ServerCfg  `mapstructure:"server"`
	Logging LoggingCfg `mapstructure:"logging"`
}

var cfg *Config

// SetDefaults registers the default values on v. The engine defaults match
// DefaultParams so a config-less run behaves like a freshly deployed contract.
func SetDefaults(v *viper.Viper) {
	d := engine.DefaultParams()
	v.SetDefault("version", "0.1")
	v.SetDefault("engine.verification_threshold", d.VerificationThreshold)
	v.SetDefault("engine.min_stake_amount", d.MinStakeAmount)
	v.SetDefault("engine.max_verifications_per_report", d.MaxVerificationsPerReport)
	v.SetDefault("engine.penalty_rate", d.PenaltyRate)
	v.SetDefault("engine.reward_rate", d.RewardRate)
	v.SetDefault("engine.verification_duration", d.VerificationDuration)
	v.SetDefault("engine.admin", string(d.Admin))
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "verifyr-state.json")
	v.SetDefault("journal.file", "verifyr-journal.ndjson")
	v.SetDefault("journal.state_file", "verifyr-journal-state.json")
	v.SetDefault("journal.checkpoint_dir", "checkpoints")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.level", "info")
}

// Load populates global config from a viper instance
func Load(v *viper.Viper) error {
	SetDefaults(v)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Engine.Params().Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	switch c.Store.Driver {
	case "file", "sqlite3", "mysql", "postgres":
	default:
		return fmt.Errorf("store config: unsupported driver %q", c.Store.Driver)
	}
	cfg = &c
	return nil
}

func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
	}
	return cfg
}

// Params converts the engine section into contract parameters.
func (c EngineCfg) Params() engine.Params {
	return engine.Params{
		VerificationThreshold:     c.VerificationThreshold,
		MinStakeAmount:            c.MinStakeAmount,
		MaxVerificationsPerReport: c.MaxVerificationsPerReport,
		PenaltyRate:               c.PenaltyRate,
		RewardRate:                c.RewardRate,
		VerificationDuration:      c.VerificationDuration,
		Admin:                     engine.Principal(c.Admin),
	}
}
