package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	if err := Load(v); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := Get()
	if cfg.Version != "0.1" {
		t.Errorf("default Version = %v, want 0.1", cfg.Version)
	}
	if cfg.Engine.VerificationThreshold != 51 {
		t.Errorf("default VerificationThreshold = %v, want 51", cfg.Engine.VerificationThreshold)
	}
	if cfg.Engine.MinStakeAmount != 100 {
		t.Errorf("default MinStakeAmount = %v, want 100", cfg.Engine.MinStakeAmount)
	}
	if cfg.Engine.VerificationDuration != 144 {
		t.Errorf("default VerificationDuration = %v, want 144", cfg.Engine.VerificationDuration)
	}
	if cfg.Engine.Admin != "ST1TEST" {
		t.Errorf("default Admin = %v, want ST1TEST", cfg.Engine.Admin)
	}
	if cfg.Store.Driver != "file" {
		t.Errorf("default Store.Driver = %v, want file", cfg.Store.Driver)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Level = %v, want info", cfg.Logging.Level)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	v := viper.New()
	v.Set("version", "0.2")
	v.Set("engine.verification_threshold", 66)
	v.Set("engine.min_stake_amount", 250)
	v.Set("engine.max_verifications_per_report", 10)
	v.Set("engine.penalty_rate", 5)
	v.Set("engine.reward_rate", 2)
	v.Set("engine.verification_duration", 10)
	v.Set("engine.admin", "ST1ADMIN")
	v.Set("store.driver", "sqlite3")
	v.Set("store.dsn", "file::memory:")
	v.Set("journal.file", "./journal.ndjson")
	v.Set("journal.state_file", "./journal-state.json")
	v.Set("journal.checkpoint_dir", "./checkpoints")
	v.Set("journal.private_key_path", "./private.pem")
	v.Set("server.addr", ":9090")
	v.Set("server.jwt_secret", "s3cret")
	v.Set("server.allow_origins", []string{"http://localhost:3000"})
	v.Set("server.block_interval", "5s")
	v.Set("logging.level", "debug")
	v.Set("logging.development", true)

	if err := Load(v); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := Get()
	if cfg.Version != "0.2" {
		t.Errorf("Version = %v, want 0.2", cfg.Version)
	}

	want := engine.Params{
		VerificationThreshold:     66,
		MinStakeAmount:            250,
		MaxVerificationsPerReport: 10,
		PenaltyRate:               5,
		RewardRate:                2,
		VerificationDuration:      10,
		Admin:                     "ST1ADMIN",
	}
	if got := cfg.Engine.Params(); got != want {
		t.Errorf("Params() = %+v, want %+v", got, want)
	}

	if cfg.Store.Driver != "sqlite3" || cfg.Store.DSN != "file::memory:" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Journal.CheckpointDir != "./checkpoints" {
		t.Errorf("CheckpointDir = %v, want ./checkpoints", cfg.Journal.CheckpointDir)
	}
	if cfg.Journal.PrivateKeyPath != "./private.pem" {
		t.Errorf("PrivateKeyPath = %v, want ./private.pem", cfg.Journal.PrivateKeyPath)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.JWTSecret != "s3cret" || cfg.Server.BlockInterval != "5s" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if len(cfg.Server.AllowOrigins) != 1 || cfg.Server.AllowOrigins[0] != "http://localhost:3000" {
		t.Errorf("AllowOrigins = %v", cfg.Server.AllowOrigins)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Development {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_RejectsInvalidEngineParams(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
		want error
	}{
		{"zero threshold", "engine.verification_threshold", 0, engine.ErrInvalidThreshold},
		{"threshold above 100", "engine.verification_threshold", 101, engine.ErrInvalidThreshold},
		{"zero min stake", "engine.min_stake_amount", 0, engine.ErrInvalidStakeAmount},
		{"penalty above 50", "engine.penalty_rate", 51, engine.ErrInvalidPenaltyRate},
		{"reward above 20", "engine.reward_rate", 21, engine.ErrInvalidRewardRate},
		{"zero duration", "engine.verification_duration", 0, engine.ErrInvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			err := Load(v)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_RejectsUnknownStoreDriver(t *testing.T) {
	v := viper.New()
	v.Set("store.driver", "mongodb")
	if err := Load(v); err == nil {
		t.Error("Load() error = nil, want error for unknown driver")
	}
}

func TestGet_NilConfig(t *testing.T) {
	// Reset global config
	cfg = nil

	// Get should return empty config when not loaded
	c := Get()
	if c == nil {
		t.Error("Get() = nil, want empty config")
	}
	if c.Version != "" {
		t.Errorf("Version = %v, want empty string", c.Version)
	}
}

func TestGet_Singleton(t *testing.T) {
	// Reset global config
	cfg = nil

	c1 := Get()
	if c1 == nil {
		t.Fatal("Get() returned nil")
	}

	c2 := Get()
	if c2 != c1 {
		t.Error("Get() returned different instance")
	}
}
