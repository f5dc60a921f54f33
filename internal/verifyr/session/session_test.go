package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/config"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/journal"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	logger.SetNop()
	dir := t.TempDir()
	params := engine.DefaultParams()
	return &config.Config{
		Engine: config.EngineCfg{
			VerificationThreshold:     params.VerificationThreshold,
			MinStakeAmount:            params.MinStakeAmount,
			MaxVerificationsPerReport: params.MaxVerificationsPerReport,
			PenaltyRate:               params.PenaltyRate,
			RewardRate:                params.RewardRate,
			VerificationDuration:      10,
			Admin:                     "ST1ADMIN",
		},
		Store: config.StoreCfg{Driver: "file", Path: filepath.Join(dir, "state.json")},
		Journal: config.JournalCfg{
			File:      filepath.Join(dir, "journal.ndjson"),
			StateFile: filepath.Join(dir, "journal-state.json"),
		},
	}
}

func TestOpen_FreshUsesConfiguredParams(t *testing.T) {
	cfg := testConfig(t)
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	p := s.Engine.Params()
	assert.Equal(t, engine.Principal("ST1ADMIN"), p.Admin)
	assert.Equal(t, uint64(10), p.VerificationDuration)
	assert.Equal(t, uint64(0), s.Clock.Now())
}

func TestCommit_RoundTripsAndJournals(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, s.Ledger.Mint("alice", 500))
	require.NoError(t, s.Stakes.Register("alice", 100))
	for i := 0; i < 2; i++ {
		_, err := s.Engine.SubmitReport("alice", make([]byte, engine.HashSize), "corruption")
		require.NoError(t, err)
	}
	require.NoError(t, s.Engine.VerifyReport("alice", 1, true, 200))
	_, err = s.Clock.Advance(3)
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx))
	require.NoError(t, s.Close())

	// second run resumes where the first stopped
	s2, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, uint64(3), s2.Clock.Now())
	assert.Equal(t, uint64(2), s2.Engine.NextReportID())
	assert.Equal(t, uint64(300), s2.Ledger.BalanceOf("alice"))
	assert.Equal(t, uint64(200), s2.Ledger.BalanceOf(engine.ContractPrincipal))
	assert.Equal(t, uint64(100), s2.Stakes.StakeOf("alice"))
	assert.ErrorIs(t, s2.Engine.VerifyReport("alice", 1, true, 200), engine.ErrAlreadyVerified)

	res, err := journal.VerifyFile(cfg.Journal.File)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 2, res.Entries)

	// committing again without new transfers leaves the journal alone,
	// a new transfer extends the same chain
	require.NoError(t, s2.Commit(ctx))
	require.NoError(t, s2.Ledger.Mint("bob", 1))
	require.NoError(t, s2.Commit(ctx))

	res, err = journal.VerifyFile(cfg.Journal.File)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 3, res.Entries)

	st, err := journal.LoadState(cfg.Journal.StateFile)
	require.NoError(t, err)
	assert.Equal(t, 3, st.LastChainIndex)
	assert.Equal(t, res.Head, st.LastHeadHash)
}

func TestCommit_WithoutJournal(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Journal.File = ""

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ledger.Mint("alice", 5))
	assert.NoError(t, s.Commit(ctx))
}
