package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/config"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/journal"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/ledger"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/store"
)

// Session is one engine restored from the configured store together with
// its in-memory collaborators.
type Session struct {
	Engine *engine.Engine
	Ledger *ledger.Memory
	Stakes *ledger.Registry
	Clock  *engine.ManualClock

	cfg   *config.Config
	store store.Store

	// commitMu keeps concurrent commits from sealing the same transfers twice.
	commitMu sync.Mutex
}

// Open restores the last snapshot, or starts a fresh contract with the
// configured params when the store is empty.
func Open(ctx context.Context, cfg *config.Config) (*Session, error) {
	log := logger.L()
	location := cfg.Store.Path
	if cfg.Store.Driver != "file" && cfg.Store.Driver != "" {
		location = cfg.Store.DSN
	}
	st, err := store.Open(cfg.Store.Driver, location)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Ledger: ledger.NewMemory(),
		Stakes: ledger.NewRegistry(),
		Clock:  engine.NewManualClock(0),
		cfg:    cfg,
		store:  st,
	}

	snap, err := st.Load(ctx)
	var state *engine.State
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		state = engine.NewState(cfg.Engine.Params())
		log.Infow("starting fresh contract", "driver", cfg.Store.Driver, "admin", cfg.Engine.Admin)
	case err != nil:
		st.Close()
		return nil, fmt.Errorf("load snapshot: %w", err)
	default:
		state = snap.Engine
		s.Ledger.Restore(snap.Ledger)
		s.Stakes.Restore(snap.Stakes)
		s.Clock = engine.NewManualClock(snap.Height)
		log.Debugw("snapshot restored", "height", snap.Height, "next_report_id", snap.Engine.NextReportID)
	}
	s.Engine = engine.New(state, s.Stakes, s.Ledger, s.Clock)
	return s, nil
}

// Snapshot captures engine, ledger, stakes and clock under the engine lock
// so no operation lands between the pieces.
func (s *Session) Snapshot() *store.Snapshot {
	var snap *store.Snapshot
	s.Engine.Do(func(st *engine.State) {
		snap = &store.Snapshot{
			Version: store.SnapshotVersion,
			Height:  s.Clock.Now(),
			Engine:  st.Clone(),
			Ledger:  s.Ledger.Export(),
			Stakes:  s.Stakes.Export(),
		}
	})
	return snap
}

// Commit persists the snapshot and seals new ledger transfers into the
// journal. The journal resumes from its own chain state, so a failed append
// is picked up by the next commit.
func (s *Session) Commit(ctx context.Context) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	snap := s.Snapshot()
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return s.syncJournal(snap.Height)
}

func (s *Session) syncJournal(height uint64) error {
	jc := s.cfg.Journal
	if jc.File == "" {
		return nil
	}
	st, err := journal.LoadState(jc.StateFile)
	if err != nil {
		return err
	}
	pending := s.Ledger.Transfers(st.LastChainIndex)
	if len(pending) == 0 {
		return nil
	}
	next, err := journal.AppendFile(jc.File, journal.NewEntries(pending, height), st)
	if err != nil {
		return err
	}
	if err := journal.SaveState(jc.StateFile, next); err != nil {
		return err
	}
	logger.L().Debugw("journal synced", "sealed", len(pending), "index", next.LastChainIndex)
	return nil
}

func (s *Session) Close() error {
	return s.store.Close()
}
