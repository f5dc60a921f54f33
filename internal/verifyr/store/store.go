package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/ledger"
)

// SnapshotVersion is bumped when the snapshot layout changes incompatibly.
const SnapshotVersion = 1

var ErrNoSnapshot = errors.New("no snapshot stored")

// Snapshot is everything needed to resume the engine: contract storage,
// ledger, registered stakes and the logical clock.
type Snapshot struct {
	Version int                         `json:"version"`
	Height  uint64                      `json:"height"`
	Engine  *engine.State               `json:"engine"`
	Ledger  ledger.State                `json:"ledger"`
	Stakes  map[engine.Principal]uint64 `json:"stakes"`
}

// Store loads and saves snapshots.
type Store interface {
	// Load returns ErrNoSnapshot when nothing has been saved yet.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
	Close() error
}

// Open returns the store for driver. For "file" the location is a path,
// for SQL drivers it is a DSN.
func Open(driver, location string) (Store, error) {
	switch driver {
	case "file", "":
		return NewFileStore(location)
	case "sqlite3", "mysql", "postgres":
		return OpenSQL(driver, location)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func checkVersion(s *Snapshot) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	if s.Engine == nil {
		return errors.New("snapshot has no engine state")
	}
	return nil
}
