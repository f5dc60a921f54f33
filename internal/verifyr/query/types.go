package query

import (
	"time"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/journal"
)

// Options holds the journal query flags.
type Options struct {
	InputFiles []string // journal file(s), empty means stdin
	OutputFile string   // empty means stdout

	Principal string   // matches either side of a movement
	Kinds     []string // mint, transfer
	MinHeight uint64
	MaxHeight uint64 // 0 = unbounded

	Since        time.Time
	LastDuration time.Duration

	Summary bool
	Limit   int
}

// EntryFilter reports whether an entry should be kept. Filters combine with
// AND.
type EntryFilter func(journal.Entry) bool

// EntryResult is one decoded line or the error decoding it.
type EntryResult struct {
	Entry journal.Entry
	Err   error
}
