package journal

import "time"

// ChainState stores the rolling head of the journal so appends in later runs
// continue the same chain.
type ChainState struct {
	LastChainIndex int    `json:"last_chain_index"` // entries sealed so far
	LastHeadHash   string `json:"last_head_hash"`   // hash of the last entry
}

// Entry is one sealed ledger movement, written as a single NDJSON line.
type Entry struct {
	EventID    string    `json:"event_id"`
	RecordedAt time.Time `json:"recorded_at"`
	Height     uint64    `json:"height"`
	Seq        uint64    `json:"seq"`
	Kind       string    `json:"kind"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	Amount     uint64    `json:"amount"`

	HashPrev   string `json:"hash_prev"`
	Hash       string `json:"hash"`
	ChainIndex int    `json:"hash_chain_index"`
}

// Checkpoint captures the journal head at a given chain index. It is the
// payload that gets signed.
type Checkpoint struct {
	ChainIndex int       `json:"chain_index"`
	HeadHash   string    `json:"head_hash"`
	Height     uint64    `json:"height"`
	CreatedAt  time.Time `json:"created_at"`
}

// SignedCheckpoint wraps a checkpoint with a detached base64 ECDSA signature.
type SignedCheckpoint struct {
	Checkpoint Checkpoint `json:"checkpoint"`
	Signature  string     `json:"signature"`
}

// Result is the outcome of re-deriving a journal.
type Result struct {
	Entries  int    `json:"entries"`
	Tampered []int  `json:"tampered,omitempty"` // chain indices that failed
	Head     string `json:"head"`
}

// OK reports whether every entry verified.
func (r Result) OK() bool { return len(r.Tampered) == 0 }
