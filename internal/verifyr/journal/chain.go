package journal

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/ledger"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
)

// NewEntries wraps ledger transfers as unsealed journal entries.
func NewEntries(transfers []ledger.Transfer, height uint64) []Entry {
	now := time.Now().UTC()
	out := make([]Entry, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, Entry{
			EventID:    uuid.NewString(),
			RecordedAt: now,
			Height:     height,
			Seq:        t.Seq,
			Kind:       t.Kind,
			From:       string(t.From),
			To:         string(t.To),
			Amount:     t.Amount,
		})
	}
	return out
}

// link computes SHA256(prev + "|" + canonical(e)).
func link(prev string, e Entry) (string, error) {
	canon, err := Canonicalize(e)
	if err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}
	h := sha256.Sum256([]byte(prev + "|" + canon))
	return hex.EncodeToString(h[:]), nil
}

// Seal chains entries onto state and writes them to w as NDJSON.
// A nil state starts a new chain at the zero hash.
func Seal(w io.Writer, entries []Entry, state *ChainState) (*ChainState, error) {
	if state == nil {
		state = &ChainState{LastHeadHash: zeroHash()}
	}
	head, index := state.LastHeadHash, state.LastChainIndex

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, e := range entries {
		hash, err := link(head, e)
		if err != nil {
			return nil, err
		}
		index++
		e.HashPrev, e.Hash, e.ChainIndex = head, hash, index
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("encode entry: %w", err)
		}
		head = hash
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("flush journal: %w", err)
	}
	return &ChainState{LastChainIndex: index, LastHeadHash: head}, nil
}

// AppendFile seals entries onto the journal at path, creating it if needed.
func AppendFile(path string, entries []Entry, state *ChainState) (*ChainState, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	next, err := Seal(f, entries, state)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close journal: %w", err)
	}
	logger.L().Debugw("journal appended", "path", path, "entries", len(entries), "index", next.LastChainIndex)
	return next, nil
}

// VerifyChain re-derives every hash in an NDJSON journal. An entry counts as
// tampered when its hash does not match its content or its hash_prev does
// not match the previous entry's hash.
func VerifyChain(r io.Reader) (Result, error) {
	log := logger.L()
	start := time.Now()
	res := Result{Head: zeroHash()}

	dec := json.NewDecoder(r)
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return res, fmt.Errorf("decode entry %d: %w", res.Entries+1, err)
		}
		want, err := link(e.HashPrev, e)
		if err != nil {
			return res, err
		}
		if e.HashPrev != res.Head || want != e.Hash {
			res.Tampered = append(res.Tampered, e.ChainIndex)
		}
		res.Head = e.Hash
		res.Entries++
	}

	log.Infow("journal verified", "entries", res.Entries, "tampered", len(res.Tampered), "duration", time.Since(start))
	return res, nil
}

// VerifyFile runs VerifyChain over the journal at path.
func VerifyFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()
	return VerifyChain(f)
}
