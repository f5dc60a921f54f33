package journal

import (
	"encoding/json"
	"time"
)

// canonicalEntry is the hashed view of an entry: hash fields dropped,
// fields in declaration order, time in UTC with nanoseconds.
type canonicalEntry struct {
	EventID    string `json:"event_id"`
	RecordedAt string `json:"recorded_at"`
	Height     uint64 `json:"height"`
	Seq        uint64 `json:"seq"`
	Kind       string `json:"kind"`
	From       string `json:"from"`
	To         string `json:"to"`
	Amount     uint64 `json:"amount"`
}

// Canonicalize returns the deterministic string an entry's hash covers.
func Canonicalize(e Entry) (string, error) {
	b, err := json.Marshal(canonicalEntry{
		EventID:    e.EventID,
		RecordedAt: e.RecordedAt.UTC().Format(time.RFC3339Nano),
		Height:     e.Height,
		Seq:        e.Seq,
		Kind:       e.Kind,
		From:       e.From,
		To:         e.To,
		Amount:     e.Amount,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
