package query

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/journal"
)

// Stats summarizes the entries a query read and matched.
type Stats struct {
	InputEntries   int
	MatchedEntries int
	ErrorEntries   int
	ByKind         map[string]int
	VolumeByKind   map[string]uint64
	ByPrincipal    map[string]int // every side of every matched movement
	MinHeight      uint64
	MaxHeight      uint64
	FirstRecorded  *time.Time
	LastRecorded   *time.Time
}

func NewStats() *Stats {
	return &Stats{
		ByKind:       make(map[string]int),
		VolumeByKind: make(map[string]uint64),
		ByPrincipal:  make(map[string]int),
	}
}

func (s *Stats) IncrementInput() { s.InputEntries++ }
func (s *Stats) IncrementError() { s.ErrorEntries++ }

// IncrementMatched folds e into every breakdown.
func (s *Stats) IncrementMatched(e journal.Entry) {
	if s.MatchedEntries == 0 || e.Height < s.MinHeight {
		s.MinHeight = e.Height
	}
	if e.Height > s.MaxHeight {
		s.MaxHeight = e.Height
	}
	s.MatchedEntries++
	s.ByKind[e.Kind]++
	s.VolumeByKind[e.Kind] += e.Amount
	if e.From != "" {
		s.ByPrincipal[e.From]++
	}
	if e.To != "" && e.To != e.From {
		s.ByPrincipal[e.To]++
	}
	if !e.RecordedAt.IsZero() {
		t := e.RecordedAt
		if s.FirstRecorded == nil || t.Before(*s.FirstRecorded) {
			s.FirstRecorded = &t
		}
		if s.LastRecorded == nil || t.After(*s.LastRecorded) {
			s.LastRecorded = &t
		}
	}
}

// PrintSummary writes a human-readable summary. Breakdowns are sorted by
// count descending, then name.
func (s *Stats) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Total entries read: %d\n", s.InputEntries)
	if s.ErrorEntries > 0 {
		fmt.Fprintf(w, "  Unreadable lines: %d\n", s.ErrorEntries)
	}
	if s.FirstRecorded != nil && s.LastRecorded != nil {
		fmt.Fprintf(w, "  Time range: %s to %s\n",
			s.FirstRecorded.Format(time.RFC3339), s.LastRecorded.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "  Matched: %d\n", s.MatchedEntries)
	if s.MatchedEntries > 0 {
		fmt.Fprintf(w, "  Heights: %d to %d\n", s.MinHeight, s.MaxHeight)
	}
	fmt.Fprintf(w, "\n")

	if len(s.ByKind) > 0 {
		fmt.Fprintf(w, "  By kind:\n")
		for _, k := range sortedKeys(s.ByKind) {
			fmt.Fprintf(w, "    %s: %d (volume %d)\n", k, s.ByKind[k], s.VolumeByKind[k])
		}
		fmt.Fprintf(w, "\n")
	}
	if len(s.ByPrincipal) > 0 {
		fmt.Fprintf(w, "  By principal:\n")
		for _, k := range sortedKeys(s.ByPrincipal) {
			fmt.Fprintf(w, "    %s: %d\n", k, s.ByPrincipal[k])
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] == m[keys[j]] {
			return keys[i] < keys[j]
		}
		return m[keys[i]] > m[keys[j]]
	})
	return keys
}

// SummaryMap returns the statistics for JSON output.
func (s *Stats) SummaryMap() map[string]any {
	out := map[string]any{
		"total_entries":   s.InputEntries,
		"matched_entries": s.MatchedEntries,
		"error_entries":   s.ErrorEntries,
		"by_kind":         s.ByKind,
		"volume_by_kind":  s.VolumeByKind,
		"by_principal":    s.ByPrincipal,
	}
	if s.MatchedEntries > 0 {
		out["height_range"] = map[string]uint64{"min": s.MinHeight, "max": s.MaxHeight}
	}
	if s.FirstRecorded != nil && s.LastRecorded != nil {
		out["time_range"] = map[string]string{
			"start": s.FirstRecorded.Format(time.RFC3339),
			"end":   s.LastRecorded.Format(time.RFC3339),
		}
	}
	return out
}
