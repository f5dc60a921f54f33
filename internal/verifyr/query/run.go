// Package query filters and summarizes the transfer journal.
package query

import (
	"fmt"
	"io"
	"os"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
)

// Run streams the journal through the filters in opts. Matching entries go
// to out, or to opts.OutputFile when set, unless only a summary was asked
// for. The summary goes to summaryOut.
func Run(opts Options, out, summaryOut io.Writer) (*Stats, error) {
	filters := buildFilters(opts)

	if opts.OutputFile != "" {
		f, err := os.Create(opts.OutputFile)
		if err != nil {
			return nil, fmt.Errorf("create output %s: %w", opts.OutputFile, err)
		}
		defer f.Close()
		out = f
	}

	stats := NewStats()
	entries := ReadEntries(opts.InputFiles)
	for res := range entries {
		if res.Err != nil {
			logger.L().Debugw("skipping journal line", "err", res.Err)
			stats.IncrementError()
			continue
		}
		stats.IncrementInput()
		if !matchAll(res.Entry, filters) {
			continue
		}
		stats.IncrementMatched(res.Entry)
		if !opts.Summary || opts.OutputFile != "" {
			if err := WriteEntryNDJSON(out, res.Entry); err != nil {
				go drain(entries)
				return stats, err
			}
		}
		if opts.Limit > 0 && stats.MatchedEntries >= opts.Limit {
			go drain(entries)
			break
		}
	}

	if opts.Summary && summaryOut != nil {
		stats.PrintSummary(summaryOut)
	}
	return stats, nil
}

// drain lets the reader goroutine finish after an early exit.
func drain(ch <-chan EntryResult) {
	for range ch {
	}
}
