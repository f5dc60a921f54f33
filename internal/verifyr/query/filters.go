package query

import (
	"strings"
	"time"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/journal"
)

// FilterByPrincipal matches movements where p is the sender or the
// receiver.
func FilterByPrincipal(p string) EntryFilter {
	return func(e journal.Entry) bool {
		return e.From == p || e.To == p
	}
}

// FilterByKind matches any of kinds, case-insensitive.
func FilterByKind(kinds []string) EntryFilter {
	return func(e journal.Entry) bool {
		for _, k := range kinds {
			if strings.EqualFold(e.Kind, k) {
				return true
			}
		}
		return false
	}
}

// FilterByHeight keeps entries sealed within [lo, hi]. A zero hi leaves
// the range open.
func FilterByHeight(lo, hi uint64) EntryFilter {
	return func(e journal.Entry) bool {
		if e.Height < lo {
			return false
		}
		return hi == 0 || e.Height <= hi
	}
}

// FilterByTime keeps entries recorded on or after since, or within the last
// duration. When both are set the later bound wins.
func FilterByTime(since time.Time, last time.Duration) EntryFilter {
	cutoff := since
	if last > 0 {
		if c := time.Now().UTC().Add(-last); c.After(cutoff) {
			cutoff = c
		}
	}
	return func(e journal.Entry) bool {
		return !e.RecordedAt.Before(cutoff)
	}
}

func buildFilters(opts Options) []EntryFilter {
	var filters []EntryFilter
	if opts.Principal != "" {
		filters = append(filters, FilterByPrincipal(opts.Principal))
	}
	if len(opts.Kinds) > 0 {
		filters = append(filters, FilterByKind(opts.Kinds))
	}
	if opts.MinHeight > 0 || opts.MaxHeight > 0 {
		filters = append(filters, FilterByHeight(opts.MinHeight, opts.MaxHeight))
	}
	if !opts.Since.IsZero() || opts.LastDuration > 0 {
		filters = append(filters, FilterByTime(opts.Since, opts.LastDuration))
	}
	return filters
}

func matchAll(e journal.Entry, filters []EntryFilter) bool {
	for _, f := range filters {
		if !f(e) {
			return false
		}
	}
	return true
}
