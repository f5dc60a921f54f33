package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/config"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/query"
)

var (
	queryFlagInput     []string
	queryFlagOutput    string
	queryFlagPrincipal string
	queryFlagKinds     []string
	queryFlagMinHeight uint64
	queryFlagMaxHeight uint64
	queryFlagSince     string
	queryFlagLast      string
	queryFlagSummary   bool
	queryFlagLimit     int
)

var journalQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter and summarize journal entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := query.Options{
			InputFiles: queryFlagInput,
			OutputFile: queryFlagOutput,
			Principal:  queryFlagPrincipal,
			Kinds:      queryFlagKinds,
			MinHeight:  queryFlagMinHeight,
			MaxHeight:  queryFlagMaxHeight,
			Summary:    queryFlagSummary,
			Limit:      queryFlagLimit,
		}
		if len(opts.InputFiles) == 0 {
			opts.InputFiles = []string{config.Get().Journal.File}
		}
		if queryFlagSince != "" {
			t, err := query.ParseSince(queryFlagSince)
			if err != nil {
				return err
			}
			opts.Since = t
		}
		if queryFlagLast != "" {
			d, err := query.ParseDuration(queryFlagLast)
			if err != nil {
				return fmt.Errorf("--last: %w", err)
			}
			opts.LastDuration = d
		}
		if opts.MaxHeight > 0 && opts.MinHeight > opts.MaxHeight {
			return fmt.Errorf("--min-height must not exceed --max-height")
		}
		_, err := query.Run(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		return err
	},
}

func init() {
	f := journalQueryCmd.Flags()
	f.StringSliceVar(&queryFlagInput, "input", nil, "journal file(s) (default journal.file)")
	f.StringVar(&queryFlagOutput, "output", "", "write matches to file (default stdout)")
	f.StringVar(&queryFlagPrincipal, "principal", "", "match movements from or to this principal")
	f.StringSliceVar(&queryFlagKinds, "kind", nil, "mint|transfer (repeatable)")
	f.Uint64Var(&queryFlagMinHeight, "min-height", 0, "lowest sealed height")
	f.Uint64Var(&queryFlagMaxHeight, "max-height", 0, "highest sealed height (0 = unbounded)")
	f.StringVar(&queryFlagSince, "since", "", "entries recorded on or after this time")
	f.StringVar(&queryFlagLast, "last", "", "entries recorded within this window, e.g. 24h or 7d")
	f.BoolVar(&queryFlagSummary, "summary", false, "print a summary to stderr instead of entries")
	f.IntVar(&queryFlagLimit, "limit", 0, "stop after N matches")
	journalCmd.AddCommand(journalQueryCmd)
}
