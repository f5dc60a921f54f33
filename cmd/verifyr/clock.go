package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/session"
)

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Inspect or move the logical block height",
}

var clockShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current height",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, false, func(ctx context.Context, s *session.Session) error {
			return printHeight(cmd, s.Clock.Now())
		})
	},
}

var clockAdvanceCmd = &cobra.Command{
	Use:   "advance <blocks>",
	Short: "Move the height forward (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || n == 0 {
			return engine.ErrInvalidTimestamp
		}
		return withSession(cmd, true, func(ctx context.Context, s *session.Session) error {
			if err := requireAdmin(s); err != nil {
				return err
			}
			h, err := s.Clock.Advance(n)
			if err != nil {
				return err
			}
			return printHeight(cmd, h)
		})
	},
}

var clockSetCmd = &cobra.Command{
	Use:   "set <height>",
	Short: "Jump to an absolute height, never backwards (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("height %q: %w", args[0], err)
		}
		return withSession(cmd, true, func(ctx context.Context, s *session.Session) error {
			if err := requireAdmin(s); err != nil {
				return err
			}
			if err := s.Clock.Set(h); err != nil {
				return err
			}
			return printHeight(cmd, s.Clock.Now())
		})
	},
}

func requireAdmin(s *session.Session) error {
	if caller() != s.Engine.Params().Admin {
		return engine.ErrNotAuthorized
	}
	return nil
}

func printHeight(cmd *cobra.Command, h uint64) error {
	return printJSON(cmd.OutOrStdout(), map[string]uint64{"height": h})
}

func init() {
	clockCmd.AddCommand(clockShowCmd, clockAdvanceCmd, clockSetCmd)
}
