package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/session"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show or change contract parameters",
}

var paramsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current parameters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, false, func(ctx context.Context, s *session.Session) error {
			return printJSON(cmd.OutOrStdout(), s.Engine.Params())
		})
	},
}

var paramsSetCmd = &cobra.Command{
	Use:       "set <name> <value>",
	Short:     "Change one parameter (admin only)",
	Long:      "Names: verification-threshold, min-stake-amount, penalty-rate, reward-rate, verification-duration.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: engine.ParamNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("value %q: %w", args[1], err)
		}
		return withSession(cmd, true, func(ctx context.Context, s *session.Session) error {
			set, ok := s.Engine.Setter(args[0])
			if !ok {
				return fmt.Errorf("unknown param %q", args[0])
			}
			if err := set(caller(), v); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s.Engine.Params())
		})
	},
}

func init() {
	paramsCmd.AddCommand(paramsShowCmd, paramsSetCmd)
}
