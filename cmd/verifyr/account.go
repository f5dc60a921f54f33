package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/session"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage ledger balances and registered stakes",
}

var accountFundCmd = &cobra.Command{
	Use:   "fund <principal> <amount>",
	Short: "Mint balance to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("amount %q: %w", args[1], err)
		}
		p := engine.Principal(args[0])
		return withSession(cmd, true, func(ctx context.Context, s *session.Session) error {
			if err := s.Ledger.Mint(p, amount); err != nil {
				return fmt.Errorf("fund %s: %w", p, err)
			}
			logger.L().Infow("account funded", "principal", p, "amount", amount)
			return printAccount(cmd, s, p)
		})
	},
}

var accountRegisterCmd = &cobra.Command{
	Use:   "register <principal> <stake>",
	Short: "Register a voter with a stake-oracle amount",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stake, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("stake %q: %w", args[1], err)
		}
		p := engine.Principal(args[0])
		return withSession(cmd, true, func(ctx context.Context, s *session.Session) error {
			if err := s.Stakes.Register(p, stake); err != nil {
				return fmt.Errorf("register %s: %w", p, err)
			}
			logger.L().Infow("voter registered", "principal", p, "stake", stake)
			return printAccount(cmd, s, p)
		})
	},
}

var accountShowCmd = &cobra.Command{
	Use:   "show <principal>",
	Short: "Print balance and registered stake",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, false, func(ctx context.Context, s *session.Session) error {
			return printAccount(cmd, s, engine.Principal(args[0]))
		})
	},
}

func printAccount(cmd *cobra.Command, s *session.Session, p engine.Principal) error {
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"principal": p,
		"balance":   s.Ledger.BalanceOf(p),
		"stake":     s.Stakes.StakeOf(p),
	})
}

func init() {
	accountCmd.AddCommand(accountFundCmd, accountRegisterCmd, accountShowCmd)
}
