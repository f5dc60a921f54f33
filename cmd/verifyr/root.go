package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/config"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/session"
)

var (
	cfgFile    string
	callerFlag string
	Version    = "v0.1"
	build      = "dev"
	rootCmd    = &cobra.Command{
		Use:           "verifyr",
		Short:         "VerifyR - staked report verification",
		Long:          "VerifyR: submit evidence reports, admit staked votes and resolve consensus over a persisted contract state.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
			} else {
				viper.SetConfigFile("config.yaml")
			}
			if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
				return fmt.Errorf("read config: %w", err)
			}
			viper.SetEnvPrefix("VERIFYR")
			viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
			viper.AutomaticEnv()
			if err := config.Load(viper.GetViper()); err != nil {
				return err
			}

			cfg := config.Get()
			if err := logger.InitLogger(logger.LogConfig{
				Level:       cfg.Logging.Level,
				Development: cfg.Logging.Development,
			}); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&callerFlag, "caller", "", "principal issuing the operation (default: engine admin)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(submitCmd, voteCmd, resolveCmd, reportCmd)
	rootCmd.AddCommand(paramsCmd, accountCmd, clockCmd)
	rootCmd.AddCommand(journalCmd, serveCmd, simulateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func caller() engine.Principal {
	if callerFlag != "" {
		return engine.Principal(callerFlag)
	}
	return engine.Principal(config.Get().Engine.Admin)
}

// withSession opens the configured session, runs fn and commits when fn
// succeeds and mutate is set.
func withSession(cmd *cobra.Command, mutate bool, fn func(ctx context.Context, s *session.Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := session.Open(ctx, config.Get())
	if err != nil {
		return err
	}
	defer s.Close()
	if err := fn(ctx, s); err != nil {
		return err
	}
	if mutate {
		return s.Commit(ctx)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
