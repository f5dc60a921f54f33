package main

import (
	"github.com/spf13/cobra"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/sim"
)

var (
	simFlagScenario string
	simFlagSeed     int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a seeded synthetic workload against an in-memory contract",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := sim.DefaultScenario()
		if simFlagScenario != "" {
			var err error
			if sc, err = sim.LoadScenario(simFlagScenario); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("seed") {
			sc.Seed = simFlagSeed
		}
		sum, err := sim.Run(sc)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), sum)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simFlagScenario, "scenario", "", "YAML scenario file")
	simulateCmd.Flags().Int64Var(&simFlagSeed, "seed", 0, "override the scenario seed")
}
