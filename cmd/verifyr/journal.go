package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/config"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/journal"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/session"
)

var (
	journalFlagFile       string
	journalFlagCheckpoint string
	journalFlagPublicKey  string
	journalFlagPrivateKey string
	journalFlagDir        string
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Verify or checkpoint the hash-chained transfer journal",
}

var journalVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-derive every hash in the journal",
	Long:  "Re-derives the chain. With --checkpoint the signed head must match the current journal head.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := journalFlagFile
		if path == "" {
			path = config.Get().Journal.File
		}
		res, err := journal.VerifyFile(path)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if !res.OK() {
			return fmt.Errorf("journal %s: %d tampered entries", path, len(res.Tampered))
		}
		if journalFlagCheckpoint == "" {
			return nil
		}
		if journalFlagPublicKey == "" {
			return fmt.Errorf("--public-key is required with --checkpoint")
		}
		ok, err := journal.VerifyCheckpoint(journalFlagCheckpoint, journalFlagPublicKey, res.Head)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("checkpoint %s does not match journal head", journalFlagCheckpoint)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "checkpoint OK")
		return nil
	},
}

var journalCheckpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Sign the current journal head",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jc := config.Get().Journal
		dir := firstNonEmpty(journalFlagDir, jc.CheckpointDir)
		key := firstNonEmpty(journalFlagPrivateKey, jc.PrivateKeyPath)
		if key == "" {
			return fmt.Errorf("private key required (--private-key or journal.private_key_path)")
		}
		return withSession(cmd, false, func(ctx context.Context, s *session.Session) error {
			// flush pending transfers so the checkpoint covers them
			if err := s.Commit(ctx); err != nil {
				return err
			}
			st, err := journal.LoadState(jc.StateFile)
			if err != nil {
				return err
			}
			path, err := journal.WriteCheckpoint(dir, st, s.Clock.Now(), key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	},
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	journalVerifyCmd.Flags().StringVar(&journalFlagFile, "file", "", "journal file (default journal.file)")
	journalVerifyCmd.Flags().StringVar(&journalFlagCheckpoint, "checkpoint", "", "signed checkpoint to check against the head")
	journalVerifyCmd.Flags().StringVar(&journalFlagPublicKey, "public-key", "", "public key PEM for --checkpoint")
	journalCheckpointCmd.Flags().StringVar(&journalFlagPrivateKey, "private-key", "", "private key PEM (default journal.private_key_path)")
	journalCheckpointCmd.Flags().StringVar(&journalFlagDir, "dir", "", "output dir (default journal.checkpoint_dir)")
	journalCmd.AddCommand(journalVerifyCmd, journalCheckpointCmd)
}
