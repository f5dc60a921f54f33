package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/session"
)

var (
	submitFlagEvidence     string
	submitFlagEvidenceFile string
	submitFlagCategory     string
	voteFlagStake          uint64
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an evidence report for verification",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		evidence, err := evidenceBytes()
		if err != nil {
			return err
		}
		return withSession(cmd, true, func(ctx context.Context, s *session.Session) error {
			id, err := s.Engine.SubmitReport(caller(), evidence, submitFlagCategory)
			if err != nil {
				return err
			}
			r, _ := s.Engine.Report(id)
			return printJSON(cmd.OutOrStdout(), r)
		})
	},
}

// evidenceBytes takes the digest from --evidence, or hashes --evidence-file.
func evidenceBytes() ([]byte, error) {
	switch {
	case submitFlagEvidence != "" && submitFlagEvidenceFile != "":
		return nil, errors.New("use either --evidence or --evidence-file")
	case submitFlagEvidenceFile != "":
		data, err := os.ReadFile(submitFlagEvidenceFile)
		if err != nil {
			return nil, fmt.Errorf("read evidence: %w", err)
		}
		sum := sha256.Sum256(data)
		return sum[:], nil
	default:
		b, err := hex.DecodeString(strings.TrimPrefix(submitFlagEvidence, "0x"))
		if err != nil {
			return nil, engine.ErrInvalidEvidenceHash
		}
		return b, nil
	}
}

var voteCmd = &cobra.Command{
	Use:   "vote <report-id> <yes|no>",
	Short: "Cast a staked vote on an open report",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseReportID(args[0])
		if err != nil {
			return err
		}
		vote, err := parseVote(args[1])
		if err != nil {
			return err
		}
		return withSession(cmd, true, func(ctx context.Context, s *session.Session) error {
			p := caller()
			if err := s.Engine.VerifyReport(p, id, vote, voteFlagStake); err != nil {
				return err
			}
			v, _ := s.Engine.Verification(id, p)
			return printJSON(cmd.OutOrStdout(), v)
		})
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <report-id>",
	Short: "Finalize a report whose voting window has closed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseReportID(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, true, func(ctx context.Context, s *session.Session) error {
			if err := s.Engine.ResolveConsensus(caller(), id); err != nil {
				return err
			}
			r, _ := s.Engine.Report(id)
			return printJSON(cmd.OutOrStdout(), r)
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect reports",
}

var reportShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print a report with its lifecycle phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseReportID(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, false, func(ctx context.Context, s *session.Session) error {
			r, ok := s.Engine.Report(id)
			if !ok {
				return engine.ErrReportNotFound
			}
			return printJSON(cmd.OutOrStdout(), struct {
				engine.Report
				Phase engine.Phase `json:"phase"`
			}{r, r.PhaseAt(s.Engine.Now())})
		})
	},
}

func parseReportID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, engine.ErrInvalidReportID
	}
	return id, nil
}

func parseVote(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "for":
		return true, nil
	case "no", "false", "against":
		return false, nil
	}
	return false, engine.ErrInvalidVote
}

func init() {
	submitCmd.Flags().StringVar(&submitFlagEvidence, "evidence", "", "hex-encoded 32-byte evidence digest")
	submitCmd.Flags().StringVar(&submitFlagEvidenceFile, "evidence-file", "", "file whose sha256 is the evidence digest")
	submitCmd.Flags().StringVar(&submitFlagCategory, "category", "", "infrastructure|corruption|environment")
	submitCmd.MarkFlagRequired("category")

	voteCmd.Flags().Uint64Var(&voteFlagStake, "stake", 0, "amount to escrow with the vote")
	voteCmd.MarkFlagRequired("stake")

	reportCmd.AddCommand(reportShowCmd)
}
