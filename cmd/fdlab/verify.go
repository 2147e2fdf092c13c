package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fdlab/internal/ui"
	"github.com/bamsammich/fdlab/internal/verify"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		digest      string
		strictHoles bool
	)

	cmd := &cobra.Command{
		Use:   "verify SRC DST",
		Short: "Check that DST matches SRC in content and length",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("digest") && a.cfg.Defaults.Digest != nil {
				digest = *a.cfg.Defaults.Digest
			}
			algo, err := verify.ParseAlgorithm(digest)
			if err != nil {
				return err
			}

			report, err := verify.Compare(args[0], args[1], algo)
			if err != nil {
				return failed("verify failed", err)
			}
			if !a.quiet {
				fmt.Fprintln(a.stdout, ui.VerifySummary(report, a.term.Styled))
			}
			slog.Debug("verify report",
				"src_size", report.SrcSize, "dst_size", report.DstSize,
				"src_segments", len(report.SrcSegments), "dst_segments", len(report.DstSegments))

			if !report.ContentEqual() || (strictHoles && !report.HolesMatch()) {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&digest, "digest", "blake3", "content digest (blake3 or xxhash)")
	cmd.Flags().BoolVar(&strictHoles, "strict-holes", false, "also require identical hole layout")
	return cmd
}
