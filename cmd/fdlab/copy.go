package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fdlab/internal/config"
	"github.com/bamsammich/fdlab/internal/fileio"
	"github.com/bamsammich/fdlab/internal/stats"
	"github.com/bamsammich/fdlab/internal/ui"
	"github.com/bamsammich/fdlab/internal/verify"
)

func newCopyCmd(a *app) *cobra.Command {
	var (
		dense      bool
		verifyFlag bool
		digest     string
		bwLimitStr string
	)

	cmd := &cobra.Command{
		Use:   "copy SRC DST",
		Short: "Copy a file, reproducing its holes in the destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("verify") && a.cfg.Defaults.Verify != nil {
				verifyFlag = *a.cfg.Defaults.Verify
			}
			if !cmd.Flags().Changed("bwlimit") && a.cfg.Defaults.BWLimit != nil {
				bwLimitStr = *a.cfg.Defaults.BWLimit
			}
			if !cmd.Flags().Changed("digest") && a.cfg.Defaults.Digest != nil {
				digest = *a.cfg.Defaults.Digest
			}

			algo, err := verify.ParseAlgorithm(digest)
			if err != nil {
				return err
			}

			src, dst := args[0], args[1]
			collector := stats.NewCollector()
			opts := fileio.CopyOptions{Stats: collector}
			if bwLimitStr != "" {
				bps, err := config.ParseSize(bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
				if bps > 0 {
					opts.Limiter = fileio.NewBWLimiter(bps)
				}
			}

			var res fileio.CopyResult
			if dense {
				if opts.Limiter != nil {
					slog.Warn("--bwlimit is ignored with --dense")
				}
				n, err := fileio.PlainCopy(src, dst)
				if err != nil {
					return failed("copy failed", err)
				}
				res.BytesCopied = n
				collector.AddBytesCopied(n)
			} else {
				res, err = fileio.CopyFileWith(src, dst, opts)
				if err != nil {
					return failed("copy failed", err)
				}
			}

			slog.Info("copy complete", "src", src, "dst", dst, "stats", collector.Snapshot().String())
			if !a.quiet {
				fmt.Fprintln(a.stdout, ui.CopySummary(res, collector.Elapsed()))
			}

			if !verifyFlag {
				return nil
			}
			report, err := verify.Compare(src, dst, algo)
			if err != nil {
				return failed("verify failed", err)
			}
			if !a.quiet {
				fmt.Fprintln(a.stdout, ui.VerifySummary(report, a.term.Styled))
			}
			if !report.ContentEqual() || (!dense && !report.HolesMatch()) {
				slog.Error("destination does not match source", "src", src, "dst", dst)
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dense, "dense", false, "copy every byte, writing holes out as zeros")
	cmd.Flags().BoolVar(&verifyFlag, "verify", false, "compare digests and hole layout after copying")
	cmd.Flags().StringVar(&digest, "digest", "blake3", "digest used by --verify (blake3 or xxhash)")
	cmd.Flags().StringVar(&bwLimitStr, "bwlimit", "", "limit write rate (e.g. 100M, 1G)")
	return cmd
}
