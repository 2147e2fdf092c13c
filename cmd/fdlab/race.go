package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bamsammich/fdlab/internal/race"
	"github.com/bamsammich/fdlab/internal/stats"
	"github.com/bamsammich/fdlab/internal/ui"
)

func newRaceCmd(a *app) *cobra.Command {
	var (
		atomic bool
		window time.Duration
		keep   bool
	)

	cmd := &cobra.Command{
		Use:   "race [PATH]",
		Short: "Race two exclusive creates on one path and report who won",
		Long: `Start two callers creating the same path. With --atomic both use
O_CREAT|O_EXCL and exactly one wins. Without it the first caller checks,
sleeps for --window and then creates, while the second creates during the
sleep, so both report success.

PATH must not exist; an existing file is refused and left alone. It
defaults to a fresh name in the temp directory. A file the race created is
removed afterwards unless --keep is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("window") {
				w, err := a.cfg.Defaults.Window()
				if err != nil {
					return err
				}
				if w > 0 {
					window = w
				}
			}

			path := filepath.Join(os.TempDir(), "fdlab-race-"+uuid.NewString())
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Lstat(path); err == nil {
				return fmt.Errorf("%s already exists; race needs a path nobody has created", path)
			} else if !os.IsNotExist(err) {
				return failed("stat failed", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			out, err := race.Run(ctx, race.Config{
				Path:   path,
				Atomic: atomic,
				Window: window,
				Stats:  collector,
			})
			if !keep && out.Created > 0 {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					slog.Warn("could not remove race file", "path", path, "error", err)
				}
			}
			if err != nil {
				return failed("race aborted", err)
			}
			if out.Err != nil {
				slog.Error("caller failed", "path", path, "error", out.Err)
			}
			fmt.Fprintln(a.stdout, ui.RaceSummary(out, atomic, a.term.Styled))
			slog.Debug("race stats", "stats", collector.Snapshot().String())

			if out.Failed > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&atomic, "atomic", false, "race O_CREAT|O_EXCL instead of check-then-create")
	cmd.Flags().DurationVar(&window, "window", race.DefaultWindow, "racy caller's pause between check and create")
	cmd.Flags().BoolVar(&keep, "keep", false, "leave the raced file in place")
	return cmd
}
