package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fdlab/internal/fileio"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		racy   bool
		sleep  bool
		window time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create PATH",
		Short: "Create PATH exclusively, failing if it already exists",
		Long: `Create PATH with O_CREAT|O_EXCL and mode 0600.

With --racy the existence check and the create are two separate opens,
and --sleep pauses between them so another process can slip in.`,
		Args: cobra.ExactArgs(1),
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

			path := args[0]
			var err error
			if racy {
				opts := fileio.BadOpenOptions{}
				if sleep {
					opts.Window = window
				}
				err = fileio.BadExclusiveOpenWith(path, opts)
			} else {
				err = fileio.ExclusiveOpen(path)
			}
			if err != nil {
				return failed("create failed", err)
			}
			if !a.quiet {
				fmt.Fprintf(a.stdout, "created %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&racy, "racy", false, "use the non-atomic check-then-create")
	cmd.Flags().BoolVar(&sleep, "sleep", false, "with --racy, pause between check and create")
	cmd.Flags().DurationVar(&window, "window", fileio.DefaultRaceWindow, "pause used by --sleep")
	return cmd
}
