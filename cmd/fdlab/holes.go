package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fdlab/internal/fileio"
	"github.com/bamsammich/fdlab/internal/ui"
)

func newHolesCmd(a *app) *cobra.Command {
	var (
		width   int
		mapOnly bool
	)

	cmd := &cobra.Command{
		Use:   "holes FILE",
		Short: "Show the data and hole segments of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			fi, err := os.Stat(path)
			if err != nil {
				return failed("stat failed", err)
			}
			segs, err := fileio.DetectSegments(path)
			if err != nil {
				return failed("segment scan failed", err)
			}

			if width <= 0 {
				width = a.term.Width
			}
			if !mapOnly {
				fmt.Fprint(a.stdout, ui.SegmentTable(segs))
			}
			fmt.Fprintln(a.stdout, ui.SegmentMap(segs, fi.Size(), width, a.term.Styled))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "map width in cells (default: terminal width)")
	cmd.Flags().BoolVar(&mapOnly, "map", false, "print only the map")
	return cmd
}
