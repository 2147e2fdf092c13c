package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/fdlab/internal/fileio"
	"github.com/bamsammich/fdlab/internal/stats"
)

// opFlag is a repeatable pflag.Value that parses each --op into the
// script as it is seen, so ops run in command-line order.
type opFlag struct {
	script *fileio.Script
}

var _ pflag.Value = (*opFlag)(nil)

func (*opFlag) String() string { return "" }
func (*opFlag) Type() string   { return "op" }

func (f *opFlag) Set(val string) error {
	op, err := fileio.ParseOp(val)
	if err != nil {
		return err
	}
	*f.script = append(*f.script, op)
	return nil
}

func newSeekCmd(a *app) *cobra.Command {
	var (
		flagOps    fileio.Script
		scriptFile string
	)

	cmd := &cobra.Command{
		Use:   "seek FILE [OP...]",
		Short: "Run a script of writes, reads and seeks against one descriptor",
		Long: `Open FILE read-write, creating it if needed, and apply each operation
in order on a single descriptor:

  w:TEXT        write TEXT at the current offset
  r:N[:hex]     read up to N bytes and print them as text or hex
  s:OFFSET      seek to OFFSET from the start of the file

Operations come from --script, then --op, then the positional arguments.`,
		Example: "  fdlab seek data.bin w:abc s:10000 w:xyz s:0 r:3 r:5:hex",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var script fileio.Script
			if scriptFile != "" {
				loaded, err := loadScriptFile(scriptFile)
				if err != nil {
					return err
				}
				script = append(script, loaded...)
			}
			script = append(script, flagOps...)
			positional, err := fileio.ParseScript(args[1:])
			if err != nil {
				return err
			}
			script = append(script, positional...)

			collector := stats.NewCollector()
			runner := fileio.Runner{Diag: a.stdout, Stats: collector}
			if err := runner.Run(args[0], script); err != nil {
				return failed("script failed", err)
			}
			slog.Debug("script complete", "path", args[0], "steps", len(script),
				"stats", collector.Snapshot().String())
			return nil
		},
	}

	cmd.Flags().Var(&opFlag{script: &flagOps}, "op", "operation to run (repeatable)")
	cmd.Flags().StringVar(&scriptFile, "script", "", "YAML script file (- for stdin)")
	return cmd
}

func loadScriptFile(path string) (fileio.Script, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		r = f
	}
	script, err := fileio.LoadScript(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return script, nil
}
