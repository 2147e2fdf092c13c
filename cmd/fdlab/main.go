package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fdlab/internal/config"
	"github.com/bamsammich/fdlab/internal/fileio"
	"github.com/bamsammich/fdlab/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries state shared by all subcommands once the root command's
// pre-run has configured logging and loaded the config file.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	cfg     config.Config
	term    ui.Terminal
	verbose bool
	quiet   bool
	logFile string
	closers []io.Closer
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "fdlab",
		Short: "File descriptor exercises: scripted seeks, hole-preserving copies, exclusive creation",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(a.stdout, "fdlab %s\n", version)
				return nil
			}
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output except errors")
	root.PersistentFlags().StringVar(&a.logFile, "log", "", "write structured JSON log to FILE")

	root.AddCommand(
		newCopyCmd(a),
		newSeekCmd(a),
		newCreateCmd(a),
		newRaceCmd(a),
		newHolesCmd(a),
		newVerifyCmd(a),
		docsCmd,
	)
	return root
}

// setup configures logging, loads the optional config file and applies
// its theme.
func (a *app) setup(cmd *cobra.Command) error {
	logLevel := slog.LevelWarn
	if a.verbose {
		logLevel = slog.LevelDebug
	} else if !a.quiet {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: logLevel})
	var logHandler slog.Handler = textHandler
	if a.logFile != "" {
		lf, err := os.Create(a.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, lf)
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(logHandler).With("cmd", cmd.Name()))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	ui.ApplyTheme(cfg.Theme)

	a.term = ui.ProbeTerminal(a.stdout)
	return nil
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// failed logs err and returns the exit error for an operation failure.
func failed(msg string, err error) error {
	slog.Error(msg, "error", err, "kind", fileio.KindOf(err).String())
	return &exitError{code: 1}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
