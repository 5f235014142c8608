package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	lgerrors "layerguard/internal/core/errors"
)

// Exit codes returned by Execute.
const (
	ExitOK         = 0
	ExitViolations = 1
	ExitUsage      = 2
)

// exitError carries an exit code through cobra. Silent errors have already
// been reported on stdout.
type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: ExitUsage, err: err}
}

// failed ends a command with exit code 1 without printing anything more.
func failed(msg string) error {
	return &exitError{code: ExitViolations, err: errors.New(msg), silent: true}
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func newRootCmd() *cobra.Command {
	s := &session{}
	cmd := &cobra.Command{
		Use:   "layerguard",
		Short: "Enforce architecture layers in JavaScript and TypeScript projects",
		Long: "layerguard checks a project's import graph against the layers declared in its " +
			"architecture document and reports boundary violations, cycles, business logic " +
			"in components and data fetching in UI code.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			s.teardown(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Architecture document (default: layerguard.{toml,yaml,yml,json} in the project root)")
	flags.String("settings", "", "Runtime settings file")
	flags.Int("workers", runtime.GOMAXPROCS(0), "Files parsed and checked in parallel")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolP("verbose", "v", false, "Shorthand for --log-level=debug")
	flags.String("history-path", ".layerguard/history.db", "History database, relative to the project root")
	flags.String("otlp-endpoint", "", "OTLP gRPC endpoint for traces, e.g. localhost:4317")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.AddCommand(newCheckCmd(s))
	cmd.AddCommand(newWatchCmd(s))
	cmd.AddCommand(newInitCmd(s))
	cmd.AddCommand(newGenerateCmd(s))
	cmd.AddCommand(newValidateCmd(s))
	cmd.AddCommand(newTraceCmd(s))
	cmd.AddCommand(newGraphCmd(s))
	cmd.AddCommand(newHistoryCmd(s))
	cmd.AddCommand(newMCPCmd(s))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI until it finishes or receives SIGINT/SIGTERM and
// returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	return exitCode(cmd.ErrOrStderr(), err)
}

func exitCode(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if !exit.silent {
			fmt.Fprintf(w, "Error: %v\n", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	switch {
	case lgerrors.IsCode(err, lgerrors.CodeConfig),
		lgerrors.IsCode(err, lgerrors.CodeValidationError),
		strings.HasPrefix(err.Error(), "unknown command"):
		return ExitUsage
	}
	return ExitViolations
}
