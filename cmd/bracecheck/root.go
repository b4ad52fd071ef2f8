package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/bracecheck/internal/config"
)

// Exit statuses.
const (
	exitClean       = 0
	exitDirty       = 1
	exitUnavailable = 2
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// errDirty reports unbalanced input; the report itself is the message.
var errDirty = &exitError{code: exitDirty}

// app holds state shared by subcommands once configuration is loaded.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     config.Config
	log     *slog.Logger
	stdin   io.Reader
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bracecheck",
		Short: "Find unbalanced braces and parentheses in inline scripts",
		Long: `bracecheck extracts the <script> blocks of HTML templates (and JavaScript
fences of Markdown files, or whole script files), scans each block for brace
and parenthesis nesting, and reports the line of every unmatched token.

The scan is lexical: brackets inside strings, comments and regular
expressions are counted like any other.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./bracecheck.yaml)")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "Log format (json, text)")

	root.AddCommand(newCheckCmd(a), newServeCmd(a), newVersionCmd())
	return root
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return &exitError{code: exitUnavailable, err: err}
	}
	for key, flag := range map[string]string{"log.level": "log-level", "log.format": "log-format"} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}

	cfg := config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		return &exitError{code: exitUnavailable, err: fmt.Errorf("invalid configuration: %w", err)}
	}
	a.v = v
	a.cfg = cfg
	a.log = cfg.NewLogger()
	return nil
}

// run executes the command line and maps the outcome to an exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitClean
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, "bracecheck:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(stderr, "bracecheck:", err)
	return exitUnavailable
}
