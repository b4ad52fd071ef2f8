package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bracecheck/internal/balance"
	"github.com/dgallion1/bracecheck/internal/block"
	"github.com/dgallion1/bracecheck/internal/loader"
	"github.com/dgallion1/bracecheck/internal/parser"
	"github.com/dgallion1/bracecheck/internal/pipeline"
	"github.com/dgallion1/bracecheck/internal/report"
)

type checkFlags struct {
	format      string
	brackets    bool
	includeTags bool
	strategy    string
	as          string
	hints       bool
	deltas      bool
}

func newCheckCmd(a *app) *cobra.Command {
	var f checkFlags

	cmd := &cobra.Command{
		Use:   "check [paths or globs...]",
		Short: "Check documents for unbalanced brackets",
		Long: `Check extracts code blocks from each input and reports unmatched brackets.

Inputs may be files, directories (walked for supported extensions), doublestar
globs such as 'templates/**/*.html', or '-' for standard input (HTML unless
--as says otherwise).

Exit status is 0 when every block balances, 1 when any block does not, and 2
when an input cannot be read or has an unsupported format.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args, f)
		},
	}

	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&f.brackets, "brackets", false, "Also check square brackets")
	cmd.Flags().BoolVar(&f.includeTags, "include-tags", false, "Keep <script> tags in block text")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "HTML extraction strategy (scan, tokenizer)")
	cmd.Flags().StringVar(&f.as, "as", "", "Treat every input as this format (html, markdown, script)")
	cmd.Flags().BoolVar(&f.hints, "hints", false, "Show structure hints for unbalanced blocks")
	cmd.Flags().BoolVar(&f.deltas, "deltas", false, "Show per-line bracket deltas for unbalanced blocks")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, args []string, f checkFlags) error {
	out, err := report.ParseFormat(f.format)
	if err != nil {
		return &exitError{code: exitUnavailable, err: err}
	}
	opts, err := a.checkOptions(cmd, f)
	if err != nil {
		return &exitError{code: exitUnavailable, err: err}
	}

	inputs, err := a.loadInputs(args, f.as)
	if err != nil {
		return &exitError{code: exitUnavailable, err: err}
	}

	metrics, err := pipeline.DefaultMetrics()
	if err != nil {
		a.log.Warn("metrics disabled", "error", err)
	}
	checker := pipeline.NewChecker(opts, metrics, nil, a.log)

	docs, err := checker.CheckDocuments(cmd.Context(), inputs)
	if err != nil {
		return err
	}
	if err := report.Render(cmd.OutOrStdout(), out, docs); err != nil {
		return err
	}

	verdict := report.Overall(docs)
	a.log.Debug("check finished", "documents", len(docs), "verdict", verdict)
	if verdict == report.Dirty {
		return errDirty
	}
	return nil
}

// checkOptions merges configuration with flags; flags win when set.
func (a *app) checkOptions(cmd *cobra.Command, f checkFlags) (pipeline.Options, error) {
	kinds, err := balance.ParseKinds(a.cfg.Kinds)
	if err != nil {
		return pipeline.Options{}, err
	}
	if f.brackets {
		kinds = append(kinds, block.OpenBracket)
	}

	opts := pipeline.Options{
		Extract: parser.Options{
			IncludeTags: a.cfg.IncludeTags,
			Strategy:    parser.Strategy(a.cfg.Strategy),
			Languages:   a.cfg.MarkdownLanguages,
		},
		Kinds:         kinds,
		MaxConcurrent: a.cfg.MaxConcurrentChecks,
		Hints:         f.hints,
		Deltas:        f.deltas,
	}
	if cmd.Flags().Changed("include-tags") {
		opts.Extract.IncludeTags = f.includeTags
	}
	if f.strategy != "" {
		switch s := parser.Strategy(f.strategy); s {
		case parser.StrategyScan, parser.StrategyTokenizer:
			opts.Extract.Strategy = s
		default:
			return pipeline.Options{}, fmt.Errorf("unknown strategy %q", f.strategy)
		}
	}
	return opts, nil
}

func (a *app) loadInputs(args []string, as string) ([]pipeline.Input, error) {
	var forced parser.Format
	if as != "" {
		f, err := parser.ParseFormat(as)
		if err != nil {
			return nil, err
		}
		forced = f
	}

	paths, err := loader.Resolve(args)
	if err != nil {
		return nil, err
	}

	inputs := make([]pipeline.Input, 0, len(paths))
	for _, p := range paths {
		format := forced
		if format == "" {
			if p == loader.Stdin {
				format = parser.FormatHTML
			} else if format, err = parser.FormatFor(p); err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
		}
		doc, err := loader.Load(p, a.stdin)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, pipeline.Input{Doc: doc, Format: format})
	}
	return inputs, nil
}
