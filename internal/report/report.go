// Package report aggregates block reports into verdicts and renders them.
package report

import (
	"fmt"
	"strings"

	"github.com/dgallion1/bracecheck/internal/balance"
	"github.com/dgallion1/bracecheck/internal/block"
)

// Verdict is the clean/dirty determination for a set of blocks.
type Verdict string

const (
	Clean Verdict = "clean"
	Dirty Verdict = "dirty"
)

// Summarize returns Clean iff no report has a mismatch of any kind.
// An empty sequence is Clean.
func Summarize(reports []block.BlockReport) Verdict {
	for _, r := range reports {
		if !r.Clean() {
			return Dirty
		}
	}
	return Clean
}

// BlockResult is one checked block with its position and advisory notes.
type BlockResult struct {
	Ordinal   int                 `json:"ordinal" yaml:"ordinal"` // 1-based, for display
	StartLine int                 `json:"start_line" yaml:"start_line"`
	Language  string              `json:"language,omitempty" yaml:"language,omitempty"`
	Report    block.BlockReport   `json:"report" yaml:"report"`
	Hints     []balance.Hint      `json:"hints,omitempty" yaml:"hints,omitempty"`
	Deltas    []balance.LineDelta `json:"deltas,omitempty" yaml:"deltas,omitempty"`
}

// Document is the aggregated result for one source document.
type Document struct {
	Name    string        `json:"name" yaml:"name"`
	Verdict Verdict       `json:"verdict" yaml:"verdict"`
	Blocks  []BlockResult `json:"blocks" yaml:"blocks"`
}

// NewDocument pairs blocks with their reports. Both slices are in block order.
func NewDocument(name string, blocks []block.CodeBlock, reports []block.BlockReport) Document {
	doc := Document{Name: name, Blocks: make([]BlockResult, len(reports))}
	for i, r := range reports {
		br := BlockResult{Ordinal: r.BlockIndex + 1, Report: r}
		if i < len(blocks) {
			br.StartLine = blocks[i].StartLine
			br.Language = blocks[i].Language
		}
		doc.Blocks[i] = br
	}
	doc.Verdict = Summarize(reports)
	return doc
}

// Reports returns the block reports of d in block order.
func (d Document) Reports() []block.BlockReport {
	out := make([]block.BlockReport, len(d.Blocks))
	for i, b := range d.Blocks {
		out[i] = b.Report
	}
	return out
}

// Mismatches returns the total mismatch count across all blocks of d.
func (d Document) Mismatches() int {
	n := 0
	for _, b := range d.Blocks {
		n += b.Report.BraceMismatchCount + b.Report.ParenMismatchCount + b.Report.BracketMismatchCount
	}
	return n
}

// Overall folds document verdicts; no documents is Clean.
func Overall(docs []Document) Verdict {
	for _, d := range docs {
		if d.Verdict == Dirty {
			return Dirty
		}
	}
	return Clean
}

// DescribeBlock renders r as human-readable lines: a header with the
// 1-based block ordinal and counts, then one line per unmatched token.
// Closers come first in scan order, then openers per family in push order.
func DescribeBlock(r block.BlockReport) []string {
	return describe(r, func(line int) string { return fmt.Sprintf("line %d", line) })
}

func describe(r block.BlockReport, where func(int) string) []string {
	header := fmt.Sprintf("block %d: braces %d, parens %d", r.BlockIndex+1, r.BraceMismatchCount, r.ParenMismatchCount)
	if r.BracketMismatchCount > 0 {
		header += fmt.Sprintf(", brackets %d", r.BracketMismatchCount)
	}
	if r.Clean() {
		header += " (balanced)"
	}
	lines := []string{header}

	for _, t := range r.UnmatchedCloses {
		lines = append(lines, fmt.Sprintf("  spurious '%c' at %s", t.Kind.Char(), where(t.Line)))
	}
	for _, fam := range []block.Kind{block.OpenBrace, block.OpenParen, block.OpenBracket} {
		for _, t := range r.Opens(fam) {
			lines = append(lines, fmt.Sprintf("  unclosed '%c' opened at %s", t.Kind.Char(), where(t.Line)))
		}
	}
	return lines
}

// Lines renders br, translating block lines to document lines when the
// block's starting line is known.
func (br BlockResult) Lines() []string {
	where := func(line int) string {
		if br.StartLine <= 0 {
			return fmt.Sprintf("line %d", line)
		}
		return fmt.Sprintf("line %d (document line %d)", line, br.StartLine+line-1)
	}
	lines := describe(br.Report, where)
	for _, h := range br.Hints {
		lines = append(lines, fmt.Sprintf("  hint %s at %s: %s", h.Kind, where(h.Line), h.Text))
	}
	for _, d := range br.Deltas {
		lines = append(lines, fmt.Sprintf("  %s: braces %+d (balance %d), parens %+d (balance %d)",
			where(d.Line), d.Brace, d.BraceBalance, d.Paren, d.ParenBalance))
	}
	return lines
}

// Text renders d for a console.
func (d Document) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s: %s (%d blocks)\n", d.Name, d.Verdict, len(d.Blocks))
	for _, b := range d.Blocks {
		for _, l := range b.Lines() {
			sb.WriteString(l)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
