// Package balance checks brace and parenthesis nesting in code blocks.
//
// The scan is purely lexical: a bracket inside a string literal, comment,
// regular expression or template substitution counts exactly like one in code.
package balance

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dgallion1/bracecheck/internal/block"
)

// DefaultKinds are the bracket families checked when none are configured.
var DefaultKinds = []block.Kind{block.OpenBrace, block.OpenParen}

const families = 3

// Checker matches bracket pairs of the configured families.
type Checker struct {
	enabled [families]bool
}

// New returns a Checker for the given bracket families. Either member of a
// pair selects the family. With no arguments DefaultKinds is used.
func New(kinds ...block.Kind) *Checker {
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}
	c := &Checker{}
	for _, k := range kinds {
		c.enabled[family(k)] = true
	}
	return c
}

var defaultChecker = New()

// ParseKinds maps family names (brace, paren, bracket) to opening kinds.
func ParseKinds(names []string) ([]block.Kind, error) {
	var out []block.Kind
	for _, n := range names {
		switch n {
		case "brace", "braces":
			out = append(out, block.OpenBrace)
		case "paren", "parens":
			out = append(out, block.OpenParen)
		case "bracket", "brackets":
			out = append(out, block.OpenBracket)
		default:
			return nil, fmt.Errorf("unknown bracket family %q", n)
		}
	}
	return out, nil
}

// Check runs the default Checker (braces and parentheses) over b.
func Check(b block.CodeBlock) block.BlockReport {
	return defaultChecker.Check(b)
}

// Enabled reports whether the family of k is checked.
func (c *Checker) Enabled(k block.Kind) bool {
	return c.enabled[family(k)]
}

// Kinds returns the opening kind of each enabled family.
func (c *Checker) Kinds() []block.Kind {
	var out []block.Kind
	for f, on := range c.enabled {
		if on {
			out = append(out, block.Kind(f*2))
		}
	}
	return out
}

// Scan calls visit for every bracket character of an enabled family, in order.
func (c *Checker) Scan(text string, visit func(block.BracketEvent)) {
	line := 1
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\n' {
			line++
			continue
		}
		k, ok := block.KindOf(ch)
		if !ok || !c.enabled[family(k)] {
			continue
		}
		visit(block.BracketEvent{Kind: k, Line: line, Column: i})
	}
}

// Check matches brackets in b under LIFO discipline, one stack per family.
// A closer with an empty stack is recorded at its own line; openers left on
// a stack at the end are reported bottom-first.
func (c *Checker) Check(b block.CodeBlock) block.BlockReport {
	var stacks [families][]block.UnmatchedToken
	closes := []block.UnmatchedToken{}

	c.Scan(b.Text, func(ev block.BracketEvent) {
		f := family(ev.Kind)
		tok := block.UnmatchedToken{Kind: ev.Kind, Line: ev.Line, Column: ev.Column}
		if ev.Kind.IsOpen() {
			stacks[f] = append(stacks[f], tok)
			return
		}
		if n := len(stacks[f]); n > 0 {
			stacks[f] = stacks[f][:n-1]
			return
		}
		closes = append(closes, tok)
	})

	total := 0
	for _, s := range stacks {
		total += len(s)
	}
	opens := make([]block.UnmatchedToken, 0, total)
	for _, s := range stacks {
		opens = append(opens, s...)
	}
	// Each stack is already in column order; merging by column keeps push
	// order within a family.
	slices.SortFunc(opens, func(a, b block.UnmatchedToken) int {
		return cmp.Compare(a.Column, b.Column)
	})

	r := block.BlockReport{
		BlockIndex:      b.Index,
		UnmatchedOpens:  opens,
		UnmatchedCloses: closes,
	}
	for _, list := range [][]block.UnmatchedToken{opens, closes} {
		for _, t := range list {
			switch t.Kind.Family() {
			case block.OpenBrace:
				r.BraceMismatchCount++
			case block.OpenParen:
				r.ParenMismatchCount++
			case block.OpenBracket:
				r.BracketMismatchCount++
			}
		}
	}
	return r
}

func family(k block.Kind) int {
	return int(k.Family()) / 2
}
