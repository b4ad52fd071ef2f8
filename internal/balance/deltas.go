package balance

import "github.com/dgallion1/bracecheck/internal/block"

// LineDelta is the net bracket change on one line and the balance after it.
type LineDelta struct {
	Line           int `json:"line" yaml:"line"`
	Brace          int `json:"brace" yaml:"brace"`
	Paren          int `json:"paren" yaml:"paren"`
	Bracket        int `json:"bracket,omitempty" yaml:"bracket,omitempty"`
	BraceBalance   int `json:"brace_balance" yaml:"brace_balance"`
	ParenBalance   int `json:"paren_balance" yaml:"paren_balance"`
	BracketBalance int `json:"bracket_balance,omitempty" yaml:"bracket_balance,omitempty"`
}

func (d LineDelta) changed() bool {
	return d.Brace != 0 || d.Paren != 0 || d.Bracket != 0
}

// LineDeltas walks text line by line and returns an entry for every line on
// which an enabled bracket family changed. Balances are raw open minus close
// counts and may go negative.
func (c *Checker) LineDeltas(text string) []LineDelta {
	var out []LineDelta
	cur := LineDelta{Line: 1}
	var braces, parens, brackets int

	flush := func() {
		braces += cur.Brace
		parens += cur.Paren
		brackets += cur.Bracket
		if cur.changed() {
			cur.BraceBalance = braces
			cur.ParenBalance = parens
			cur.BracketBalance = brackets
			out = append(out, cur)
		}
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\n' {
			flush()
			cur = LineDelta{Line: cur.Line + 1}
			continue
		}
		k, ok := block.KindOf(ch)
		if !ok || !c.enabled[family(k)] {
			continue
		}
		step := -1
		if k.IsOpen() {
			step = 1
		}
		switch k.Family() {
		case block.OpenBrace:
			cur.Brace += step
		case block.OpenParen:
			cur.Paren += step
		case block.OpenBracket:
			cur.Bracket += step
		}
	}
	flush()
	return out
}
