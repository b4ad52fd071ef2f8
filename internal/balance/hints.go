package balance

import "strings"

// HintKind labels a structural pattern worth a second look when a block
// does not balance.
type HintKind string

const (
	HintElseChain        HintKind = "else-chain"
	HintLoneBrace        HintKind = "lone-brace"
	HintElseOpen         HintKind = "else-open"
	HintDoubleCloseParen HintKind = "double-close-paren"
)

// Hint is an advisory note about one line. Hints never affect the verdict.
type Hint struct {
	Line int      `json:"line" yaml:"line"`
	Kind HintKind `json:"kind" yaml:"kind"`
	Text string   `json:"text" yaml:"text"`
}

// LineHints flags lines whose shape commonly hides a stray or missing
// bracket. A line may produce several hints.
func LineHints(text string) []Hint {
	var out []Hint
	line := 0
	rest := text
	for more := true; more; {
		var raw string
		raw, rest, more = strings.Cut(rest, "\n")
		line++
		t := strings.TrimSpace(raw)
		if t == "" {
			continue
		}
		if strings.Contains(t, "} else") || strings.Contains(t, "}else") {
			out = append(out, Hint{Line: line, Kind: HintElseChain, Text: t})
		}
		if t == "}" || t == "{" {
			out = append(out, Hint{Line: line, Kind: HintLoneBrace, Text: t})
		}
		if strings.HasPrefix(t, "else {") || strings.HasPrefix(t, "else{") {
			out = append(out, Hint{Line: line, Kind: HintElseOpen, Text: t})
		}
		if strings.HasSuffix(t, "))") || strings.Contains(t, ")));") {
			out = append(out, Hint{Line: line, Kind: HintDoubleCloseParen, Text: t})
		}
	}
	return out
}
