package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineHints(t *testing.T) {
	text := "if (a) {\n  b();\n} else {\n  c();\n}\nelse{\nfoo(bar(1)));\n"

	got := LineHints(text)

	want := []Hint{
		{Line: 3, Kind: HintElseChain, Text: "} else {"},
		{Line: 5, Kind: HintLoneBrace, Text: "}"},
		{Line: 6, Kind: HintElseOpen, Text: "else{"},
		{Line: 7, Kind: HintDoubleCloseParen, Text: "foo(bar(1)));"},
	}
	assert.Equal(t, want, got)
}

func TestLineHints_MultiplePerLine(t *testing.T) {
	got := LineHints("}else{ f(g())")

	kinds := make([]HintKind, 0, len(got))
	for _, h := range got {
		kinds = append(kinds, h.Kind)
	}
	assert.Equal(t, []HintKind{HintElseChain, HintDoubleCloseParen}, kinds)
}

func TestLineHints_NoneForPlainCode(t *testing.T) {
	assert.Empty(t, LineHints("var a = 1;\nvar b = [a];\n"))
	assert.Empty(t, LineHints(""))
}
