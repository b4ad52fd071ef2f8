package block

import "fmt"

// SourceDocument is the loaded text of one input file.
type SourceDocument struct {
	Name string // File name or "-" for stdin
	Text string
}

// CodeBlock is one extracted region of code, ready for balance checking.
type CodeBlock struct {
	Index       int    // Ordinal among extracted blocks, 0-based
	Text        string // Block content
	StartOffset int    // Byte offset of Text within the source document
	StartLine   int    // 1-based document line on which Text begins
	Language    string // "javascript" for script tags, fence info for Markdown
}

// DocumentLine maps a 1-based line within the block to a line in the source document.
func (b CodeBlock) DocumentLine(line int) int {
	if b.StartLine <= 0 {
		return line
	}
	return b.StartLine + line - 1
}

// Kind identifies a bracket character.
type Kind int

const (
	OpenBrace Kind = iota
	CloseBrace
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
)

var kindNames = [...]string{
	OpenBrace:    "open_brace",
	CloseBrace:   "close_brace",
	OpenParen:    "open_paren",
	CloseParen:   "close_paren",
	OpenBracket:  "open_bracket",
	CloseBracket: "close_bracket",
}

var kindChars = [...]byte{'{', '}', '(', ')', '[', ']'}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Char returns the bracket character for k.
func (k Kind) Char() byte {
	return kindChars[k]
}

// IsOpen reports whether k is a left token.
func (k Kind) IsOpen() bool {
	return k%2 == 0
}

// Family returns the opening kind of the pair k belongs to.
func (k Kind) Family() Kind {
	return k &^ 1
}

// MarshalText renders k by name so JSON and YAML output stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown bracket kind %q", text)
}

// KindOf returns the bracket kind of c, if any.
func KindOf(c byte) (Kind, bool) {
	switch c {
	case '{':
		return OpenBrace, true
	case '}':
		return CloseBrace, true
	case '(':
		return OpenParen, true
	case ')':
		return CloseParen, true
	case '[':
		return OpenBracket, true
	case ']':
		return CloseBracket, true
	}
	return 0, false
}

// BracketEvent is a single bracket character seen during a scan.
type BracketEvent struct {
	Kind   Kind
	Line   int // 1-based
	Column int // Byte offset within the block
}

// UnmatchedToken is a bracket character that could not be paired.
type UnmatchedToken struct {
	Kind   Kind `json:"kind" yaml:"kind"`
	Line   int  `json:"line" yaml:"line"`
	Column int  `json:"column" yaml:"column"`
}

// BlockReport is the balance verdict for one CodeBlock.
type BlockReport struct {
	BlockIndex           int              `json:"block_index" yaml:"block_index"`
	BraceMismatchCount   int              `json:"brace_mismatch_count" yaml:"brace_mismatch_count"`
	ParenMismatchCount   int              `json:"paren_mismatch_count" yaml:"paren_mismatch_count"`
	BracketMismatchCount int              `json:"bracket_mismatch_count,omitempty" yaml:"bracket_mismatch_count,omitempty"`
	UnmatchedOpens       []UnmatchedToken `json:"unmatched_opens" yaml:"unmatched_opens"`
	UnmatchedCloses      []UnmatchedToken `json:"unmatched_closes" yaml:"unmatched_closes"`
}

// Clean reports whether no mismatch of any kind was found.
func (r BlockReport) Clean() bool {
	return r.BraceMismatchCount == 0 && r.ParenMismatchCount == 0 && r.BracketMismatchCount == 0
}

// Opens returns the unmatched left tokens of kind k in push order.
func (r BlockReport) Opens(k Kind) []UnmatchedToken {
	return filterKind(r.UnmatchedOpens, k)
}

// Closes returns the unmatched right tokens of kind k in scan order.
func (r BlockReport) Closes(k Kind) []UnmatchedToken {
	return filterKind(r.UnmatchedCloses, k)
}

func filterKind(tokens []UnmatchedToken, k Kind) []UnmatchedToken {
	var out []UnmatchedToken
	for _, t := range tokens {
		if t.Kind == k {
			out = append(out, t)
		}
	}
	return out
}
