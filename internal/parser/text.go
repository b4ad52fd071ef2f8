package parser

import "github.com/dgallion1/bracecheck/internal/block"

// WholeFile treats an entire script file as a single block.
type WholeFile struct{}

func (WholeFile) Extract(src string) []block.CodeBlock {
	if src == "" {
		return []block.CodeBlock{}
	}
	return []block.CodeBlock{{
		Text:      src,
		StartLine: 1,
		Language:  "javascript",
	}}
}
