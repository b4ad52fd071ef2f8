package parser

import (
	"strings"

	"github.com/dgallion1/bracecheck/internal/block"
	"golang.org/x/net/html"
)

// TokenizerExtractor locates script regions with the x/net/html tokenizer.
// It follows HTML tokenization rules, so unlike ScriptScanner it skips
// scripts inside comments and accepts end tags such as "</script >".
type TokenizerExtractor struct {
	IncludeTags bool
}

func (e *TokenizerExtractor) Extract(src string) []block.CodeBlock {
	blocks := []block.CodeBlock{}
	lines := lineCounter{src: src}
	z := html.NewTokenizer(strings.NewReader(src))

	// Tokens are contiguous, so summing raw lengths tracks the byte offset.
	var offset, tagStart, bodyStart int
	inScript := false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return blocks
		}
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			if inScript {
				continue
			}
			if name, _ := z.TagName(); string(name) == "script" {
				inScript = true
				tagStart, bodyStart = start, offset
			}
		case html.EndTagToken:
			if !inScript {
				continue
			}
			if name, _ := z.TagName(); string(name) != "script" {
				continue
			}
			inScript = false
			from, to := bodyStart, start
			if e.IncludeTags {
				from, to = tagStart, offset
			}
			blocks = append(blocks, block.CodeBlock{
				Index:       len(blocks),
				Text:        src[from:to],
				StartOffset: from,
				StartLine:   lines.lineAt(from),
				Language:    "javascript",
			})
		}
	}
}
