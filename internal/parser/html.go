package parser

import (
	"strings"

	"github.com/dgallion1/bracecheck/internal/block"
)

const (
	openTag  = "<script"
	closeTag = "</script>"
)

type scanState int

const (
	outsideScript scanState = iota
	inScriptTag
	inScriptBody
)

// ScriptScanner finds <script> regions with a three-state scan over the
// document. Tag names match ASCII case-insensitively; attributes are skipped
// up to the first '>'. A region ends at the first "</script>" after its
// opening tag, even when that text sits inside a JavaScript string.
// Regions missing either the '>' or the closing tag are dropped.
type ScriptScanner struct {
	IncludeTags bool
}

// Extract returns every complete script region of src in document order.
func Extract(src string) []block.CodeBlock {
	return (&ScriptScanner{}).Extract(src)
}

func (s *ScriptScanner) Extract(src string) []block.CodeBlock {
	blocks := []block.CodeBlock{}
	lines := lineCounter{src: src}

	state := outsideScript
	var pos, tagStart, bodyStart int
	for pos < len(src) {
		switch state {
		case outsideScript:
			i := indexOpenTag(src, pos)
			if i < 0 {
				return blocks
			}
			tagStart = i
			pos = i + len(openTag)
			state = inScriptTag

		case inScriptTag:
			i := strings.IndexByte(src[pos:], '>')
			if i < 0 {
				return blocks
			}
			bodyStart = pos + i + 1
			pos = bodyStart
			state = inScriptBody

		case inScriptBody:
			i := indexFold(src, closeTag, pos)
			if i < 0 {
				return blocks
			}
			end := i + len(closeTag)
			start, stop := bodyStart, i
			if s.IncludeTags {
				start, stop = tagStart, end
			}
			blocks = append(blocks, block.CodeBlock{
				Index:       len(blocks),
				Text:        src[start:stop],
				StartOffset: start,
				StartLine:   lines.lineAt(start),
				Language:    "javascript",
			})
			pos = end
			state = outsideScript
		}
	}
	return blocks
}

// indexOpenTag finds the next "<script" not followed by a name character,
// so "<scripts>" or "<script-x>" are not mistaken for script tags.
func indexOpenTag(src string, from int) int {
	for {
		i := indexFold(src, openTag, from)
		if i < 0 {
			return -1
		}
		next := i + len(openTag)
		if next >= len(src) || !isNameByte(src[next]) {
			return i
		}
		from = i + 1
	}
}

// indexFold is strings.Index from offset from, folding ASCII case only.
// sub must be lower case.
func indexFold(s, sub string, from int) int {
	for i := from; i+len(sub) <= len(s); i++ {
		j := strings.IndexByte(s[i:], sub[0])
		if j < 0 {
			return -1
		}
		i += j
		if hasPrefixFold(s[i:], sub) {
			return i
		}
	}
	return -1
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != prefix[i] {
			return false
		}
	}
	return true
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
