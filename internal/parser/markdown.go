package parser

import (
	"strings"

	"github.com/dgallion1/bracecheck/internal/block"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ScriptLanguages are the fence info strings treated as checkable code.
var ScriptLanguages = []string{"js", "javascript", "jsx", "mjs", "cjs", "ts", "typescript", "tsx", "json"}

// MarkdownExtractor collects fenced code blocks using goldmark.
type MarkdownExtractor struct {
	languages map[string]bool
	md        goldmark.Markdown
}

// NewMarkdownExtractor keeps fences whose language is in langs
// (case-insensitive). With no langs, ScriptLanguages is used.
func NewMarkdownExtractor(langs ...string) *MarkdownExtractor {
	if len(langs) == 0 {
		langs = ScriptLanguages
	}
	set := make(map[string]bool, len(langs))
	for _, l := range langs {
		set[strings.ToLower(l)] = true
	}
	return &MarkdownExtractor{languages: set, md: goldmark.New()}
}

func (e *MarkdownExtractor) Extract(src string) []block.CodeBlock {
	source := []byte(src)
	doc := e.md.Parser().Parse(text.NewReader(source))

	blocks := []block.CodeBlock{}
	lines := lineCounter{src: src}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(fence.Language(source)))
		if !e.languages[lang] {
			return ast.WalkSkipChildren, nil
		}

		var buf strings.Builder
		start := -1
		segs := fence.Lines()
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			if i == 0 {
				start = seg.Start
			}
			buf.Write(seg.Value(source))
		}
		if start < 0 {
			// Empty fence: anchor the block on the line after the info string.
			start = fence.Info.Segment.Stop
			if nl := strings.IndexByte(src[start:], '\n'); nl >= 0 {
				start += nl + 1
			}
		}

		blocks = append(blocks, block.CodeBlock{
			Index:       len(blocks),
			Text:        buf.String(),
			StartOffset: start,
			StartLine:   lines.lineAt(start),
			Language:    lang,
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}
