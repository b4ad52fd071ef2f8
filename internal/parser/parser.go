package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bracecheck/internal/block"
)

// Extractor pulls code blocks out of a source document.
// Extraction never fails; a document without code yields an empty slice.
type Extractor interface {
	Extract(src string) []block.CodeBlock
}

// Format names a family of source documents.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatScript   Format = "script"
)

// Strategy selects how HTML script regions are located.
type Strategy string

const (
	StrategyScan      Strategy = "scan"
	StrategyTokenizer Strategy = "tokenizer"
)

// Options tunes extractor construction.
type Options struct {
	IncludeTags bool     // Keep <script> and </script> in block text
	Strategy    Strategy // HTML only; defaults to StrategyScan
	Languages   []string // Markdown fence languages; defaults to ScriptLanguages
}

var ErrUnsupportedFormat = errors.New("unsupported format")

// SupportedExtensions maps file extensions to their format.
var SupportedExtensions = map[string]Format{
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".xhtml":    FormatHTML,
	".tmpl":     FormatHTML,
	".jinja":    FormatHTML,
	".j2":       FormatHTML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".js":       FormatScript,
	".mjs":      FormatScript,
	".cjs":      FormatScript,
	".jsx":      FormatScript,
	".ts":       FormatScript,
	".tsx":      FormatScript,
	".json":     FormatScript,
}

// FormatFor returns the format implied by a filename's extension.
func FormatFor(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := SupportedExtensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatHTML, FormatMarkdown, FormatScript:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ForFormat returns the extractor for f.
func ForFormat(f Format, opts Options) (Extractor, error) {
	switch f {
	case FormatHTML:
		switch opts.Strategy {
		case "", StrategyScan:
			return &ScriptScanner{IncludeTags: opts.IncludeTags}, nil
		case StrategyTokenizer:
			return &TokenizerExtractor{IncludeTags: opts.IncludeTags}, nil
		default:
			return nil, fmt.Errorf("unknown html strategy: %s", opts.Strategy)
		}
	case FormatMarkdown:
		return NewMarkdownExtractor(opts.Languages...), nil
	case FormatScript:
		return &WholeFile{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	f, err := FormatFor(filename)
	if err != nil {
		return nil, err
	}
	return ForFormat(f, opts)
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	_, err := FormatFor(filename)
	return err == nil
}

// lineCounter converts increasing byte offsets into 1-based line numbers
// without rescanning the document from the start.
type lineCounter struct {
	src  string
	pos  int
	line int
}

func (lc *lineCounter) lineAt(off int) int {
	if lc.line == 0 {
		lc.line = 1
	}
	if off > lc.pos {
		lc.line += strings.Count(lc.src[lc.pos:off], "\n")
		lc.pos = off
	}
	return lc.line
}
