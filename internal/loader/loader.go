// Package loader turns command-line inputs into source documents.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dgallion1/bracecheck/internal/block"
	"github.com/dgallion1/bracecheck/internal/parser"
)

// Stdin is the input name that reads standard input.
const Stdin = "-"

// ErrInputUnavailable wraps every failure to locate or read an input.
var ErrInputUnavailable = errors.New("input unavailable")

// Resolve expands inputs into file paths in argument order. Glob patterns
// (including **) are expanded with sorted matches, directories are walked
// for files with a supported extension, and "-" passes through. A pattern
// or directory that yields nothing is an error.
func Resolve(inputs []string) ([]string, error) {
	var out []string
	seen := map[string]struct{}{}
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, in := range inputs {
		in = strings.TrimSpace(in)
		switch {
		case in == "":
			continue
		case in == Stdin:
			add(in)
		case hasMeta(in):
			matches, err := doublestar.FilepathGlob(in)
			if err != nil {
				return nil, fmt.Errorf("%w: bad pattern %q: %v", ErrInputUnavailable, in, err)
			}
			slices.Sort(matches)
			n := 0
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && !info.IsDir() {
					add(m)
					n++
				}
			}
			if n == 0 {
				return nil, fmt.Errorf("%w: no files match %q", ErrInputUnavailable, in)
			}
		default:
			info, err := os.Stat(in)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInputUnavailable, err)
			}
			if !info.IsDir() {
				add(in)
				continue
			}
			files, err := walkDir(in)
			if err != nil {
				return nil, err
			}
			if len(files) == 0 {
				return nil, fmt.Errorf("%w: no supported files under %s", ErrInputUnavailable, in)
			}
			for _, f := range files {
				add(f)
			}
		}
	}
	return out, nil
}

func walkDir(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", ErrInputUnavailable, dir, err)
	}
	var files []string
	for _, m := range matches {
		if parser.IsSupportedExtension(m) {
			files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
		}
	}
	slices.Sort(files)
	return files, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// Load reads one input. stdin is consulted only for "-".
func Load(path string, stdin io.Reader) (block.SourceDocument, error) {
	if path == Stdin {
		if stdin == nil {
			return block.SourceDocument{}, fmt.Errorf("%w: no standard input", ErrInputUnavailable)
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return block.SourceDocument{}, fmt.Errorf("%w: read stdin: %v", ErrInputUnavailable, err)
		}
		return block.SourceDocument{Name: Stdin, Text: string(data)}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return block.SourceDocument{}, fmt.Errorf("%w: %v", ErrInputUnavailable, err)
	}
	return block.SourceDocument{Name: path, Text: string(data)}, nil
}
