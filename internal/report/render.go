package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format: %q", s)
}

// Envelope is the structured form of a multi-document run.
type Envelope struct {
	Verdict   Verdict    `json:"verdict" yaml:"verdict"`
	Documents []Document `json:"documents" yaml:"documents"`
}

// Render writes docs to w in format f, preserving document and block order.
func Render(w io.Writer, f Format, docs []Document) error {
	env := Envelope{Verdict: Overall(docs), Documents: docs}
	if env.Documents == nil {
		env.Documents = []Document{}
	}

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		for _, d := range docs {
			if _, err := io.WriteString(w, d.Text()); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "verdict: %s\n", env.Verdict)
		return err
	default:
		return fmt.Errorf("unknown output format: %q", f)
	}
}
