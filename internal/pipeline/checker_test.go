package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/bracecheck/internal/balance"
	"github.com/dgallion1/bracecheck/internal/block"
	"github.com/dgallion1/bracecheck/internal/parser"
	"github.com/dgallion1/bracecheck/internal/report"
)

type recordingObserver struct {
	mu        sync.Mutex
	extracted int
	checked   []int
}

func (o *recordingObserver) Extracted(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extracted = n
}

func (o *recordingObserver) Checked(r block.BlockReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checked = append(o.checked, r.BlockIndex)
}

func TestCheckDocument_HTML(t *testing.T) {
	c := NewChecker(Options{MaxConcurrent: 4}, nil, NewScanStats(0), nil)
	src := block.SourceDocument{
		Name: "page.html",
		Text: "<p>\n<script>\nfunction f() {\n</script>\n<script>g()</script>",
	}
	obs := &recordingObserver{}

	doc, err := c.CheckDocument(context.Background(), src, parser.FormatHTML, obs)
	require.NoError(t, err)

	assert.Equal(t, "page.html", doc.Name)
	assert.Equal(t, report.Dirty, doc.Verdict)
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, 1, doc.Blocks[0].Report.BraceMismatchCount)
	assert.Equal(t, 2, doc.Blocks[0].StartLine)
	assert.True(t, doc.Blocks[1].Report.Clean())

	assert.Equal(t, 2, obs.extracted)
	assert.ElementsMatch(t, []int{0, 1}, obs.checked)
	assert.Equal(t, 1, c.Stats().Snapshot().Count)
}

func TestCheckDocument_EmptyDocumentIsClean(t *testing.T) {
	c := NewChecker(Options{}, nil, nil, nil)

	doc, err := c.CheckDocument(context.Background(), block.SourceDocument{Name: "empty.html"}, parser.FormatHTML, nil)
	require.NoError(t, err)
	assert.Equal(t, report.Clean, doc.Verdict)
	assert.Empty(t, doc.Blocks)
}

func TestCheckDocument_HintsAndDeltasOnlyForDirtyBlocks(t *testing.T) {
	c := NewChecker(Options{Hints: true, Deltas: true}, nil, nil, nil)
	src := block.SourceDocument{
		Name: "x.html",
		Text: "<script>if (a) {\n}</script><script>if (a) {\n} else {\n</script>",
	}

	doc, err := c.CheckDocument(context.Background(), src, parser.FormatHTML, nil)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 2)

	assert.Empty(t, doc.Blocks[0].Hints)
	assert.Empty(t, doc.Blocks[0].Deltas)
	assert.NotEmpty(t, doc.Blocks[1].Hints)
	assert.Equal(t, balance.HintElseChain, doc.Blocks[1].Hints[0].Kind)
	assert.NotEmpty(t, doc.Blocks[1].Deltas)
}

func TestCheckDocument_UnsupportedFormat(t *testing.T) {
	c := NewChecker(Options{}, nil, nil, nil)
	_, err := c.CheckDocument(context.Background(), block.SourceDocument{Name: "a"}, parser.Format("docx"), nil)
	assert.ErrorIs(t, err, parser.ErrUnsupportedFormat)
}

func TestCheckBlocks_PreservesOrder(t *testing.T) {
	c := NewChecker(Options{MaxConcurrent: 8}, nil, nil, nil)

	blocks := make([]block.CodeBlock, 200)
	for i := range blocks {
		blocks[i] = block.CodeBlock{Index: i, Text: strings.Repeat("{", i%5)}
	}

	reports, err := c.CheckBlocks(context.Background(), blocks, nil)
	require.NoError(t, err)
	require.Len(t, reports, len(blocks))
	for i, r := range reports {
		assert.Equal(t, i, r.BlockIndex)
		assert.Equal(t, i%5, r.BraceMismatchCount)
	}
}

func TestCheckBlocks_Cancelled(t *testing.T) {
	c := NewChecker(Options{}, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CheckBlocks(ctx, []block.CodeBlock{{Text: "{"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckDocuments_InputOrder(t *testing.T) {
	c := NewChecker(Options{MaxConcurrent: 3}, nil, nil, nil)

	var inputs []Input
	for i := range 10 {
		text := "f()"
		if i%2 == 1 {
			text = "f("
		}
		inputs = append(inputs, Input{
			Doc:    block.SourceDocument{Name: fmt.Sprintf("f%d.js", i), Text: text},
			Format: parser.FormatScript,
		})
	}

	docs, err := c.CheckDocuments(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, docs, 10)
	for i, d := range docs {
		assert.Equal(t, fmt.Sprintf("f%d.js", i), d.Name)
		if i%2 == 1 {
			assert.Equal(t, report.Dirty, d.Verdict)
		} else {
			assert.Equal(t, report.Clean, d.Verdict)
		}
	}
}
