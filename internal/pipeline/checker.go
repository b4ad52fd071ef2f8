package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/bracecheck/internal/balance"
	"github.com/dgallion1/bracecheck/internal/block"
	"github.com/dgallion1/bracecheck/internal/parser"
	"github.com/dgallion1/bracecheck/internal/report"
)

// Options controls how documents are extracted and checked.
type Options struct {
	Extract       parser.Options
	Kinds         []block.Kind // bracket families; nil means balance.DefaultKinds
	MaxConcurrent int          // per-document block checks in flight
	Hints         bool         // attach line hints to dirty blocks
	Deltas        bool         // attach per-line deltas to dirty blocks
}

// Observer receives progress from CheckDocument. Checked may be called
// concurrently and in any block order.
type Observer interface {
	Extracted(blocks int)
	Checked(r block.BlockReport)
}

// Input is a loaded document and the format to extract it as.
type Input struct {
	Doc    block.SourceDocument
	Format parser.Format
}

// Checker runs extraction and balance checking for whole documents.
type Checker struct {
	opts    Options
	balance *balance.Checker
	metrics *Metrics
	stats   *ScanStats
	log     *slog.Logger
}

// NewChecker builds a Checker. metrics and stats may be nil.
func NewChecker(opts Options, metrics *Metrics, stats *ScanStats, log *slog.Logger) *Checker {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Checker{
		opts:    opts,
		balance: balance.New(opts.Kinds...),
		metrics: metrics,
		stats:   stats,
		log:     log,
	}
}

// Stats returns the scan latency tracker, if any.
func (c *Checker) Stats() *ScanStats {
	return c.stats
}

// CheckDocument extracts the blocks of src as format and checks each one.
// The returned document lists blocks in source order. obs may be nil.
func (c *Checker) CheckDocument(ctx context.Context, src block.SourceDocument, format parser.Format, obs Observer) (report.Document, error) {
	start := time.Now()

	ex, err := parser.ForFormat(format, c.opts.Extract)
	if err != nil {
		return report.Document{}, err
	}
	blocks := ex.Extract(src.Text)
	if obs != nil {
		obs.Extracted(len(blocks))
	}

	reports, err := c.CheckBlocks(ctx, blocks, obs)
	if err != nil {
		return report.Document{}, fmt.Errorf("check %s: %w", src.Name, err)
	}

	doc := report.NewDocument(src.Name, blocks, reports)
	if c.opts.Hints || c.opts.Deltas {
		for i := range doc.Blocks {
			if doc.Blocks[i].Report.Clean() {
				continue
			}
			if c.opts.Hints {
				doc.Blocks[i].Hints = balance.LineHints(blocks[i].Text)
			}
			if c.opts.Deltas {
				doc.Blocks[i].Deltas = c.balance.LineDeltas(blocks[i].Text)
			}
		}
	}

	elapsed := time.Since(start)
	c.stats.Record(elapsed)
	c.metrics.RecordDocument(ctx, string(format), doc, elapsed)
	c.log.Debug("checked document",
		"name", src.Name,
		"format", format,
		"blocks", len(blocks),
		"verdict", doc.Verdict,
		"duration_ms", elapsed.Milliseconds(),
	)
	return doc, nil
}

// CheckBlocks checks blocks concurrently and returns reports in block order.
func (c *Checker) CheckBlocks(ctx context.Context, blocks []block.CodeBlock, obs Observer) ([]block.BlockReport, error) {
	reports := make([]block.BlockReport, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxConcurrent)
	for i, b := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = c.balance.Check(b)
			if obs != nil {
				obs.Checked(reports[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// CheckDocuments checks every input and returns documents in input order.
func (c *Checker) CheckDocuments(ctx context.Context, inputs []Input) ([]report.Document, error) {
	docs := make([]report.Document, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxConcurrent)
	for i, in := range inputs {
		g.Go(func() error {
			doc, err := c.CheckDocument(gctx, in.Doc, in.Format, nil)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
