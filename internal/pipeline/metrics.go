package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dgallion1/bracecheck/internal/report"
)

const meterName = "github.com/dgallion1/bracecheck/pipeline"

// Metrics records checking activity through OpenTelemetry instruments.
// A nil *Metrics records nothing.
type Metrics struct {
	documents  metric.Int64Counter
	blocks     metric.Int64Counter
	mismatches metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewMetrics creates the instruments on provider's meter.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	documents, err := meter.Int64Counter(
		"bracecheck_documents_total",
		metric.WithDescription("Total number of documents checked"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create documents counter: %w", err)
	}

	blocks, err := meter.Int64Counter(
		"bracecheck_blocks_total",
		metric.WithDescription("Total number of code blocks checked"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blocks counter: %w", err)
	}

	mismatches, err := meter.Int64Counter(
		"bracecheck_mismatches_total",
		metric.WithDescription("Total number of unmatched bracket tokens found"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mismatches counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"bracecheck_check_duration_seconds",
		metric.WithDescription("Duration of whole-document checks"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &Metrics{
		documents:  documents,
		blocks:     blocks,
		mismatches: mismatches,
		duration:   duration,
	}, nil
}

// DefaultMetrics uses the global meter provider, which is a no-op unless the
// process installs one.
func DefaultMetrics() (*Metrics, error) {
	return NewMetrics(otel.GetMeterProvider())
}

// RecordDocument records one checked document.
func (m *Metrics) RecordDocument(ctx context.Context, format string, doc report.Document, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("verdict", string(doc.Verdict)),
	)
	m.documents.Add(ctx, 1, attrs)
	m.blocks.Add(ctx, int64(len(doc.Blocks)), attrs)
	m.mismatches.Add(ctx, int64(doc.Mismatches()), attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
