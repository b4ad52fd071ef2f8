package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dgallion1/bracecheck/internal/block"
	"github.com/dgallion1/bracecheck/internal/parser"
	"github.com/dgallion1/bracecheck/internal/report"
)

func TestMetrics_RecordDocument(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(provider)
	require.NoError(t, err)

	c := NewChecker(Options{}, m, nil, nil)
	src := block.SourceDocument{Name: "a.html", Text: "<script>{</script><script>)(</script>"}
	_, err = c.CheckDocument(context.Background(), src, parser.FormatHTML, nil)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(1), sums["bracecheck_documents_total"])
	assert.Equal(t, int64(2), sums["bracecheck_blocks_total"])
	assert.Equal(t, int64(3), sums["bracecheck_mismatches_total"])
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordDocument(context.Background(), "html", report.Document{Verdict: report.Clean}, 0)
	})
}

func TestDefaultMetrics(t *testing.T) {
	m, err := DefaultMetrics()
	require.NoError(t, err)
	assert.NotNil(t, m)
}
