package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a meter provider backed by a manual reader.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})
	return reader, provider
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumFor returns the counter value for the datapoint carrying key=value.
func sumFor(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")

	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, provider := setupMetricsTest(t)
	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	defer otel.SetMeterProvider(original)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordListener(t *testing.T) {
	reader, provider := setupMetricsTest(t)
	m, err := NewMetricsRecorderFromProvider(provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordListener(ctx, "OrderPlaced", "Mailer", 50*time.Millisecond, nil)
	m.RecordListener(ctx, "OrderPlaced", "Mailer", 10*time.Millisecond, nil)
	m.RecordListener(ctx, "OrderPlaced", "Auditor", 5*time.Millisecond, errors.New("audit failed"))

	rm := collectMetrics(t, reader)

	t.Run("counts invocations", func(t *testing.T) {
		inv := findMetric(rm, "threadevent.listener.invocations")
		assert.Equal(t, int64(2), sumFor(t, inv, "listener", "Mailer"))
		assert.Equal(t, int64(1), sumFor(t, inv, "listener", "Auditor"))
	})

	t.Run("records latency", func(t *testing.T) {
		lat := findMetric(rm, "threadevent.listener.latency_ms")
		require.NotNil(t, lat)
		hist, ok := lat.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("counts errors only on failure", func(t *testing.T) {
		errs := findMetric(rm, "threadevent.listener.errors")
		assert.Equal(t, int64(1), sumFor(t, errs, "listener", "Auditor"))
		assert.Equal(t, int64(0), sumFor(t, errs, "listener", "Mailer"))
	})
}

func TestRecordPublish(t *testing.T) {
	reader, provider := setupMetricsTest(t)
	m, err := NewMetricsRecorderFromProvider(provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordPublish(ctx, "OrderPlaced", 3, 20*time.Millisecond, nil)
	m.RecordPublish(ctx, "OrderPlaced", 3, 5*time.Millisecond, errors.New("aborted"))

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumFor(t, findMetric(rm, "threadevent.publish.count"), "event.type", "OrderPlaced"))
	assert.Equal(t, int64(1), sumFor(t, findMetric(rm, "threadevent.publish.errors"), "event.type", "OrderPlaced"))

	lat := findMetric(rm, "threadevent.publish.latency_ms")
	require.NotNil(t, lat)
	hist, ok := lat.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordPublish(context.Background(), "", 0, 0, errors.New("x"))
		m.RecordListener(context.Background(), "", "", 0, nil)
	})
}
