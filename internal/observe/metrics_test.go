package observe

import (
	"context"
	"testing"
	"time"

	"github.com/osuushi/guardplan/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumByStatus(t *testing.T, rm metricdata.ResourceMetrics, name string) map[string]int64 {
	t.Helper()
	met := findMetric(rm, name)
	require.NotNil(t, met, "metric %q not found", name)
	sum, ok := met.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %q is not a sum", name)

	byStatus := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value("status")
		byStatus[status.AsString()] += dp.Value
	}
	return byStatus
}

func TestRecordRoom(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRoom(ctx, "ground", 2*time.Millisecond, 12, 3, nil)
	m.RecordRoom(ctx, "ground", time.Millisecond, 0, 2, nil)
	m.RecordRoom(ctx, "ground", time.Millisecond, 40, 9, fault.InvalidGeometry("bowtie"))

	rm := collect(t, reader)
	assert.Equal(t, map[string]int64{"OK": 2, "INVALID_GEOMETRY": 1}, sumByStatus(t, rm, "guardplan.room.results"))

	steiner := findMetric(rm, "guardplan.mesh.steiner_points")
	require.NotNil(t, steiner)
	assert.Equal(t, int64(12), steiner.Data.(metricdata.Sum[int64]).DataPoints[0].Value)

	guards := findMetric(rm, "guardplan.guards")
	require.NotNil(t, guards)
	assert.Equal(t, int64(5), guards.Data.(metricdata.Sum[int64]).DataPoints[0].Value)

	duration := findMetric(rm, "guardplan.room.duration")
	require.NotNil(t, duration)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestFloorInstruments(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.FloorsInFlight.Add(ctx, 1)
	m.FloorsInFlight.Add(ctx, 1)
	m.FloorsInFlight.Add(ctx, -1)
	m.RecordFloor(ctx, 50*time.Millisecond)

	rm := collect(t, reader)
	inFlight := findMetric(rm, "guardplan.floors.in_flight")
	require.NotNil(t, inFlight)
	assert.Equal(t, int64(1), inFlight.Data.(metricdata.Sum[int64]).DataPoints[0].Value)

	floor := findMetric(rm, "guardplan.floor.duration")
	require.NotNil(t, floor)
	hist := floor.Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	assert.InDelta(t, 0.05, hist.DataPoints[0].Sum, 1e-9)
}

func TestDefaultMetrics(t *testing.T) {
	first := DefaultMetrics()
	require.NotNil(t, first)
	assert.Same(t, first, DefaultMetrics())
}
