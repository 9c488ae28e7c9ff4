// Package observe provides the OpenTelemetry metric instruments and tracer
// used by the solver. A package-level default [Metrics] instance
// ([DefaultMetrics]) is bound to the global meter provider; tests should use
// [NewMetrics] with their own [metric.MeterProvider].
package observe

import (
	"context"
	"sync"
	"time"

	"github.com/osuushi/guardplan/fault"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all guardplan metrics.
const meterName = "github.com/osuushi/guardplan"

// Metrics holds the metric instruments for room and floor solving. All
// fields are safe for concurrent use.
type Metrics struct {
	// RoomDuration tracks the full pipeline latency of one room.
	RoomDuration metric.Float64Histogram

	// FloorDuration tracks the latency of one floor, from dispatch to the
	// last room result.
	FloorDuration metric.Float64Histogram

	// RoomResults counts finished rooms. Use with attribute:
	//   attribute.String("status", ...) holding the fault code
	RoomResults metric.Int64Counter

	// SteinerPoints counts vertices added by area refinement.
	SteinerPoints metric.Int64Counter

	// Guards counts placed guards.
	Guards metric.Int64Counter

	// FloorsInFlight tracks floors currently held by a worker.
	FloorsInFlight metric.Int64UpDownCounter
}

// durationBuckets are histogram boundaries in seconds. Most rooms mesh in
// well under a millisecond; heavily refined rooms take seconds.
var durationBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RoomDuration, err = m.Float64Histogram("guardplan.room.duration",
		metric.WithDescription("Latency of solving one room."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FloorDuration, err = m.Float64Histogram("guardplan.floor.duration",
		metric.WithDescription("Latency of solving one floor."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}

	if met.RoomResults, err = m.Int64Counter("guardplan.room.results",
		metric.WithDescription("Solved rooms by result status."),
	); err != nil {
		return nil, err
	}
	if met.SteinerPoints, err = m.Int64Counter("guardplan.mesh.steiner_points",
		metric.WithDescription("Vertices inserted by area refinement."),
	); err != nil {
		return nil, err
	}
	if met.Guards, err = m.Int64Counter("guardplan.guards",
		metric.WithDescription("Guards placed."),
	); err != nil {
		return nil, err
	}

	if met.FloorsInFlight, err = m.Int64UpDownCounter("guardplan.floors.in_flight",
		metric.WithDescription("Floors currently being solved."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics], created on first call
// from [otel.GetMeterProvider]. Panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordRoom records one finished room. err may be nil. steiner and guards
// are only added for successful rooms.
func (m *Metrics) RecordRoom(ctx context.Context, floor string, elapsed time.Duration, steiner, guards int, err error) {
	status := string(fault.GetCode(err))
	m.RoomDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("status", status)),
	)
	m.RoomResults.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("floor", floor),
			attribute.String("status", status),
		),
	)
	if err != nil {
		return
	}
	m.SteinerPoints.Add(ctx, int64(steiner))
	m.Guards.Add(ctx, int64(guards))
}

// RecordFloor records the latency of one floor.
func (m *Metrics) RecordFloor(ctx context.Context, elapsed time.Duration) {
	m.FloorDuration.Record(ctx, elapsed.Seconds())
}
