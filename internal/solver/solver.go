// Package solver runs the guard placement pipeline for rooms and fans whole
// floors out to a bounded pool of workers. Each floor travels as a task with
// its own id; results come back in any order and are matched to their floor
// by that id. A failure in one room is reported as that room's result and
// never stops its siblings.
package solver

import (
	"log/slog"
	"time"

	"github.com/osuushi/guardplan/internal/mesh"
	"github.com/osuushi/guardplan/internal/observe"
	"github.com/osuushi/guardplan/plan"
	"go.opentelemetry.io/otel/trace"
)

// Solver holds the settings shared by every floor it solves. It is safe for
// concurrent use.
type Solver struct {
	workers      int
	floorTimeout time.Duration
	mesh         mesh.Options
	logger       *slog.Logger
	metrics      *observe.Metrics
	tracer       trace.Tracer

	// solveRoom is replaced in tests.
	solveRoom func(room plan.Room, opts mesh.Options) (*Solution, error)
}

type Option func(*Solver)

// WithWorkers bounds how many floors are solved at once. Zero or less means
// one worker per floor.
func WithWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

// WithFloorTimeout bounds the time spent on each floor. Rooms still pending
// when it expires fail with fault.CodeTimeout. Zero disables it.
func WithFloorTimeout(d time.Duration) Option {
	return func(s *Solver) { s.floorTimeout = d }
}

// WithMaxArea sets the maximum triangle area used when a floor's area table
// has no entry for a room.
func WithMaxArea(area float64) Option {
	return func(s *Solver) { s.mesh.MaxArea = area }
}

// WithMaxSteiner caps area refinement per room.
func WithMaxSteiner(n int) Option {
	return func(s *Solver) { s.mesh.MaxSteiner = n }
}

// WithDelaunay toggles constrained Delaunay flips.
func WithDelaunay(enabled bool) Option {
	return func(s *Solver) { s.mesh.Delaunay = enabled }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

func WithMetrics(m *observe.Metrics) Option {
	return func(s *Solver) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Solver) { s.tracer = t }
}

// New returns a Solver with Delaunay flips enabled and no timeout, adjusted
// by opts.
func New(opts ...Option) *Solver {
	s := &Solver{
		mesh:      mesh.Options{Delaunay: true},
		solveRoom: SolveRoom,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.tracer == nil {
		s.tracer = observe.Tracer()
	}
	return s
}

// MeshOptions returns the mesh options used for room index i of floor.
// A per-room entry in the area table beats the table default, which beats
// the solver-wide maximum area.
func (s *Solver) MeshOptions(floor Floor, i int) mesh.Options {
	opts := s.mesh
	if floor.Areas.Default > 0 {
		opts.MaxArea = floor.Areas.Default
	}
	if area, ok := floor.Areas.Rooms[i]; ok {
		opts.MaxArea = area
	}
	for _, region := range floor.Areas.Regions[i] {
		opts.Regions = append(opts.Regions, mesh.Region{Witness: region.Witness, MaxArea: region.MaxArea})
	}
	return opts
}
