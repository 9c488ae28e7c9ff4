package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/internal/observe"
	"github.com/osuushi/guardplan/plan"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Region is an area limit for the face of a room that contains Witness.
type Region struct {
	Witness geometry.Point `json:"witness" yaml:"witness"`
	MaxArea float64        `json:"max_area" yaml:"max_area"`
}

// AreaTable holds the maximum triangle areas for a floor. Rooms and Regions
// are keyed by room index within the floor.
type AreaTable struct {
	Default float64          `json:"default,omitempty" yaml:"default,omitempty"`
	Rooms   map[int]float64  `json:"rooms,omitempty" yaml:"rooms,omitempty"`
	Regions map[int][]Region `json:"regions,omitempty" yaml:"regions,omitempty"`
}

// Floor is one batch of rooms solved by a single worker.
type Floor struct {
	ID    string      `json:"id" yaml:"id"`
	Name  string      `json:"name,omitempty" yaml:"name,omitempty"`
	Rooms []plan.Room `json:"rooms" yaml:"rooms"`
	Areas AreaTable   `json:"areas,omitempty" yaml:"areas,omitempty"`
}

// RoomResult is the outcome for one room. Exactly one of Solution and Err is
// set.
type RoomResult struct {
	Index    int
	Room     string
	Solution *Solution
	Err      error
	Elapsed  time.Duration
}

func (r RoomResult) Code() fault.Code {
	return fault.GetCode(r.Err)
}

type FloorResult struct {
	// TaskID correlates the result with the task it answers.
	TaskID  string
	Floor   string
	Name    string
	Rooms   []RoomResult
	Elapsed time.Duration
}

// Failed counts the rooms that did not produce a solution.
func (r *FloorResult) Failed() int {
	n := 0
	for _, room := range r.Rooms {
		if room.Err != nil {
			n++
		}
	}
	return n
}

// Err joins the errors of every failed room, or returns nil.
func (r *FloorResult) Err() error {
	var errs []error
	for _, room := range r.Rooms {
		if room.Err != nil {
			errs = append(errs, room.Err)
		}
	}
	return errors.Join(errs...)
}

type task struct {
	ID    string
	Floor Floor
}

// SolveFloor solves a single floor. See SolveFloors.
func (s *Solver) SolveFloor(ctx context.Context, floor Floor) (*FloorResult, error) {
	results, err := s.SolveFloors(ctx, []Floor{floor})
	if len(results) == 0 {
		return nil, err
	}
	return results[0], err
}

// SolveFloors solves every floor and returns one result per floor, in input
// order. All tasks are queued up front; each worker takes exactly one task,
// solves its rooms in order and sends back exactly one result. Room failures
// are reported in the results and never returned as an error. The error is
// only set when ctx ends before every floor finished, in which case the
// unfinished rooms carry fault.CodeCanceled or fault.CodeTimeout.
func (s *Solver) SolveFloors(ctx context.Context, floors []Floor) ([]*FloorResult, error) {
	if ctx == nil {
		return nil, fault.New(fault.CodeInternal, "nil context")
	}
	if len(floors) == 0 {
		return nil, nil
	}

	tasks := make(chan task, len(floors))
	results := make(chan *FloorResult, len(floors))
	index := make(map[string]int, len(floors))
	for i, floor := range floors {
		id := uuid.NewString()
		index[id] = i
		tasks <- task{ID: id, Floor: floor}
	}
	close(tasks)

	workers := s.workers
	if workers <= 0 || workers > len(floors) {
		workers = len(floors)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	go func() {
		for t := range tasks {
			t := t
			eg.Go(func() error {
				results <- s.runFloor(egCtx, t)
				return nil
			})
		}
		_ = eg.Wait()
		close(results)
	}()

	out := make([]*FloorResult, len(floors))
	for result := range results {
		i, ok := index[result.TaskID]
		if !ok {
			return out, fault.Newf(fault.CodeInternal, "result for unknown task %s", result.TaskID)
		}
		out[i] = result
	}

	if err := ctx.Err(); err != nil {
		return out, contextFault(err, "floors")
	}
	return out, nil
}

func (s *Solver) runFloor(ctx context.Context, t task) *FloorResult {
	floor := t.Floor
	start := time.Now()

	s.metrics.FloorsInFlight.Add(ctx, 1)
	defer s.metrics.FloorsInFlight.Add(context.WithoutCancel(ctx), -1)

	ctx, span := s.tracer.Start(ctx, "guardplan.floor", trace.WithAttributes(
		attribute.String("floor", floor.ID),
		attribute.String("task", t.ID),
		attribute.Int("rooms", len(floor.Rooms)),
	))
	defer span.End()

	if s.floorTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.floorTimeout)
		defer cancel()
	}

	logger := observe.Logger(ctx, s.logger).With("floor", floor.ID, "task", t.ID)
	logger.Debug("floor started", "rooms", len(floor.Rooms))

	result := &FloorResult{
		TaskID: t.ID,
		Floor:  floor.ID,
		Name:   floor.Name,
		Rooms:  make([]RoomResult, len(floor.Rooms)),
	}
	for i, room := range floor.Rooms {
		result.Rooms[i] = s.runRoom(ctx, floor, i, room)

		r := result.Rooms[i]
		if r.Err != nil {
			logger.Warn("room failed", "room", r.Room, "code", r.Code(), "error", r.Err)
			span.AddEvent("room failed", trace.WithAttributes(
				attribute.String("room", r.Room),
				attribute.String("code", string(r.Code())),
			))
			continue
		}
		logger.Debug("room solved",
			"room", r.Room,
			"triangles", len(r.Solution.Triangles()),
			"steiner", r.Solution.Mesh.Steiner,
			"guards", len(r.Solution.Guards),
			"elapsed", r.Elapsed,
		)
	}

	result.Elapsed = time.Since(start)
	s.metrics.RecordFloor(context.WithoutCancel(ctx), result.Elapsed)
	if failed := result.Failed(); failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d rooms failed", failed, len(floor.Rooms)))
	}
	logger.Info("floor solved", "rooms", len(floor.Rooms), "failed", result.Failed(), "elapsed", result.Elapsed)
	return result
}

type outcome struct {
	solution *Solution
	err      error
}

// runRoom solves one room on its own goroutine so that an expired floor
// context releases the worker even if the pipeline never returns.
func (s *Solver) runRoom(ctx context.Context, floor Floor, i int, room plan.Room) RoomResult {
	start := time.Now()
	name := roomName(i, room)
	result := RoomResult{Index: i, Room: name}

	ctx, span := s.tracer.Start(ctx, "guardplan.room", trace.WithAttributes(
		attribute.String("floor", floor.ID),
		attribute.String("room", name),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		result.Err = tagError(contextFault(err, name), floor.ID, name)
	} else {
		done := make(chan outcome, 1)
		opts := s.MeshOptions(floor, i)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- outcome{err: fault.Newf(fault.CodeInternal, "panic solving room %q: %v", name, r)}
				}
			}()
			solution, err := s.solveRoom(room, opts)
			done <- outcome{solution: solution, err: err}
		}()

		select {
		case o := <-done:
			result.Solution = o.solution
			if o.err != nil {
				result.Solution = nil
				result.Err = tagError(o.err, floor.ID, name)
			}
		case <-ctx.Done():
			result.Err = tagError(contextFault(ctx.Err(), name), floor.ID, name)
		}
	}

	result.Elapsed = time.Since(start)
	steiner, guards := 0, 0
	if result.Solution != nil {
		steiner, guards = result.Solution.Mesh.Steiner, len(result.Solution.Guards)
	}
	s.metrics.RecordRoom(context.WithoutCancel(ctx), floor.ID, result.Elapsed, steiner, guards, result.Err)
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, string(fault.GetCode(result.Err)))
	}
	return result
}

func roomName(i int, room plan.Room) string {
	if room.Name != "" {
		return room.Name
	}
	return fmt.Sprintf("#%d", i)
}

func contextFault(err error, what string) *fault.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.WrapWithCode(err, fault.CodeTimeout, what+" timed out")
	}
	return fault.WrapWithCode(err, fault.CodeCanceled, what+" canceled")
}

// tagError makes sure err is a *fault.Error naming its floor and room.
func tagError(err error, floor, room string) error {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		fe = fault.Wrapf(err, "room %q", room)
	}
	return fe.WithMeta("floor", floor).WithMeta("room", room)
}

// SolveRoom runs the pipeline for a single room with the solver's mesh
// settings.
func (s *Solver) SolveRoom(room plan.Room) (*Solution, error) {
	return s.solveRoom(room, s.mesh)
}
