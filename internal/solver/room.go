package solver

import (
	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/internal/guard"
	"github.com/osuushi/guardplan/internal/mesh"
	"github.com/osuushi/guardplan/plan"
)

// Solution is everything computed for one room.
type Solution struct {
	Room plan.Room
	// Graph is the room outline augmented in place by the mesher and
	// colored. Boundary vertex ids match plan.BuildGraph.
	Graph    *plan.Graph
	Mesh     *mesh.Result
	Options  mesh.Options
	Colors   guard.Coloring
	Group    int
	Guards   []guard.Guard
	Coverage guard.Coverage
	Stats    guard.Stats
}

// Triangles is a shorthand for s.Mesh.Triangles.
func (s *Solution) Triangles() []plan.Triangle {
	if s == nil || s.Mesh == nil {
		return nil
	}
	return s.Mesh.Triangles
}

// SolveRoom runs the whole pipeline for one room: validation, graph
// building, triangulation, coloring, guard selection and coverage
// assignment. Errors are *fault.Error values carrying the room name.
func SolveRoom(room plan.Room, opts mesh.Options) (*Solution, error) {
	if err := room.Validate(); err != nil {
		return nil, err
	}

	g, err := plan.BuildGraph(room)
	if err != nil {
		return nil, err
	}
	witnesses, err := plan.HoleWitnesses(room)
	if err != nil {
		return nil, err
	}

	result, err := mesh.Triangulate(g, witnesses, opts)
	if err != nil {
		return nil, fault.Wrapf(err, "room %q", room.Name).WithMeta("room", room.Name)
	}

	colors := guard.Color(g)
	g.ApplyColoring(colors)

	group, guards, err := guard.SelectGuards(g, colors, room.Name)
	if err != nil {
		return nil, err
	}
	coverage, err := guard.AssignCoverage(g, group, result.Triangles)
	if err != nil {
		return nil, fault.Wrapf(err, "room %q", room.Name).WithMeta("room", room.Name)
	}

	return &Solution{
		Room:     room,
		Graph:    g,
		Mesh:     result,
		Options:  opts,
		Colors:   colors,
		Group:    group,
		Guards:   guards,
		Coverage: coverage,
		Stats:    guard.Summarize(g, colors, guards, result.Triangles, coverage),
	}, nil
}
