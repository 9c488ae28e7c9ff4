package plan

import (
	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/geometry"
)

// BuildGraph turns one room into its planar straight-line graph. The outer
// boundary is walked first, then each obstacle in order. Every polygon point
// becomes a vertex with the next dense id, and every consecutive pair
// (including the closing pair) becomes a segment edge. Obstacle edges are
// also tagged as hole edges.
//
// The room is expected to have passed Validate already. Only the minimum
// point count is checked here.
func BuildGraph(room Room) (*Graph, error) {
	if room.Boundary.Len() < 3 {
		return nil, fault.InvalidGeometry("room %q boundary has %d points", room.Name, room.Boundary.Len()).
			WithMeta("room", room.Name)
	}
	for i, obstacle := range room.Obstacles {
		if obstacle.Polygon.Len() < 3 {
			return nil, fault.InvalidGeometry("room %q obstacle %s has %d points",
				room.Name, obstacleLabel(i, obstacle), obstacle.Polygon.Len()).
				WithMeta("room", room.Name).
				WithMeta("obstacle", i)
		}
	}

	g := NewGraph()
	addLoop(g, room.Boundary, RoleRoomBoundary, -1, TagSegment)
	for i, obstacle := range room.Obstacles {
		addLoop(g, obstacle.Polygon, RoleHoleBoundary, i, TagSegment|TagHole)
	}
	return g, nil
}

func addLoop(g *Graph, poly geometry.Polygon, role Role, obstacle int, tags EdgeTag) {
	first := g.NumVertices()
	for _, p := range poly.Points {
		g.AddVertex(p, role, obstacle)
	}
	n := poly.Len()
	for i := 0; i < n; i++ {
		g.AddEdge(first+i, first+geometry.CircularIndex(i+1, n), tags)
	}
}

// BuildGraphs builds one independent graph per room. Rooms never share a
// graph or an id space.
func BuildGraphs(rooms []Room) ([]*Graph, error) {
	graphs := make([]*Graph, 0, len(rooms))
	for _, room := range rooms {
		g, err := BuildGraph(room)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// HoleWitnesses returns one point strictly inside each obstacle, in obstacle
// order. The mesher uses them to tell holes from solid area.
func HoleWitnesses(room Room) ([]geometry.Point, error) {
	witnesses := make([]geometry.Point, 0, len(room.Obstacles))
	for i, obstacle := range room.Obstacles {
		p, ok := obstacle.Polygon.InteriorPoint()
		if !ok {
			return nil, fault.InvalidGeometry("room %q obstacle %s has no interior",
				room.Name, obstacleLabel(i, obstacle)).
				WithMeta("room", room.Name).
				WithMeta("obstacle", i)
		}
		witnesses = append(witnesses, p)
	}
	return witnesses, nil
}
