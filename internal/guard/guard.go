package guard

import (
	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/plan"
)

// Guard is a guard post at a triangulation vertex.
type Guard struct {
	Vertex int            `json:"vertex" yaml:"vertex"`
	Point  geometry.Point `json:"point" yaml:"point"`
	Group  int            `json:"group" yaml:"group"`
	Room   string         `json:"room" yaml:"room"`
}

// SelectGuards picks the color class with the fewest members, ties going to
// the lowest color, and places a guard on each of its vertices in ascending
// id order.
func SelectGuards(g *plan.Graph, colors Coloring, room string) (int, []Guard, error) {
	if g.NumVertices() == 0 || len(colors) == 0 {
		return plan.NoGroup, nil, fault.Newf(fault.CodeEmptyGuardGroup, "room %q has no vertices to guard", room).
			WithMeta("room", room)
	}

	groups := colors.Groups()
	chosen := -1
	for color, members := range groups {
		if len(members) == 0 {
			continue
		}
		if chosen == -1 || len(members) < len(groups[chosen]) {
			chosen = color
		}
	}
	if chosen == -1 {
		return plan.NoGroup, nil, fault.Newf(fault.CodeEmptyGuardGroup, "room %q has no color class", room).
			WithMeta("room", room)
	}

	guards := make([]Guard, 0, len(groups[chosen]))
	for _, id := range groups[chosen] {
		guards = append(guards, Guard{
			Vertex: id,
			Point:  g.Point(id),
			Group:  chosen,
			Room:   room,
		})
	}
	return chosen, guards, nil
}

// Coverage holds the responsible guard vertex for each triangle, by index.
type Coverage []int

// AssignCoverage hands every triangle to one vertex of the guard group. If a
// corner of the triangle is in the group, the first such corner in vertex
// order wins. Otherwise the guard closest to the triangle's area wins, ties
// going to the lowest vertex id. The graph must already carry the coloring.
func AssignCoverage(g *plan.Graph, group int, tris []plan.Triangle) (Coverage, error) {
	members := g.GroupMembers(group)
	if len(members) == 0 {
		return nil, fault.Newf(fault.CodeEmptyGuardGroup, "group %d has no vertices", group)
	}

	coverage := make(Coverage, len(tris))
	for i, tri := range tris {
		coverage[i] = assignTriangle(g, group, members, tri)
	}
	return coverage, nil
}

func assignTriangle(g *plan.Graph, group int, members []int, tri plan.Triangle) int {
	for _, id := range tri {
		if g.Vertex(id).Group == group {
			return id
		}
	}

	poly := g.TrianglePolygon(tri)
	best, bestDistance := -1, 0.0
	for _, id := range members {
		d := poly.DistanceTo(g.Point(id))
		if best == -1 || d < bestDistance {
			best, bestDistance = id, d
		}
	}
	return best
}
