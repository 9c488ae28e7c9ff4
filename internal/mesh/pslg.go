package mesh

import (
	"sort"

	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/plan"
)

// A closed loop of segments recovered from the graph.
type ring struct {
	ids  []int
	poly geometry.Polygon
	area float64

	parent   int
	children []int
	hole     bool
}

// A face is the area inside one ring and outside its child rings. Faces are
// what gets clipped into triangles.
type face struct {
	outer int
	holes []int
}

// checkSegments rejects graphs the mesher cannot handle: no segments, zero
// length or duplicate input, crossing or overlapping segments, and vertices
// that are not on exactly two segments.
func checkSegments(g *plan.Graph) {
	segments := g.Segments()
	if len(segments) == 0 {
		fatalf("graph has no segments")
	}

	for _, edge := range g.Edges() {
		if !edge.IsSegment() {
			fatalf("edge %d-%d is not a segment, graph is already meshed", edge.U, edge.V)
		}
	}

	for _, v := range g.Vertices {
		if v.Role == plan.RoleSteiner {
			fatalf("vertex %d is a Steiner vertex, graph is already meshed", v.ID)
		}
		if !v.Point.IsFinite() {
			fatalf("vertex %d is not finite: %v", v.ID, v.Point)
		}
	}

	for _, s := range segments {
		if g.Segment(s.U, s.V).IsDegenerate() {
			fatalf("segment %d-%d has zero length", s.U, s.V)
		}
	}

	order := make([]int, g.NumVertices())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return g.Point(order[i]).Less(g.Point(order[j]))
	})
	for i := 1; i < len(order); i++ {
		if g.Point(order[i]).Equal(g.Point(order[i-1])) {
			fatalf("vertices %d and %d are duplicates at %v", order[i-1], order[i], g.Point(order[i]))
		}
	}

	for i, a := range segments {
		sa := g.Segment(a.U, a.V)
		boundA := sa.Bound()
		for _, b := range segments[i+1:] {
			sb := g.Segment(b.U, b.V)
			if !boundA.Intersects(sb.Bound()) {
				continue
			}
			if a.U == b.U || a.U == b.V || a.V == b.U || a.V == b.V {
				if sa.Overlaps(sb) {
					fatalf("segments %d-%d and %d-%d overlap", a.U, a.V, b.U, b.V)
				}
				continue
			}
			if sa.Intersects(sb) {
				fatalf("segments %d-%d and %d-%d cross", a.U, a.V, b.U, b.V)
			}
		}
	}

	for _, v := range g.Vertices {
		if d := g.Degree(v.ID); d != 2 {
			fatalf("vertex %d is on %d segments, need 2", v.ID, d)
		}
	}
}

// recoverRings walks the segment graph into closed loops. Every vertex has
// degree 2, so each connected piece is exactly one loop.
func recoverRings(g *plan.Graph) []*ring {
	var rings []*ring
	visited := make([]bool, g.NumVertices())
	for start := range g.Vertices {
		if visited[start] {
			continue
		}
		visited[start] = true
		ids := []int{start}
		prev, cur := start, g.Neighbors(start)[0]
		for cur != start {
			visited[cur] = true
			ids = append(ids, cur)
			neighbors := g.Neighbors(cur)
			next := neighbors[0]
			if next == prev {
				next = neighbors[1]
			}
			prev, cur = cur, next
		}

		r := &ring{ids: ids, parent: -1}
		for _, id := range ids {
			r.poly.Points = append(r.poly.Points, g.Point(id))
		}
		r.area = r.poly.Area()
		if geometry.Zero(r.area) {
			fatalf("ring through vertex %d has zero area", start)
		}
		rings = append(rings, r)
	}
	return rings
}

// nestRings sets each ring's parent to the smallest ring that contains it.
// Segments never cross or touch, so one vertex decides containment.
func nestRings(rings []*ring) {
	for i, r := range rings {
		first := r.poly.Points[0]
		for j, other := range rings {
			if i == j || other.area <= r.area {
				continue
			}
			if !other.poly.ContainsPoint(first) {
				continue
			}
			if r.parent == -1 || other.area < rings[r.parent].area {
				r.parent = j
			}
		}
	}
	for i, r := range rings {
		if r.parent >= 0 {
			rings[r.parent].children = append(rings[r.parent].children, i)
		}
	}
}

// innermostRing returns the smallest ring strictly containing p, or -1.
func innermostRing(rings []*ring, p geometry.Point) int {
	best := -1
	for i, r := range rings {
		if !r.poly.ContainsPoint(p) {
			continue
		}
		if best == -1 || r.area < rings[best].area {
			best = i
		}
	}
	return best
}

// markHoles flags the ring each witness falls in as a hole. The area inside
// that ring and outside its children is left untriangulated. Returns the
// number of witnesses outside every ring.
func markHoles(rings []*ring, witnesses []geometry.Point) int {
	ignored := 0
	for _, w := range witnesses {
		i := innermostRing(rings, w)
		if i == -1 {
			ignored++
			continue
		}
		rings[i].hole = true
	}
	return ignored
}

// faces lists every ring that is not a hole, with its children as holes.
// The area outside the top level rings is never part of the mesh.
func faces(rings []*ring) []face {
	var result []face
	for i, r := range rings {
		if r.hole {
			continue
		}
		result = append(result, face{outer: i, holes: r.children})
	}
	return result
}

func (f face) area(rings []*ring) float64 {
	area := rings[f.outer].area
	for _, h := range f.holes {
		area -= rings[h].area
	}
	return area
}

// Ids of r wound counterclockwise, or clockwise when cw is set.
func orientedIds(r *ring, cw bool) []int {
	ids := append([]int(nil), r.ids...)
	if (r.poly.SignedArea() < 0) != cw {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}
	return ids
}
