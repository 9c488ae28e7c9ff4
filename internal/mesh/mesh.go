package mesh

import (
	"math"

	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/plan"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// mesh is a mutable triangle soup with edge adjacency. Vertex ids below
// base refer to the input graph, ids from base on are Steiner points in
// creation order.
type mesh struct {
	base    int
	points  []geometry.Point
	tris    []plan.Triangle
	face    []int
	edges   map[plan.EdgeKey][]int
	segment map[plan.EdgeKey]plan.EdgeTag

	flips  int
	splits int
}

func newMesh(g *plan.Graph) *mesh {
	m := &mesh{
		base:    g.NumVertices(),
		edges:   make(map[plan.EdgeKey][]int),
		segment: make(map[plan.EdgeKey]plan.EdgeTag),
	}
	for _, v := range g.Vertices {
		m.points = append(m.points, v.Point)
	}
	for _, s := range g.Segments() {
		m.segment[s.Key()] = s.Tags
	}
	return m
}

func (m *mesh) steiner() int {
	return len(m.points) - m.base
}

func (m *mesh) addPoint(p geometry.Point) int {
	m.points = append(m.points, p)
	return len(m.points) - 1
}

func (m *mesh) area(t int) float64 {
	tri := m.tris[t]
	return geometry.Orient(m.points[tri[0]], m.points[tri[1]], m.points[tri[2]]) / 2
}

// Appends a triangle and registers its edges.
func (m *mesh) add(tri plan.Triangle, face int) int {
	t := len(m.tris)
	m.tris = append(m.tris, tri)
	m.face = append(m.face, face)
	m.link(t)
	return t
}

// Replaces triangle t in place.
func (m *mesh) set(t int, tri plan.Triangle) {
	m.unlink(t)
	m.tris[t] = tri
	m.link(t)
}

// Replaces two triangles at once. Both are unlinked before either is
// relinked, since the new pair shares edges with both old ones.
func (m *mesh) setPair(t1 int, tri1 plan.Triangle, t2 int, tri2 plan.Triangle) {
	m.unlink(t1)
	m.unlink(t2)
	m.tris[t1] = tri1
	m.tris[t2] = tri2
	m.link(t1)
	m.link(t2)
}

func (m *mesh) link(t int) {
	tri := m.tris[t]
	for i := 0; i < 3; i++ {
		key := plan.MakeEdgeKey(tri[i], tri[(i+1)%3])
		m.edges[key] = append(m.edges[key], t)
		if len(m.edges[key]) > 2 {
			fatalf("edge %d-%d is shared by %d triangles", key.U, key.V, len(m.edges[key]))
		}
	}
}

func (m *mesh) unlink(t int) {
	tri := m.tris[t]
	for i := 0; i < 3; i++ {
		key := plan.MakeEdgeKey(tri[i], tri[(i+1)%3])
		list := m.edges[key]
		for j, other := range list {
			if other == t {
				list = append(list[:j], list[j+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(m.edges, key)
		} else {
			m.edges[key] = list
		}
	}
}

// The triangle across edge key from t, or -1 on the mesh boundary.
func (m *mesh) across(t int, key plan.EdgeKey) int {
	for _, other := range m.edges[key] {
		if other != t {
			return other
		}
	}
	return -1
}

// Rotates t so that the directed edge u->v comes first. Returns the
// corner opposite that edge, or -1 if t has no such directed edge.
func (m *mesh) apex(t, u, v int) int {
	tri := m.tris[t]
	for i := 0; i < 3; i++ {
		if tri[i] == u && tri[(i+1)%3] == v {
			return tri[(i+2)%3]
		}
	}
	return -1
}

func (m *mesh) isSegment(key plan.EdgeKey) bool {
	_, ok := m.segment[key]
	return ok
}

// checkSegmentsPresent fails if any segment is not an edge of the mesh.
func (m *mesh) checkSegmentsPresent() {
	for key := range m.segment {
		if _, ok := m.edges[key]; !ok {
			fatalf("segment %d-%d is missing from the triangulation", key.U, key.V)
		}
	}
}

// checkArea fails unless the triangles are counterclockwise, non-degenerate
// and sum to the expected area.
func (m *mesh) checkArea(expected float64) {
	total := 0.0
	for t := range m.tris {
		a := m.area(t)
		if a <= 0 {
			tri := m.tris[t]
			fatalf("triangle %d-%d-%d is degenerate or inverted", tri[0], tri[1], tri[2])
		}
		total += a
	}
	if math.Abs(total-expected) > 1e-6*math.Max(1, expected) {
		fatalf("triangles cover %g, expected %g", total, expected)
	}
}

// checkConnected fails unless the triangles joined across non-segment
// edges form exactly one piece per face.
func (m *mesh) checkConnected(faces int) {
	if len(m.tris) == 0 {
		fatalf("no triangles")
	}
	dual := simple.NewUndirectedGraph()
	for t := range m.tris {
		dual.AddNode(simple.Node(t))
	}
	for key, shared := range m.edges {
		if len(shared) == 2 && !m.isSegment(key) {
			dual.SetEdge(dual.NewEdge(simple.Node(shared[0]), simple.Node(shared[1])))
		}
	}
	if components := topo.ConnectedComponents(dual); len(components) != faces {
		fatalf("triangles form %d disconnected pieces for %d faces", len(components), faces)
	}
}

// inCircle is positive when d lies inside the circumcircle of the
// counterclockwise triangle abc.
func inCircle(a, b, c, d geometry.Point) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy

	det := ad*(bdx*cdy-cdx*bdy) + bd*(cdx*ady-adx*cdy) + cd*(adx*bdy-bdx*ady)
	scale := ad + bd + cd
	if math.Abs(det) <= 1e-10*scale*scale {
		return 0
	}
	return det
}

// flip replaces the two triangles on edge key with the two on the other
// diagonal of their quadrilateral, if the edge is not a segment and the
// opposite corner breaks the empty circle rule. Returns the outer edges of
// the quadrilateral when a flip happened.
func (m *mesh) flip(key plan.EdgeKey) []plan.EdgeKey {
	if m.isSegment(key) {
		return nil
	}
	shared := m.edges[key]
	if len(shared) != 2 {
		return nil
	}

	t1, t2 := shared[0], shared[1]
	a, b := key.U, key.V
	c := m.apex(t1, a, b)
	if c == -1 {
		a, b = b, a
		c = m.apex(t1, a, b)
	}
	d := m.apex(t2, b, a)
	if c == -1 || d == -1 {
		fatalf("triangles %d and %d disagree on edge %d-%d", t1, t2, key.U, key.V)
	}

	pa, pb, pc, pd := m.points[a], m.points[b], m.points[c], m.points[d]
	if inCircle(pa, pb, pc, pd) <= 0 {
		return nil
	}
	// The new diagonal c-d must cross a-b, otherwise the quad is not convex.
	if geometry.Sign(geometry.Orient(pc, pd, pa))*geometry.Sign(geometry.Orient(pc, pd, pb)) >= 0 {
		return nil
	}

	m.setPair(t1, plan.Triangle{a, d, c}, t2, plan.Triangle{d, b, c})
	m.flips++

	return []plan.EdgeKey{
		plan.MakeEdgeKey(a, d),
		plan.MakeEdgeKey(d, b),
		plan.MakeEdgeKey(b, c),
		plan.MakeEdgeKey(c, a),
	}
}

// legalize flips edges until every non-segment edge reachable from the
// queue satisfies the empty circle rule.
func (m *mesh) legalize(queue []plan.EdgeKey) {
	limit := 100*len(m.tris) + 1000
	for steps := 0; len(queue) > 0 && steps < limit; steps++ {
		key := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		queue = append(queue, m.flip(key)...)
	}
}

// delaunay runs Lawson's flip algorithm over every interior edge.
func (m *mesh) delaunay() {
	queue := make([]plan.EdgeKey, 0, len(m.edges))
	for t := range m.tris {
		tri := m.tris[t]
		for i := 0; i < 3; i++ {
			key := plan.MakeEdgeKey(tri[i], tri[(i+1)%3])
			if len(m.edges[key]) == 2 && !m.isSegment(key) && key.U == tri[i] {
				queue = append(queue, key)
			}
		}
	}
	m.legalize(queue)
}
