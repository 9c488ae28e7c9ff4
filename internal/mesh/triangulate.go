// Package mesh triangulates room outlines. It takes the planar straight-line
// graph of one room plus a witness point inside each hole, clips the
// segment-bounded faces into triangles, optionally makes the result
// constrained Delaunay, refines it until area limits hold, and merges the
// new vertices and edges back into the same graph.
package mesh

import (
	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/plan"
)

// Triangulate meshes g in place. Existing vertex ids stay stable: Steiner
// vertices are appended, segments split by refinement are replaced by their
// pieces, and every other triangle edge is added with TagMesh.
//
// Every witness in holes marks the innermost ring containing it as a hole.
// The area outside the outermost rings is never meshed.
//
// Degenerate input (zero length, duplicate, crossing or dangling segments)
// fails with a TRIANGULATION_FAILED fault and leaves g untouched.
func Triangulate(g *plan.Graph, holes []geometry.Point, opts Options) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = HandleTriangulatePanicRecover(r)
		}
	}()

	if g == nil {
		fatalf("nil graph")
	}

	checkSegments(g)
	rings := recoverRings(g)
	nestRings(rings)
	ignored := markHoles(rings, holes)

	fs := faces(rings)
	if len(fs) == 0 {
		fatalf("every ring is a hole, nothing to triangulate")
	}

	m := newMesh(g)
	expected := 0.0
	for i, f := range fs {
		outer := orientedIds(rings[f.outer], false)
		holeIds := make([][]int, 0, len(f.holes))
		for _, h := range f.holes {
			holeIds = append(holeIds, orientedIds(rings[h], true))
		}
		for _, tri := range clipFace(g, outer, holeIds, nil) {
			m.add(tri, i)
		}
		expected += f.area(rings)
	}

	m.checkSegmentsPresent()
	m.checkArea(expected)
	m.checkConnected(len(fs))

	if opts.Delaunay {
		m.delaunay()
	}

	faceRegion := regionsByFace(rings, fs, opts.Regions)
	limit := func(t int) float64 {
		if r, ok := faceRegion[m.face[t]]; ok {
			return opts.Regions[r].MaxArea
		}
		return opts.MaxArea
	}
	if opts.MaxArea > 0 || len(faceRegion) > 0 {
		m.refine(limit, opts.maxSteiner(), opts.Delaunay)
		m.checkSegmentsPresent()
		m.checkArea(expected)
	}

	merge(g, m)

	result = &Result{
		Triangles:      append([]plan.Triangle(nil), m.tris...),
		TriangleRegion: make([]int, len(m.tris)),
		Steiner:        m.steiner(),
		Flips:          m.flips,
		Splits:         m.splits,
		IgnoredHoles:   ignored,
	}
	for t := range m.tris {
		result.TriangleRegion[t] = -1
		if r, ok := faceRegion[m.face[t]]; ok {
			result.TriangleRegion[t] = r
		}
	}
	return result, nil
}

// regionsByFace maps face index to the region that limits it. Regions with
// no positive limit, or whose witness is in a hole or outside the mesh, are
// skipped. The smallest limit wins when regions share a face.
func regionsByFace(rings []*ring, fs []face, regions []Region) map[int]int {
	faceOf := make(map[int]int, len(fs))
	for i, f := range fs {
		faceOf[f.outer] = i
	}

	result := make(map[int]int)
	for i, region := range regions {
		if region.MaxArea <= 0 {
			continue
		}
		r := innermostRing(rings, region.Witness)
		if r == -1 {
			continue
		}
		f, ok := faceOf[r]
		if !ok {
			continue
		}
		if existing, ok := result[f]; !ok || region.MaxArea < regions[existing].MaxArea {
			result[f] = i
		}
	}
	return result
}

// merge writes the mesh back into g.
func merge(g *plan.Graph, m *mesh) {
	for _, p := range m.points[m.base:] {
		g.AddVertex(p, plan.RoleSteiner, -1)
	}

	for _, s := range g.Segments() {
		if _, ok := m.segment[s.Key()]; !ok {
			g.RemoveEdge(s.U, s.V)
		}
	}

	for _, tri := range m.tris {
		for i := 0; i < 3; i++ {
			key := plan.MakeEdgeKey(tri[i], tri[(i+1)%3])
			if tags, ok := m.segment[key]; ok {
				g.AddEdge(key.U, key.V, tags)
			} else {
				g.AddEdge(key.U, key.V, plan.TagMesh)
			}
		}
	}
}
