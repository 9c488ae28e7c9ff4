package mesh

// This contains no actual tests. It is just a helper for testing triangulation
// validity.

import (
	"math"
	"sort"
	"testing"

	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to check that a triangulation is valid. The rules are:
// 1. Every triangle is counterclockwise with non-zero area.
// 2. Every triangle edge is an edge of the graph.
// 3. Every input segment is covered by a chain of segment edges between its
//    endpoints.
// 4. The triangles cover exactly the area inside an odd number of rings,
//    checked by sampling.
// 5. The sum of the triangle areas equals the expected area.
func AssertValidTriangulation(
	t *testing.T,
	before *plan.Graph,
	after *plan.Graph,
	result *Result,
	rings []geometry.Polygon,
	expectedArea float64,
) {
	var total float64
	for _, tri := range result.Triangles {
		poly := after.TrianglePolygon(tri)
		require.Greater(t, poly.SignedArea(), 0.0, "triangle %v is not counterclockwise", tri)
		total += poly.Area()
		for i := 0; i < 3; i++ {
			require.True(t, after.HasEdge(tri[i], tri[(i+1)%3]), "triangle edge %d-%d is missing from the graph", tri[i], tri[(i+1)%3])
		}
	}
	require.InDelta(t, expectedArea, total, 1e-6*math.Max(1, expectedArea), "sum of triangle areas")

	for _, s := range before.Segments() {
		assertSegmentChain(t, after, s)
	}

	validateBySampling(t, after, result, rings)
}

// The vertices on segment s, ordered from s.U to s.V, must be linked by
// edges carrying the segment's tags.
func assertSegmentChain(t *testing.T, g *plan.Graph, s plan.Edge) {
	segment := g.Segment(s.U, s.V)
	var onSegment []int
	for _, v := range g.Vertices {
		if segment.ContainsPoint(v.Point) {
			onSegment = append(onSegment, v.ID)
		}
	}
	start := g.Point(s.U)
	sort.Slice(onSegment, func(i, j int) bool {
		return g.Point(onSegment[i]).Distance(start) < g.Point(onSegment[j]).Distance(start)
	})
	require.GreaterOrEqual(t, len(onSegment), 2)
	assert.Equal(t, s.U, onSegment[0])
	assert.Equal(t, s.V, onSegment[len(onSegment)-1])
	for i := 1; i < len(onSegment); i++ {
		edge, ok := g.Edge(onSegment[i-1], onSegment[i])
		if assert.True(t, ok, "segment %d-%d is broken between %d and %d", s.U, s.V, onSegment[i-1], onSegment[i]) {
			assert.Equal(t, s.Tags, edge.Tags, "piece %d-%d of segment %d-%d", onSegment[i-1], onSegment[i], s.U, s.V)
		}
	}
}

func validateBySampling(t *testing.T, g *plan.Graph, result *Result, rings []geometry.Polygon) {
	minX, minY, maxX, maxY := math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, ring := range rings {
		for _, p := range ring.Points {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}

	// Pad the bounding box by 10%
	xPadding := (maxX - minX) * 0.1
	yPadding := (maxY - minY) * 0.1
	minX -= xPadding
	minY -= yPadding
	maxX += xPadding
	maxY += yPadding

	// Offset the grid so samples stay off axis-aligned outlines.
	step := math.Max(maxX-minX, maxY-minY) / 50
	for y := minY + step*0.37; y <= maxY; y += step {
		for x := minX + step*0.61; x <= maxX; x += step {
			p := geometry.Point{X: x, Y: y}

			onOutline := false
			crossings := 0
			for _, ring := range rings {
				if ring.OnBoundary(p) {
					onOutline = true
				}
				if ring.ContainsPoint(p) {
					crossings++
				}
			}
			if onOutline {
				continue
			}

			covered := 0
			for _, tri := range result.Triangles {
				if g.TrianglePolygon(tri).CoversPoint(p) {
					covered++
				}
			}
			if crossings%2 == 1 {
				assert.GreaterOrEqual(t, covered, 1, "point %v should be covered", p)
			} else {
				assert.Equal(t, 0, covered, "point %v should not be covered", p)
			}
		}
	}
}

func ringsArea(rings []geometry.Polygon) float64 {
	area := rings[0].Area()
	for _, ring := range rings[1:] {
		area -= ring.Area()
	}
	return area
}
