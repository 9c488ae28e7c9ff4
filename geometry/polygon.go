package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygon is an implicitly closed ring of points. The last point connects
// back to the first, so it must not repeat it.
type Polygon struct {
	Points []Point `json:"points" yaml:"points"`
}

func NewPolygon(points ...Point) Polygon {
	return Polygon{Points: points}
}

// Build a polygon from flat x, y pairs.
func PolygonFromPairs(pairs ...[2]float64) Polygon {
	poly := Polygon{Points: make([]Point, len(pairs))}
	for i, pair := range pairs {
		poly.Points[i] = Point{pair[0], pair[1]}
	}
	return poly
}

func (poly Polygon) Len() int {
	return len(poly.Points)
}

// Edge i runs from point i to point i+1, wrapping around.
func (poly Polygon) Edge(i int) Segment {
	n := len(poly.Points)
	return Segment{poly.Points[CircularIndex(i, n)], poly.Points[CircularIndex(i+1, n)]}
}

func (poly Polygon) Edges() []Segment {
	edges := make([]Segment, len(poly.Points))
	for i := range poly.Points {
		edges[i] = poly.Edge(i)
	}
	return edges
}

// Closed orb ring for the polygon, first point repeated at the end.
func (poly Polygon) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(poly.Points)+1)
	for _, p := range poly.Points {
		ring = append(ring, p.Orb())
	}
	if len(poly.Points) > 0 {
		ring = append(ring, poly.Points[0].Orb())
	}
	return ring
}

// Shoelace signed area. Positive for counterclockwise winding.
func (poly Polygon) SignedArea() float64 {
	area := 0.0
	n := len(poly.Points)
	for i, p := range poly.Points {
		q := poly.Points[CircularIndex(i+1, n)]
		area += p.X*q.Y - q.X*p.Y
	}
	return area / 2
}

// Area is the unsigned area, whatever the winding. planar.Area keeps the
// sign for a bare ring.
func (poly Polygon) Area() float64 {
	if len(poly.Points) < 3 {
		return 0
	}
	return math.Abs(planar.Area(poly.Ring()))
}

func (poly Polygon) IsCCW() bool {
	return poly.Ring().Orientation() == orb.CCW
}

func (poly Polygon) Reverse() Polygon {
	newPoly := Polygon{}
	for i := len(poly.Points) - 1; i >= 0; i-- {
		newPoly.Points = append(newPoly.Points, poly.Points[i])
	}
	return newPoly
}

// Returns the polygon wound counterclockwise.
func (poly Polygon) CCW() Polygon {
	if poly.SignedArea() < 0 {
		return poly.Reverse()
	}
	return poly
}

func (poly Polygon) Centroid() Point {
	if len(poly.Points) < 3 {
		var sum Point
		for _, p := range poly.Points {
			sum = sum.Add(p)
		}
		return sum.Scale(1 / float64(len(poly.Points)))
	}
	c, _ := planar.CentroidArea(poly.Ring())
	return FromOrb(c)
}

func (poly Polygon) Bound() orb.Bound {
	return poly.Ring().Bound()
}

// Whether p lies on one of the polygon's edges.
func (poly Polygon) OnBoundary(p Point) bool {
	for i := range poly.Points {
		if poly.Edge(i).ContainsPoint(p) {
			return true
		}
	}
	return false
}

// Strict containment: points on the boundary are outside.
func (poly Polygon) ContainsPoint(p Point) bool {
	if len(poly.Points) < 3 || poly.OnBoundary(p) {
		return false
	}
	return planar.RingContains(poly.Ring(), p.Orb())
}

// Containment that counts the boundary as inside.
func (poly Polygon) CoversPoint(p Point) bool {
	if len(poly.Points) < 3 {
		return false
	}
	return poly.OnBoundary(p) || planar.RingContains(poly.Ring(), p.Orb())
}

// Whether the segment lies strictly inside the polygon: both endpoints are in
// the interior and no polygon edge touches it.
func (poly Polygon) ContainsSegment(s Segment) bool {
	if !poly.ContainsPoint(s.Start) || !poly.ContainsPoint(s.End) {
		return false
	}
	for i := range poly.Points {
		if poly.Edge(i).Intersects(s) {
			return false
		}
	}
	return true
}

// Whether other lies strictly inside poly, without touching its boundary.
func (poly Polygon) ContainsPolygon(other Polygon) bool {
	for i := range other.Points {
		if !poly.ContainsSegment(other.Edge(i)) {
			return false
		}
	}
	return len(other.Points) > 0
}

// Whether the outlines or interiors of the two polygons share any point.
func (poly Polygon) IntersectsPolygon(other Polygon) bool {
	if !poly.Bound().Intersects(other.Bound()) {
		return false
	}
	for i := range poly.Points {
		edge := poly.Edge(i)
		for j := range other.Points {
			if edge.Intersects(other.Edge(j)) {
				return true
			}
		}
	}
	// No edges meet, so either one is inside the other or they are disjoint.
	return (len(other.Points) > 0 && poly.ContainsPoint(other.Points[0])) ||
		(len(poly.Points) > 0 && other.ContainsPoint(poly.Points[0]))
}

// Distance from p to the polygon's area: 0 inside or on the boundary,
// otherwise the distance to the nearest edge.
func (poly Polygon) DistanceTo(p Point) float64 {
	if poly.CoversPoint(p) {
		return 0
	}
	return planar.DistanceFrom(poly.Ring(), p.Orb())
}

// InteriorPoint returns a point strictly inside the polygon. A horizontal
// scanline is placed in the widest gap between vertex heights, and the
// midpoint of the widest interval it spans inside the polygon is returned.
// Works for any simple polygon, convex or not.
func (poly Polygon) InteriorPoint() (Point, bool) {
	if len(poly.Points) < 3 {
		return Point{}, false
	}

	ys := make([]float64, 0, len(poly.Points))
	for _, p := range poly.Points {
		ys = append(ys, p.Y)
	}
	sort.Float64s(ys)

	gap, y := 0.0, 0.0
	for i := 1; i < len(ys); i++ {
		if d := ys[i] - ys[i-1]; d > gap {
			gap, y = d, (ys[i]+ys[i-1])/2
		}
	}
	if gap <= Tolerance {
		return Point{}, false
	}

	var xs []float64
	for i := range poly.Points {
		edge := poly.Edge(i)
		a, b := edge.Start, edge.End
		if (a.Y > y) != (b.Y > y) {
			t := (y - a.Y) / (b.Y - a.Y)
			xs = append(xs, a.X+t*(b.X-a.X))
		}
	}
	sort.Float64s(xs)

	best, bestWidth := Point{}, 0.0
	for i := 0; i+1 < len(xs); i += 2 {
		if w := xs[i+1] - xs[i]; w > bestWidth {
			bestWidth = w
			best = Point{(xs[i] + xs[i+1]) / 2, y}
		}
	}
	if bestWidth <= Tolerance || math.IsNaN(best.X) {
		return Point{}, false
	}
	return best, true
}
