// Package geometry holds the plane primitives the solver is built on: points,
// segments and simple polygons, plus the validity rules a room outline has to
// satisfy before it is meshed.
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{p.X * f, p.Y * f}
}

// Midpoint of p and q.
func (p Point) Midpoint(q Point) Point {
	return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2}
}

// Tolerance-based equality of both coordinates.
func (p Point) Equal(q Point) bool {
	return Equal(p.X, q.X) && Equal(p.Y, q.Y)
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Point) Distance(q Point) float64 {
	return planar.Distance(p.Orb(), q.Orb())
}

// Lexicographic order: by X, then by Y.
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

func FromOrb(p orb.Point) Point {
	return Point{p.X(), p.Y()}
}

type Segment struct {
	Start Point `json:"start" yaml:"start"`
	End   Point `json:"end" yaml:"end"`
}

func (s Segment) String() string {
	return fmt.Sprintf("%v-%v", s.Start, s.End)
}

func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

func (s Segment) Midpoint() Point {
	return s.Start.Midpoint(s.End)
}

// Whether the segment has (near) zero length.
func (s Segment) IsDegenerate() bool {
	return s.Start.Equal(s.End)
}

// Closed-segment containment: endpoints count.
func (s Segment) ContainsPoint(p Point) bool {
	if !Zero(Orient(s.Start, s.End, p)) {
		return false
	}
	return inBox(s.Start, s.End, p)
}

// Distance from p to the closest point on the segment.
func (s Segment) DistanceTo(p Point) float64 {
	return planar.DistanceFromSegment(s.Start.Orb(), s.End.Orb(), p.Orb())
}

// Intersects reports whether two closed segments share at least one point.
// Touching at an endpoint and collinear overlap both count.
func (s Segment) Intersects(other Segment) bool {
	d1 := Sign(Orient(s.Start, s.End, other.Start))
	d2 := Sign(Orient(s.Start, s.End, other.End))
	d3 := Sign(Orient(other.Start, other.End, s.Start))
	d4 := Sign(Orient(other.Start, other.End, s.End))

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}

	return (d1 == 0 && inBox(s.Start, s.End, other.Start)) ||
		(d2 == 0 && inBox(s.Start, s.End, other.End)) ||
		(d3 == 0 && inBox(other.Start, other.End, s.Start)) ||
		(d4 == 0 && inBox(other.Start, other.End, s.End))
}

// Crosses reports a proper crossing: the interiors of the segments meet in
// exactly one point that is not an endpoint of either.
func (s Segment) Crosses(other Segment) bool {
	d1 := Sign(Orient(s.Start, s.End, other.Start))
	d2 := Sign(Orient(s.Start, s.End, other.End))
	d3 := Sign(Orient(other.Start, other.End, s.Start))
	d4 := Sign(Orient(other.Start, other.End, s.End))
	return d1*d2 < 0 && d3*d4 < 0
}

// Overlaps reports whether two segments are collinear and share more than a
// single point.
func (s Segment) Overlaps(other Segment) bool {
	if !Zero(Orient(s.Start, s.End, other.Start)) || !Zero(Orient(s.Start, s.End, other.End)) {
		return false
	}

	// Project onto the dominant axis and compare the intervals.
	axis := func(p Point) float64 { return p.X }
	if math.Abs(s.End.Y-s.Start.Y) > math.Abs(s.End.X-s.Start.X) {
		axis = func(p Point) float64 { return p.Y }
	}
	a0, a1 := minmax(axis(s.Start), axis(s.End))
	b0, b1 := minmax(axis(other.Start), axis(other.End))
	return math.Min(a1, b1)-math.Max(a0, b0) > Tolerance
}

func (s Segment) Bound() orb.Bound {
	return orb.LineString{s.Start.Orb(), s.End.Orb()}.Bound()
}

func (s Segment) Reverse() Segment {
	return Segment{s.End, s.Start}
}

// Orient is twice the signed area of the triangle abc. Positive means c lies
// to the left of the directed line ab.
func Orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Whether p lies in the bounding box of a and b, with tolerance.
func inBox(a, b, p Point) bool {
	return p.X >= math.Min(a.X, b.X)-Tolerance && p.X <= math.Max(a.X, b.X)+Tolerance &&
		p.Y >= math.Min(a.Y, b.Y)-Tolerance && p.Y <= math.Max(a.Y, b.Y)+Tolerance
}

func minmax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}
