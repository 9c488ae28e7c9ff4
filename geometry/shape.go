package geometry

import "fmt"

// Shape is a closed union over Point, Segment and Polygon. No other types
// can implement it, so switches over it are exhaustive.
type Shape interface {
	shapeTypeHint()
}

func (Point) shapeTypeHint()   {}
func (Segment) shapeTypeHint() {}
func (Polygon) shapeTypeHint() {}

// Contains reports whether shape lies entirely within container. Polygons
// contain strictly (their boundary is outside), segments and points contain
// what lies on them.
func Contains(container, shape Shape) bool {
	switch c := container.(type) {
	case Point:
		switch s := shape.(type) {
		case Point:
			return c.Equal(s)
		case Segment:
			return s.IsDegenerate() && c.Equal(s.Start)
		case Polygon:
			return false
		}
	case Segment:
		switch s := shape.(type) {
		case Point:
			return c.ContainsPoint(s)
		case Segment:
			return c.ContainsPoint(s.Start) && c.ContainsPoint(s.End)
		case Polygon:
			return false
		}
	case Polygon:
		switch s := shape.(type) {
		case Point:
			return c.ContainsPoint(s)
		case Segment:
			return c.ContainsSegment(s)
		case Polygon:
			return c.ContainsPolygon(s)
		}
	}
	panic(fmt.Sprintf("geometry: unhandled shapes %T in %T", shape, container))
}

// Intersects reports whether a and b share at least one point. Polygons are
// treated as closed areas here.
func Intersects(a, b Shape) bool {
	switch x := a.(type) {
	case Point:
		switch y := b.(type) {
		case Point:
			return x.Equal(y)
		case Segment:
			return y.ContainsPoint(x)
		case Polygon:
			return y.CoversPoint(x)
		}
	case Segment:
		switch y := b.(type) {
		case Point:
			return x.ContainsPoint(y)
		case Segment:
			return x.Intersects(y)
		case Polygon:
			if y.CoversPoint(x.Start) {
				return true
			}
			for i := range y.Points {
				if y.Edge(i).Intersects(x) {
					return true
				}
			}
			return false
		}
	case Polygon:
		switch y := b.(type) {
		case Point, Segment:
			return Intersects(y, x)
		case Polygon:
			return x.IntersectsPolygon(y)
		}
	}
	panic(fmt.Sprintf("geometry: unhandled shapes %T and %T", a, b))
}

// AnyContains returns the index of the first container holding shape.
func AnyContains[S Shape](containers []S, shape Shape) (int, bool) {
	for i, c := range containers {
		if Contains(c, shape) {
			return i, true
		}
	}
	return -1, false
}
