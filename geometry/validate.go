package geometry

import "github.com/osuushi/guardplan/fault"

// ValidatePolygon checks that poly is a simple polygon: at least 3 finite
// points, no repeated consecutive points, non-zero area, no two non-adjacent
// edges meeting, and no adjacent edges folding back over each other.
func ValidatePolygon(poly Polygon) error {
	n := len(poly.Points)
	if n < 3 {
		return fault.InvalidGeometry("polygon has %d points, need at least 3", n)
	}

	for i, p := range poly.Points {
		if !p.IsFinite() {
			return fault.InvalidGeometry("point %d is not finite: %v", i, p)
		}
	}

	for i, p := range poly.Points {
		next := poly.Points[CircularIndex(i+1, n)]
		if p.Equal(next) {
			return fault.InvalidGeometry("points %d and %d are duplicates at %v", i, CircularIndex(i+1, n), p)
		}
	}

	if Zero(poly.SignedArea()) {
		return fault.InvalidGeometry("polygon has zero area")
	}

	for i := 0; i < n; i++ {
		edge := poly.Edge(i)
		for j := i + 1; j < n; j++ {
			other := poly.Edge(j)
			adjacent := j == i+1 || (i == 0 && j == n-1)
			if adjacent {
				if edge.Overlaps(other) {
					return fault.InvalidGeometry("edges %d and %d fold back over each other", i, j)
				}
				continue
			}
			if edge.Intersects(other) {
				return fault.InvalidGeometry("edges %d and %d intersect", i, j)
			}
		}
	}

	return nil
}
