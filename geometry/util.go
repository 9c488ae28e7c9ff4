package geometry

import "math"

const Tolerance = 1e-9

// To compensate for imprecision in floats, equality is tolerance based. If we
// don't account for this, nearly collinear outline points produce slivers that
// the mesher cannot clip.
func Equal(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}

func Zero(v float64) bool {
	return math.Abs(v) < Tolerance
}

// Sign of v with values inside the tolerance band treated as 0.
func Sign(v float64) int {
	switch {
	case v > Tolerance:
		return 1
	case v < -Tolerance:
		return -1
	default:
		return 0
	}
}

// Often we want to treat an array as a circular buffer. This gives the modular
// index given length n, but unlike the raw modulo operator, it only gives positive values
func CircularIndex(i, n int) int {
	return (i%n + n) % n
}
