package mesh

import (
	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/plan"
)

// Refinement stops with an error once this many Steiner points were added.
const DefaultMaxSteiner = 20000

// Region attaches an area limit to the segment-bounded face that contains
// Witness.
type Region struct {
	Witness geometry.Point
	MaxArea float64
}

type Options struct {
	// Upper bound on triangle area everywhere. 0 means unconstrained.
	MaxArea float64
	// Per-face area limits. They override MaxArea inside their face; when two
	// regions land in the same face the smaller limit wins.
	Regions []Region
	// Cap on Steiner points added by refinement. 0 means DefaultMaxSteiner.
	MaxSteiner int
	// Run constrained Delaunay edge flips after clipping and after each
	// refinement split.
	Delaunay bool
}

func (o Options) maxSteiner() int {
	if o.MaxSteiner <= 0 {
		return DefaultMaxSteiner
	}
	return o.MaxSteiner
}

type Result struct {
	// Counterclockwise triangles over the augmented vertex set.
	Triangles []plan.Triangle
	// Index into Options.Regions for each triangle, -1 when none applies.
	TriangleRegion []int
	// Number of Steiner vertices appended to the graph.
	Steiner int
	// Edge flips performed by the Delaunay pass and refinement.
	Flips int
	// Longest-edge splits performed by refinement.
	Splits int
	// Hole witnesses that fell outside every ring and were ignored.
	IgnoredHoles int
}

// Total area of the triangles.
func (r *Result) Area(g *plan.Graph) float64 {
	area := 0.0
	for _, tri := range r.Triangles {
		area += g.TrianglePolygon(tri).Area()
	}
	return area
}
