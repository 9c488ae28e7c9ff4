package mesh

import (
	"math"
	"math/rand"

	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/plan"
)

// Fixtures are built in code. Each returns its rings, outer first.

func square(x, y, size float64) geometry.Polygon {
	return geometry.PolygonFromPairs(
		[2]float64{x, y},
		[2]float64{x + size, y},
		[2]float64{x + size, y + size},
		[2]float64{x, y + size},
	)
}

func makeStar(x, y, outerRadius, innerRadius float64) geometry.Polygon {
	var poly geometry.Polygon
	for i := 0; i < 10; i++ {
		angle := 2 * math.Pi * float64(i) / 10
		r := outerRadius
		if i%2 == 1 {
			r = innerRadius
		}
		poly.Points = append(poly.Points, geometry.Point{X: x + r*math.Cos(angle), Y: y + r*math.Sin(angle)})
	}
	return poly
}

func SimpleStar() []geometry.Polygon {
	return []geometry.Polygon{makeStar(0, 0, 5, 2)}
}

func SquareWithHole() []geometry.Polygon {
	return []geometry.Polygon{
		square(0, 0, 20),
		square(8, 8, 4),
	}
}

func StarOutline() []geometry.Polygon {
	return []geometry.Polygon{
		makeStar(0, 0, 10, 5),
		makeStar(0, 0, 8, 3).Reverse(),
	}
}

// A comb: a bar along the bottom with slots cut down from the top.
func Comb(teeth int) []geometry.Polygon {
	width := float64(2 * teeth)
	poly := geometry.PolygonFromPairs(
		[2]float64{0, 0},
		[2]float64{width, 0},
		[2]float64{width, 10},
	)
	for i := teeth - 1; i >= 0; i-- {
		x := float64(2 * i)
		poly.Points = append(poly.Points,
			geometry.Point{X: x + 1.5, Y: 10},
			geometry.Point{X: x + 1.5, Y: 3},
			geometry.Point{X: x + 0.5, Y: 3},
			geometry.Point{X: x + 0.5, Y: 10},
		)
	}
	poly.Points = append(poly.Points, geometry.Point{X: 0, Y: 10})
	return []geometry.Polygon{poly}
}

func MultipleHoles() []geometry.Polygon {
	return []geometry.Polygon{
		square(0, 0, 30),
		square(3, 3, 4),
		makeStar(20, 20, 5, 2),
		geometry.PolygonFromPairs([2]float64{5, 20}, [2]float64{12, 14}, [2]float64{10, 25}),
	}
}

// Holes containing filled islands. Only the hole rings get witnesses.
func MultiLayeredHoles() (rings []geometry.Polygon, witnesses []geometry.Point) {
	rings = []geometry.Polygon{
		makeStar(0, 0, 10, 7),
		makeStar(1.5, 5, 3, 2),
		makeStar(1.5, 5, 2, 1),
		makeStar(1.8, -5, 3, 2),
		makeStar(1.8, -5, 2, 1),
	}
	// Between the hole star and its island.
	witnesses = []geometry.Point{{X: 1.5 + 2.5, Y: 5}, {X: 1.8 + 2.5, Y: -5}}
	return rings, witnesses
}

// RandomRoom returns a star-shaped boundary around the origin and up to two
// small convex obstacles near it, each wound either way. Every boundary
// edge stays at least 7 units from the origin and the obstacles stay within
// 4.5, so the rings never touch.
func RandomRoom(rng *rand.Rand) []geometry.Polygon {
	n := 8 + rng.Intn(9)
	step := 2 * math.Pi / float64(n)
	var boundary geometry.Polygon
	for i := 0; i < n; i++ {
		angle := float64(i)*step + (rng.Float64()-0.5)*0.6*step
		r := 8 + 4*rng.Float64()
		boundary.Points = append(boundary.Points, geometry.Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)})
	}
	rings := []geometry.Polygon{randomWinding(rng, boundary)}

	for _, side := range []float64{-1, 1}[:rng.Intn(3)] {
		center := geometry.Point{X: side*2.5 + (rng.Float64()-0.5)*0.6, Y: (rng.Float64() - 0.5) * 0.6}
		rings = append(rings, randomWinding(rng, regularPolygon(center, 1+0.5*rng.Float64(), 3+rng.Intn(4), rng.Float64()*math.Pi)))
	}
	return rings
}

func regularPolygon(center geometry.Point, radius float64, sides int, rotation float64) geometry.Polygon {
	var poly geometry.Polygon
	for i := 0; i < sides; i++ {
		angle := rotation + 2*math.Pi*float64(i)/float64(sides)
		poly.Points = append(poly.Points, center.Add(geometry.Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}))
	}
	return poly
}

func randomWinding(rng *rand.Rand, poly geometry.Polygon) geometry.Polygon {
	if rng.Intn(2) == 0 {
		return poly.Reverse()
	}
	return poly
}

// Builds a segment graph from rings, first ring as the room boundary.
func graphFromRings(rings ...geometry.Polygon) *plan.Graph {
	g := plan.NewGraph()
	for r, poly := range rings {
		role, tags, obstacle := plan.RoleRoomBoundary, plan.TagSegment, -1
		if r > 0 {
			role, tags, obstacle = plan.RoleHoleBoundary, plan.TagSegment|plan.TagHole, r-1
		}
		first := g.NumVertices()
		for _, p := range poly.Points {
			g.AddVertex(p, role, obstacle)
		}
		for i := range poly.Points {
			g.AddEdge(first+i, first+geometry.CircularIndex(i+1, poly.Len()), tags)
		}
	}
	return g
}

func witnessesOf(holes []geometry.Polygon) []geometry.Point {
	var witnesses []geometry.Point
	for _, hole := range holes {
		p, ok := hole.InteriorPoint()
		if !ok {
			panic("fixture hole has no interior")
		}
		witnesses = append(witnesses, p)
	}
	return witnesses
}
