package guard

import (
	"math"
	"testing"

	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/internal/mesh"
	"github.com/osuushi/guardplan/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float64) geometry.Polygon {
	return geometry.PolygonFromPairs(
		[2]float64{x, y},
		[2]float64{x + size, y},
		[2]float64{x + size, y + size},
		[2]float64{x, y + size},
	)
}

func star(outerRadius, innerRadius float64) geometry.Polygon {
	var poly geometry.Polygon
	for i := 0; i < 10; i++ {
		angle := 2 * math.Pi * float64(i) / 10
		r := outerRadius
		if i%2 == 1 {
			r = innerRadius
		}
		poly.Points = append(poly.Points, geometry.Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)})
	}
	return poly
}

// Builds and meshes a room.
func meshRoom(t *testing.T, room plan.Room, opts mesh.Options) (*plan.Graph, *mesh.Result) {
	require.NoError(t, room.Validate())
	g, err := plan.BuildGraph(room)
	require.NoError(t, err)
	witnesses, err := plan.HoleWitnesses(room)
	require.NoError(t, err)
	result, err := mesh.Triangulate(g, witnesses, opts)
	require.NoError(t, err)
	return g, result
}

func TestColorGreedyOrder(t *testing.T) {
	// Two triangles sharing edge 1-2.
	g := plan.NewGraph()
	for _, p := range []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}} {
		g.AddVertex(p, plan.RoleRoomBoundary, -1)
	}
	g.AddEdge(0, 1, plan.TagSegment)
	g.AddEdge(1, 3, plan.TagSegment)
	g.AddEdge(3, 2, plan.TagSegment)
	g.AddEdge(2, 0, plan.TagSegment)
	g.AddEdge(1, 2, plan.TagMesh)

	colors := Color(g)
	assert.Equal(t, Coloring{0: 0, 1: 1, 2: 2, 3: 0}, colors)
	assert.Equal(t, 3, CountColors(colors))
	assert.Equal(t, [][]int{{0, 3}, {1}, {2}}, colors.Groups())

	_, proper := colors.Proper(g)
	assert.True(t, proper)
}

func TestColorIsolatedVertex(t *testing.T) {
	g := plan.NewGraph()
	g.AddVertex(geometry.Point{}, plan.RoleSteiner, -1)
	assert.Equal(t, Coloring{0: 0}, Color(g))
}

func TestColoringProperties(t *testing.T) {
	rooms := map[string]plan.Room{
		"square": {Name: "square", Boundary: square(0, 0, 10)},
		"square with hole": {Name: "hole", Boundary: square(0, 0, 20), Obstacles: []plan.Obstacle{
			{Polygon: square(8, 8, 4)},
		}},
		"star":          {Name: "star", Boundary: star(5, 2)},
		"refined":       {Name: "refined", Boundary: square(0, 0, 10)},
		"two obstacles": {Name: "two", Boundary: square(0, 0, 30), Obstacles: []plan.Obstacle{
			{Polygon: square(3, 3, 4)},
			{Polygon: square(15, 15, 6)},
		}},
	}

	for name, room := range rooms {
		t.Run(name, func(t *testing.T) {
			opts := mesh.Options{Delaunay: true}
			if name == "refined" {
				opts.MaxArea = 4
			}
			g, result := meshRoom(t, room, opts)
			colors := Color(g)
			require.Len(t, colors, g.NumVertices())

			edge, proper := colors.Proper(g)
			assert.True(t, proper, "edge %d-%d joins two vertices of color %d", edge.U, edge.V, colors[edge.U])

			// Any triangle forces 3 colors, so the smallest class is at most n/3.
			assert.GreaterOrEqual(t, CountColors(colors), 3)
			g.ApplyColoring(colors)
			group, guards, err := SelectGuards(g, colors, room.Name)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(guards), g.NumVertices()/3+1)
			assert.NotEmpty(t, guards)

			coverage, err := AssignCoverage(g, group, result.Triangles)
			require.NoError(t, err)
			require.Len(t, coverage, len(result.Triangles))
			for _, id := range coverage {
				assert.Equal(t, group, g.Vertex(id).Group)
			}

			again, err := AssignCoverage(g, group, result.Triangles)
			require.NoError(t, err)
			assert.Equal(t, coverage, again, "assignment is deterministic")
		})
	}
}

func TestSquareUsesThreeColors(t *testing.T) {
	g, result := meshRoom(t, plan.Room{Name: "a", Boundary: square(0, 0, 10)}, mesh.Options{})
	colors := Color(g)
	assert.Equal(t, 3, CountColors(colors))

	g.ApplyColoring(colors)
	group, guards, err := SelectGuards(g, colors, "a")
	require.NoError(t, err)
	require.Len(t, guards, 1)
	assert.Equal(t, group, guards[0].Group)
	assert.Equal(t, "a", guards[0].Room)
	assert.True(t, square(0, 0, 10).OnBoundary(guards[0].Point))

	coverage, err := AssignCoverage(g, group, result.Triangles)
	require.NoError(t, err)
	for _, id := range coverage {
		assert.Equal(t, guards[0].Vertex, id)
	}
}

func TestSelectGuardsTieBreak(t *testing.T) {
	g := plan.NewGraph()
	for i := 0; i < 6; i++ {
		g.AddVertex(geometry.Point{X: float64(i)}, plan.RoleRoomBoundary, -1)
	}
	colors := Coloring{0: 0, 1: 1, 2: 2, 3: 0, 4: 1, 5: 2}
	group, guards, err := SelectGuards(g, colors, "r")
	require.NoError(t, err)
	assert.Equal(t, 0, group, "lowest color wins ties")
	assert.Equal(t, []Guard{
		{Vertex: 0, Point: geometry.Point{X: 0}, Group: 0, Room: "r"},
		{Vertex: 3, Point: geometry.Point{X: 3}, Group: 0, Room: "r"},
	}, guards)

	colors[0] = 2
	group, guards, err = SelectGuards(g, colors, "r")
	require.NoError(t, err)
	assert.Equal(t, 0, group)
	assert.Len(t, guards, 1)
}

func TestSelectGuardsEmpty(t *testing.T) {
	_, _, err := SelectGuards(plan.NewGraph(), Coloring{}, "void")
	require.Error(t, err)
	assert.True(t, fault.IsEmptyGuardGroup(err))
	assert.Equal(t, "void", fault.GetMeta(err)["room"])
}

func TestAssignCoverage(t *testing.T) {
	g := plan.NewGraph()
	for _, p := range []geometry.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
		{X: 3, Y: 0}, {X: 0, Y: 3},
	} {
		g.AddVertex(p, plan.RoleRoomBoundary, -1)
	}

	t.Run("first corner in vertex order wins", func(t *testing.T) {
		g.ApplyColoring(map[int]int{0: 1, 1: 0, 2: 0, 3: 2, 4: 2})
		coverage, err := AssignCoverage(g, 0, []plan.Triangle{{0, 1, 2}, {2, 1, 0}, {0, 2, 1}})
		require.NoError(t, err)
		assert.Equal(t, Coverage{1, 2, 2}, coverage)
	})

	t.Run("nearest guard, ties to lowest id", func(t *testing.T) {
		g.ApplyColoring(map[int]int{0: 1, 1: 2, 2: 1, 3: 0, 4: 0})
		coverage, err := AssignCoverage(g, 0, []plan.Triangle{{0, 1, 2}})
		require.NoError(t, err)
		assert.Equal(t, Coverage{3}, coverage)
	})

	t.Run("nearest guard", func(t *testing.T) {
		h := g.Clone()
		h.AddVertex(geometry.Point{X: 1.5, Y: 1.5}, plan.RoleSteiner, -1)
		h.ApplyColoring(map[int]int{0: 1, 1: 2, 2: 1, 3: 0, 4: 0, 5: 0})
		coverage, err := AssignCoverage(h, 0, []plan.Triangle{{0, 1, 2}})
		require.NoError(t, err)
		assert.Equal(t, Coverage{5}, coverage)
	})

	t.Run("empty group", func(t *testing.T) {
		_, err := AssignCoverage(g, 7, []plan.Triangle{{0, 1, 2}})
		assert.True(t, fault.IsEmptyGuardGroup(err))
	})
}

func TestSummarize(t *testing.T) {
	room := plan.Room{Name: "hall", Boundary: square(0, 0, 20), Obstacles: []plan.Obstacle{{Polygon: square(8, 8, 4)}}}
	g, result := meshRoom(t, room, mesh.Options{MaxArea: 20, Delaunay: true})
	colors := Color(g)
	g.ApplyColoring(colors)
	group, guards, err := SelectGuards(g, colors, room.Name)
	require.NoError(t, err)
	coverage, err := AssignCoverage(g, group, result.Triangles)
	require.NoError(t, err)

	stats := Summarize(g, colors, guards, result.Triangles, coverage)
	assert.Equal(t, CountColors(colors), stats.Colors)
	require.Len(t, stats.Guards, len(guards))

	var triangles, sizes int
	var area float64
	for _, s := range stats.Guards {
		triangles += s.Triangles
		area += s.Area
	}
	for _, size := range stats.GroupSizes {
		sizes += size
	}
	assert.Equal(t, len(result.Triangles), triangles)
	assert.Equal(t, g.NumVertices(), sizes)
	assert.InDelta(t, 384, area, 1e-6)
}
