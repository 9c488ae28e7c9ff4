package dbg

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"github.com/osuushi/guardplan/internal/solver"
)

// Padding around the room, in pixels.
const drawPadding = 20

// Fill colors for guard territories, cycled by guard index.
var palette = [][3]float64{
	{0.12, 0.47, 0.71},
	{1.00, 0.50, 0.05},
	{0.17, 0.63, 0.17},
	{0.58, 0.40, 0.74},
	{0.55, 0.34, 0.29},
	{0.89, 0.47, 0.76},
	{0.74, 0.74, 0.13},
	{0.09, 0.75, 0.81},
}

// DrawSolution renders a solved room with the origin at the bottom left.
// Triangles are filled by the guard covering them, mesh edges are thin,
// outline segments thick, and guards are red dots with their vertex id.
func DrawSolution(sol *solver.Solution, scale float64) *gg.Context {
	bound := sol.Room.Boundary.Bound()
	minX, minY := bound.Min[0], bound.Min[1]
	width := int(math.Ceil(scale*(bound.Max[0]-minX))) + drawPadding*2
	height := int(math.Ceil(scale*(bound.Max[1]-minY))) + drawPadding*2

	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()
	// Flip the context so the origin is at the bottom left
	c.Translate(0, float64(height))
	c.Scale(1, -1)
	c.Translate(drawPadding, drawPadding)
	c.Scale(scale, scale)
	c.Translate(-minX, -minY)

	owner := make(map[int]int, len(sol.Guards))
	for i, g := range sol.Guards {
		owner[g.Vertex] = i
	}
	g := sol.Graph
	for i, tri := range sol.Triangles() {
		c.NewSubPath()
		for _, id := range tri {
			p := g.Point(id)
			c.LineTo(p.X, p.Y)
		}
		c.ClosePath()
		color := palette[0]
		if i < len(sol.Coverage) {
			color = palette[owner[sol.Coverage[i]]%len(palette)]
		}
		c.SetRGBA(color[0], color[1], color[2], 0.6)
		c.Fill()
	}

	for _, e := range g.Edges() {
		a, b := g.Point(e.U), g.Point(e.V)
		c.DrawLine(a.X, a.Y, b.X, b.Y)
		if e.IsSegment() {
			c.SetRGB(1, 1, 1)
			c.SetLineWidth(3)
		} else {
			c.SetRGB(0, 1, 0)
			c.SetLineWidth(1)
		}
		c.Stroke()
	}

	for _, guard := range sol.Guards {
		x, y := guard.Point.X, guard.Point.Y
		c.DrawCircle(x, y, 5/scale)
		c.SetRGB(1, 0, 0)
		c.Fill()

		// Text is drawn in native coordinates so it is not mirrored.
		nx, ny := c.TransformPoint(x, y)
		c.Push()
		c.Identity()
		c.SetRGB(1, 1, 1)
		c.DrawStringAnchored(fmt.Sprint(guard.Vertex), nx+6, ny-6, 0, 0)
		c.Pop()
	}
	return c
}

// SavePNG renders sol and writes it to path.
func SavePNG(path string, sol *solver.Solution, scale float64) error {
	return DrawSolution(sol, scale).SavePNG(path)
}
