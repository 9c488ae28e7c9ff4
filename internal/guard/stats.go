package guard

import (
	"github.com/osuushi/guardplan/plan"
)

type GuardStats struct {
	Vertex    int     `json:"vertex" yaml:"vertex"`
	Triangles int     `json:"triangles" yaml:"triangles"`
	Area      float64 `json:"area" yaml:"area"`
}

// Stats summarizes a colored and assigned room.
type Stats struct {
	Colors     int          `json:"colors" yaml:"colors"`
	GroupSizes []int        `json:"group_sizes" yaml:"group_sizes"`
	Guards     []GuardStats `json:"guards" yaml:"guards"`
}

// Summarize counts colors, class sizes, and the triangles and area each
// guard is responsible for. Guards are listed in the order given.
func Summarize(g *plan.Graph, colors Coloring, guards []Guard, tris []plan.Triangle, coverage Coverage) Stats {
	stats := Stats{Colors: CountColors(colors)}
	for _, members := range colors.Groups() {
		stats.GroupSizes = append(stats.GroupSizes, len(members))
	}

	index := make(map[int]int, len(guards))
	for i, guard := range guards {
		index[guard.Vertex] = i
		stats.Guards = append(stats.Guards, GuardStats{Vertex: guard.Vertex})
	}
	for i, tri := range tris {
		if i >= len(coverage) {
			break
		}
		j, ok := index[coverage[i]]
		if !ok {
			continue
		}
		stats.Guards[j].Triangles++
		stats.Guards[j].Area += g.TrianglePolygon(tri).Area()
	}
	return stats
}
