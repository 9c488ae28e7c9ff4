// Package guard derives guard positions from a triangulated room: a greedy
// proper coloring of the triangulation graph, the smallest color class as the
// guard set, and an assignment of every triangle to one guard.
package guard

import (
	"sort"

	"github.com/osuushi/guardplan/plan"
	"gonum.org/v1/gonum/graph/simple"
)

// Coloring maps vertex id to color.
type Coloring map[int]int

// Color greedily colors g in ascending vertex id order. Each vertex gets
// the smallest non-negative color not used by an already colored neighbor.
// Nothing bounds the palette: on a triangulated room it is usually 3 colors,
// but that is a property to check, not a guarantee.
func Color(g *plan.Graph) Coloring {
	return ColorAdjacency(g.Adjacency(), g.NumVertices())
}

// ColorAdjacency colors nodes 0..n-1 of an undirected graph.
func ColorAdjacency(adjacency *simple.UndirectedGraph, n int) Coloring {
	colors := make(Coloring, n)
	for id := 0; id < n; id++ {
		used := make(map[int]bool)
		neighbors := adjacency.From(int64(id))
		for neighbors.Next() {
			if c, ok := colors[int(neighbors.Node().ID())]; ok {
				used[c] = true
			}
		}
		color := 0
		for used[color] {
			color++
		}
		colors[id] = color
	}
	return colors
}

// CountColors is the number of distinct colors used.
func CountColors(colors Coloring) int {
	seen := make(map[int]struct{})
	for _, color := range colors {
		seen[color] = struct{}{}
	}
	return len(seen)
}

// Groups returns the members of every color class, ascending by id, indexed
// by color.
func (c Coloring) Groups() [][]int {
	maxColor := -1
	for _, color := range c {
		if color > maxColor {
			maxColor = color
		}
	}
	groups := make([][]int, maxColor+1)
	for id, color := range c {
		groups[color] = append(groups[color], id)
	}
	for _, group := range groups {
		sort.Ints(group)
	}
	return groups
}

// Proper reports whether no edge of g joins two vertices of the same color.
// The first offending edge is returned when it does not.
func (c Coloring) Proper(g *plan.Graph) (plan.Edge, bool) {
	for _, edge := range g.Edges() {
		if c[edge.U] == c[edge.V] {
			return edge, false
		}
	}
	return plan.Edge{}, true
}
