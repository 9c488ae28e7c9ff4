package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/osuushi/guardplan/geometry"
	"gonum.org/v1/gonum/graph/simple"
)

type Role int

const (
	RoleRoomBoundary Role = iota
	RoleHoleBoundary
	RoleSteiner
)

func (r Role) String() string {
	switch r {
	case RoleRoomBoundary:
		return "room-boundary"
	case RoleHoleBoundary:
		return "hole-boundary"
	case RoleSteiner:
		return "steiner"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// NoGroup marks a vertex that has not been colored yet.
const NoGroup = -1

type Vertex struct {
	ID    int            `json:"id" yaml:"id"`
	Point geometry.Point `json:"point" yaml:"point"`
	Role  Role           `json:"role" yaml:"role"`
	// Index of the owning obstacle for hole-boundary vertices, -1 otherwise.
	Obstacle int `json:"obstacle" yaml:"obstacle"`
	// Color class assigned by the guard selector, NoGroup before coloring.
	Group int `json:"group" yaml:"group"`
}

// EdgeTag is a bit set describing where an edge came from.
type EdgeTag uint8

const (
	// The edge is part of an input outline and must survive triangulation.
	TagSegment EdgeTag = 1 << iota
	// The edge belongs to an obstacle outline.
	TagHole
	// The edge was introduced by the mesher.
	TagMesh
)

func (t EdgeTag) Has(flag EdgeTag) bool {
	return t&flag == flag
}

func (t EdgeTag) String() string {
	var parts []string
	if t.Has(TagSegment) {
		parts = append(parts, "segment")
	}
	if t.Has(TagHole) {
		parts = append(parts, "hole")
	}
	if t.Has(TagMesh) {
		parts = append(parts, "mesh")
	}
	return strings.Join(parts, "|")
}

// EdgeKey is an unordered vertex pair, normalized so that U < V.
type EdgeKey struct {
	U, V int
}

func MakeEdgeKey(a, b int) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{a, b}
}

type Edge struct {
	U    int     `json:"u" yaml:"u"`
	V    int     `json:"v" yaml:"v"`
	Tags EdgeTag `json:"tags" yaml:"tags"`
}

func (e Edge) Key() EdgeKey {
	return EdgeKey{e.U, e.V}
}

func (e Edge) IsSegment() bool { return e.Tags.Has(TagSegment) }
func (e Edge) IsHole() bool    { return e.Tags.Has(TagHole) }
func (e Edge) IsMesh() bool    { return e.Tags.Has(TagMesh) }

// Other returns the endpoint of e that is not id.
func (e Edge) Other(id int) int {
	if e.U == id {
		return e.V
	}
	return e.U
}

// Triangle holds three vertex ids, counterclockwise once produced by the
// mesher.
type Triangle [3]int

// Graph is a vertex and edge container shared by every stage of a solve.
// Vertex ids are dense indexes into Vertices. Edge order is insertion order.
type Graph struct {
	Vertices []Vertex

	edges map[EdgeKey]EdgeTag
	order []EdgeKey
	adj   map[int]map[int]struct{}
}

func NewGraph() *Graph {
	return &Graph{
		edges: make(map[EdgeKey]EdgeTag),
		adj:   make(map[int]map[int]struct{}),
	}
}

func (g *Graph) NumVertices() int {
	return len(g.Vertices)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// AddVertex appends a vertex and returns its id.
func (g *Graph) AddVertex(p geometry.Point, role Role, obstacle int) int {
	id := len(g.Vertices)
	g.Vertices = append(g.Vertices, Vertex{
		ID:       id,
		Point:    p,
		Role:     role,
		Obstacle: obstacle,
		Group:    NoGroup,
	})
	return id
}

func (g *Graph) Vertex(id int) Vertex {
	return g.Vertices[id]
}

func (g *Graph) Point(id int) geometry.Point {
	return g.Vertices[id].Point
}

// AddEdge inserts the edge u-v, or merges tags into an existing one.
func (g *Graph) AddEdge(u, v int, tags EdgeTag) {
	if u == v {
		panic(fmt.Sprintf("plan: self loop on vertex %d", u))
	}
	if u < 0 || v < 0 || u >= len(g.Vertices) || v >= len(g.Vertices) {
		panic(fmt.Sprintf("plan: edge %d-%d references a missing vertex", u, v))
	}

	key := MakeEdgeKey(u, v)
	if existing, ok := g.edges[key]; ok {
		g.edges[key] = existing | tags
		return
	}
	g.edges[key] = tags
	g.order = append(g.order, key)
	g.link(u, v)
	g.link(v, u)
}

func (g *Graph) link(u, v int) {
	set, ok := g.adj[u]
	if !ok {
		set = make(map[int]struct{})
		g.adj[u] = set
	}
	set[v] = struct{}{}
}

// RemoveEdge deletes the edge u-v. It reports whether the edge existed.
func (g *Graph) RemoveEdge(u, v int) bool {
	key := MakeEdgeKey(u, v)
	if _, ok := g.edges[key]; !ok {
		return false
	}
	delete(g.edges, key)
	delete(g.adj[u], v)
	delete(g.adj[v], u)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return true
}

func (g *Graph) Edge(u, v int) (Edge, bool) {
	key := MakeEdgeKey(u, v)
	tags, ok := g.edges[key]
	if !ok {
		return Edge{}, false
	}
	return Edge{key.U, key.V, tags}, true
}

func (g *Graph) HasEdge(u, v int) bool {
	_, ok := g.edges[MakeEdgeKey(u, v)]
	return ok
}

// Edges in insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.order))
	for _, key := range g.order {
		edges = append(edges, Edge{key.U, key.V, g.edges[key]})
	}
	return edges
}

// Edges tagged as input segments, in insertion order.
func (g *Graph) Segments() []Edge {
	var segments []Edge
	for _, edge := range g.Edges() {
		if edge.IsSegment() {
			segments = append(segments, edge)
		}
	}
	return segments
}

// Neighbors of id in ascending id order.
func (g *Graph) Neighbors(id int) []int {
	neighbors := make([]int, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		neighbors = append(neighbors, n)
	}
	sort.Ints(neighbors)
	return neighbors
}

func (g *Graph) Degree(id int) int {
	return len(g.adj[id])
}

// Adjacency returns an undirected gonum view of the graph. Node ids equal
// vertex ids and every vertex is present, isolated or not.
func (g *Graph) Adjacency() *simple.UndirectedGraph {
	adjacency := simple.NewUndirectedGraph()
	for _, v := range g.Vertices {
		adjacency.AddNode(simple.Node(v.ID))
	}
	for _, key := range g.order {
		adjacency.SetEdge(adjacency.NewEdge(simple.Node(key.U), simple.Node(key.V)))
	}
	return adjacency
}

// Segment geometry of the edge u-v.
func (g *Graph) Segment(u, v int) geometry.Segment {
	return geometry.Segment{Start: g.Point(u), End: g.Point(v)}
}

// Polygon formed by the three corners of tri.
func (g *Graph) TrianglePolygon(tri Triangle) geometry.Polygon {
	return geometry.NewPolygon(g.Point(tri[0]), g.Point(tri[1]), g.Point(tri[2]))
}

// ApplyColoring stores the color of every vertex in its Group field.
// Vertices missing from colors are reset to NoGroup.
func (g *Graph) ApplyColoring(colors map[int]int) {
	for i := range g.Vertices {
		if c, ok := colors[i]; ok {
			g.Vertices[i].Group = c
		} else {
			g.Vertices[i].Group = NoGroup
		}
	}
}

// Members of color class group, ascending by id.
func (g *Graph) GroupMembers(group int) []int {
	var members []int
	for _, v := range g.Vertices {
		if v.Group == group {
			members = append(members, v.ID)
		}
	}
	return members
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	clone := NewGraph()
	clone.Vertices = append([]Vertex(nil), g.Vertices...)
	for _, key := range g.order {
		clone.AddEdge(key.U, key.V, g.edges[key])
	}
	return clone
}

// Count of vertices per role.
func (g *Graph) CountRoles() map[Role]int {
	counts := make(map[Role]int)
	for _, v := range g.Vertices {
		counts[v.Role]++
	}
	return counts
}
