package mesh

import (
	"math"
	"sort"

	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/plan"
)

// Ear clipping over a circular doubly linked list of ring vertices. Holes are
// first spliced into the outer ring through bridge edges (Eberly's method),
// which yields a weakly simple polygon: the two sides of every bridge
// coincide. Unlike general purpose ear cutters, no vertex is ever dropped,
// since every input point must appear in the output.

type node struct {
	id         int
	x, y       float64
	prev, next *node
}

func (n *node) point() geometry.Point {
	return geometry.Point{X: n.x, Y: n.y}
}

func (n *node) coincides(other *node) bool {
	return n.x == other.x && n.y == other.y
}

// Links ids into a ring, in the given order.
func linkedList(g *plan.Graph, ids []int) *node {
	var last *node
	for _, id := range ids {
		p := g.Point(id)
		n := &node{id: id, x: p.X, y: p.Y}
		if last == nil {
			n.prev, n.next = n, n
		} else {
			n.next = last.next
			n.prev = last
			last.next.prev = n
			last.next = n
		}
		last = n
	}
	return last.next
}

func removeNode(n *node) {
	n.next.prev = n.prev
	n.prev.next = n.next
}

func countNodes(start *node) int {
	count := 0
	p := start
	for {
		count++
		p = p.next
		if p == start {
			return count
		}
	}
}

// clipFace triangulates one face: outer is counterclockwise, each hole
// clockwise. Triangles are appended counterclockwise to out.
func clipFace(g *plan.Graph, outer []int, holes [][]int, out []plan.Triangle) []plan.Triangle {
	outerNode := linkedList(g, outer)
	if len(holes) > 0 {
		outerNode = eliminateHoles(g, holes, outerNode)
	}
	return clipEars(outerNode, out)
}

func clipEars(ear *node, out []plan.Triangle) []plan.Triangle {
	stop := ear
	for ear.prev != ear.next {
		prev, next := ear.prev, ear.next
		if isEar(ear) {
			out = append(out, plan.Triangle{prev.id, ear.id, next.id})
			removeNode(ear)
			ear = next.next
			stop = next.next
			continue
		}
		ear = next
		if ear == stop {
			fatalf("no ear among %d remaining vertices starting at vertex %d", countNodes(ear), ear.id)
		}
	}
	return out
}

// An ear is a strictly convex corner whose triangle holds no other vertex,
// not even on its edges. Bridge copies of the ear's own corners are skipped.
func isEar(ear *node) bool {
	a, b, c := ear.prev, ear, ear.next
	pa, pb, pc := a.point(), b.point(), c.point()
	if geometry.Sign(geometry.Orient(pa, pb, pc)) <= 0 {
		return false
	}

	minX, maxX := math.Min(a.x, math.Min(b.x, c.x)), math.Max(a.x, math.Max(b.x, c.x))
	minY, maxY := math.Min(a.y, math.Min(b.y, c.y)), math.Max(a.y, math.Max(b.y, c.y))

	for p := c.next; p != a; p = p.next {
		if p.coincides(a) || p.coincides(b) || p.coincides(c) {
			continue
		}
		if p.x < minX || p.x > maxX || p.y < minY || p.y > maxY {
			continue
		}
		pp := p.point()
		if geometry.Sign(geometry.Orient(pa, pb, pp)) >= 0 &&
			geometry.Sign(geometry.Orient(pb, pc, pp)) >= 0 &&
			geometry.Sign(geometry.Orient(pc, pa, pp)) >= 0 {
			return false
		}
	}
	return true
}

// Splices every hole into the outer ring, leftmost hole first.
func eliminateHoles(g *plan.Graph, holes [][]int, outerNode *node) *node {
	queue := make([]*node, 0, len(holes))
	for _, hole := range holes {
		queue = append(queue, leftmost(linkedList(g, hole)))
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].x < queue[j].x
	})

	for _, hole := range queue {
		bridge := findHoleBridge(hole, outerNode)
		if bridge == nil {
			fatalf("no bridge from hole vertex %d to its outer ring", hole.id)
		}
		splitPolygon(bridge, hole)
	}
	return outerNode
}

func leftmost(start *node) *node {
	p, best := start, start
	for {
		if p.x < best.x || (p.x == best.x && p.y < best.y) {
			best = p
		}
		p = p.next
		if p == start {
			return best
		}
	}
}

// Finds a vertex of the outer ring that the hole's leftmost vertex can see,
// using a ray cast to the left.
func findHoleBridge(hole, outerNode *node) *node {
	p := outerNode
	hx, hy := hole.x, hole.y
	qx := math.Inf(-1)
	var m *node

	// Find the closest segment hit by a ray from the hole point to the left.
	// The endpoint with the smaller x is the candidate connection.
	for {
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				m = p.next
				if p.x < p.next.x {
					m = p
				}
				if x == hx {
					// The hole touches the outer segment.
					return m
				}
			}
		}
		p = p.next
		if p == outerNode {
			break
		}
	}
	if m == nil {
		return nil
	}

	// Vertices inside the triangle (hole point, hit point, candidate) would
	// block the bridge. If there are any, take the one forming the smallest
	// angle with the ray.
	stop := m
	mx, my := m.x, m.y
	tanMin := math.Inf(1)
	p = m
	for {
		ax, cx := qx, hx
		if hy < my {
			ax, cx = hx, qx
		}
		if hx >= p.x && p.x >= mx && hx != p.x && pointInTriangle(ax, hy, mx, my, cx, hy, p.x, p.y) {
			tan := math.Abs(hy-p.y) / (hx - p.x)
			if locallyInside(p, hole) &&
				(tan < tanMin || (tan == tanMin && (p.x > m.x || (p.x == m.x && sectorContainsSector(m, p))))) {
				m = p
				tanMin = tan
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}
	return m
}

// Whether the sector at m contains the sector at p (both at the same spot).
func sectorContainsSector(m, p *node) bool {
	return area(m.prev, m, p.prev) < 0 && area(p.next, m, m.next) < 0
}

// Whether the diagonal a-b starts inside the polygon at a.
func locallyInside(a, b *node) bool {
	if area(a.prev, a, a.next) < 0 {
		return area(a, b, a.next) >= 0 && area(a, a.prev, b) >= 0
	}
	return area(a, b, a.prev) < 0 || area(a, a.next, b) < 0
}

// Links a to b with a bridge. a and b are duplicated so the ring walks
// a -> b -> ... -> b' -> a' -> (a's old next).
func splitPolygon(a, b *node) *node {
	a2 := &node{id: a.id, x: a.x, y: a.y}
	b2 := &node{id: b.id, x: b.x, y: b.y}
	an, bp := a.next, b.prev

	a.next = b
	b.prev = a

	a2.next = an
	an.prev = a2

	b2.next = a2
	a2.prev = b2

	bp.next = b2
	b2.prev = bp

	return b2
}

// Twice the signed area of pqr, negative for counterclockwise turns. This is
// the opposite sign of geometry.Orient and is only used by the bridge search.
func area(p, q, r *node) float64 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

// Inclusive point in triangle test, for the bridge search.
func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py) >= (ax-px)*(cy-py) &&
		(ax-px)*(by-py) >= (bx-px)*(ay-py) &&
		(bx-px)*(cy-py) >= (cx-px)*(by-py)
}
