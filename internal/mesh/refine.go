package mesh

import (
	"github.com/osuushi/guardplan/plan"
)

// refine splits triangles until none exceeds its area limit. limit returns
// 0 for unconstrained triangles. Each split bisects the triangle's longest
// edge and the triangle across it, so the mesh stays conforming. A split
// segment is replaced by its two halves with the same tags.
func (m *mesh) refine(limit func(t int) float64, maxSteiner int, delaunay bool) {
	for {
		changed := false
		for t := 0; t < len(m.tris); t++ {
			maxArea := limit(t)
			if maxArea <= 0 || m.area(t) <= maxArea {
				continue
			}
			if m.steiner() >= maxSteiner {
				fatalf("refinement needs more than %d Steiner points", maxSteiner)
			}
			outer := m.split(t)
			if delaunay {
				m.legalize(outer)
			}
			changed = true
		}
		if !changed {
			return
		}
	}
}

// split bisects the longest edge of t. Returns the edges opposite the new
// vertex, for legalization.
func (m *mesh) split(t int) []plan.EdgeKey {
	tri := m.tris[t]
	longest, best := 0, -1.0
	for i := 0; i < 3; i++ {
		l := m.points[tri[i]].Distance(m.points[tri[(i+1)%3]])
		if l > best {
			longest, best = i, l
		}
	}
	p, q, r := tri[longest], tri[(longest+1)%3], tri[(longest+2)%3]
	key := plan.MakeEdgeKey(p, q)
	t2 := m.across(t, key)

	mid := m.addPoint(m.points[p].Midpoint(m.points[q]))
	m.splits++

	m.set(t, plan.Triangle{p, mid, r})
	m.add(plan.Triangle{mid, q, r}, m.face[t])
	outer := []plan.EdgeKey{plan.MakeEdgeKey(q, r), plan.MakeEdgeKey(r, p)}

	if t2 != -1 {
		s := m.apex(t2, q, p)
		if s == -1 {
			fatalf("triangles %d and %d disagree on edge %d-%d", t, t2, p, q)
		}
		m.set(t2, plan.Triangle{q, mid, s})
		m.add(plan.Triangle{mid, p, s}, m.face[t2])
		outer = append(outer, plan.MakeEdgeKey(p, s), plan.MakeEdgeKey(s, q))
	}

	if tags, ok := m.segment[key]; ok {
		delete(m.segment, key)
		m.segment[plan.MakeEdgeKey(p, mid)] = tags
		m.segment[plan.MakeEdgeKey(mid, q)] = tags
	}
	return outer
}
