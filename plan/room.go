// Package plan models rooms and the planar straight-line graphs built from
// them. A Graph starts life as the outline of one room (boundary plus
// obstacle loops) and is later augmented in place by the mesher and colored
// by the guard selector.
package plan

import (
	"fmt"

	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/geometry"
)

// Obstacle is a hole in a room: furniture, a pillar, a stairwell.
type Obstacle struct {
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Polygon geometry.Polygon `json:"polygon" yaml:"polygon"`
}

type Room struct {
	Name      string           `json:"name" yaml:"name"`
	Boundary  geometry.Polygon `json:"boundary" yaml:"boundary"`
	Obstacles []Obstacle       `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
}

// Validate checks the room outline and each obstacle for simplicity, that
// every obstacle lies strictly inside the boundary, and that no two obstacles
// overlap or touch. Errors carry the room name in their metadata.
func (room Room) Validate() error {
	if err := geometry.ValidatePolygon(room.Boundary); err != nil {
		return fault.Wrapf(err, "room %q boundary", room.Name).WithMeta("room", room.Name)
	}

	for i, obstacle := range room.Obstacles {
		if err := geometry.ValidatePolygon(obstacle.Polygon); err != nil {
			return fault.Wrapf(err, "room %q obstacle %s", room.Name, obstacleLabel(i, obstacle)).
				WithMeta("room", room.Name).
				WithMeta("obstacle", i)
		}
		if !room.Boundary.ContainsPolygon(obstacle.Polygon) {
			return fault.InvalidGeometry("room %q obstacle %s is not strictly inside the boundary", room.Name, obstacleLabel(i, obstacle)).
				WithMeta("room", room.Name).
				WithMeta("obstacle", i)
		}
	}

	for i := range room.Obstacles {
		for j := i + 1; j < len(room.Obstacles); j++ {
			if room.Obstacles[i].Polygon.IntersectsPolygon(room.Obstacles[j].Polygon) {
				return fault.InvalidGeometry("room %q obstacles %s and %s overlap or touch",
					room.Name, obstacleLabel(i, room.Obstacles[i]), obstacleLabel(j, room.Obstacles[j])).
					WithMeta("room", room.Name).
					WithMeta("obstacle", j)
			}
		}
	}

	return nil
}

// ValidateRoom is Room.Validate as a function.
func ValidateRoom(room Room) error {
	return room.Validate()
}

// Area covered by the room: the boundary minus its obstacles.
func (room Room) Area() float64 {
	area := room.Boundary.Area()
	for _, obstacle := range room.Obstacles {
		area -= obstacle.Polygon.Area()
	}
	return area
}

// Contains reports whether the shape lies inside the room's covered area,
// clear of every obstacle.
func (room Room) Contains(shape geometry.Shape) bool {
	if !geometry.Contains(room.Boundary, shape) {
		return false
	}
	for _, obstacle := range room.Obstacles {
		if geometry.Intersects(obstacle.Polygon, shape) {
			return false
		}
	}
	return true
}

func obstacleLabel(i int, obstacle Obstacle) string {
	if obstacle.Name != "" {
		return fmt.Sprintf("#%d (%s)", i, obstacle.Name)
	}
	return fmt.Sprintf("#%d", i)
}
