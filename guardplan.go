// Package guardplan places guards in floor plans.
//
// Each room is a simple polygon with optional obstacles. It is triangulated
// (optionally refined to a maximum triangle area), the triangulation graph is
// colored, and a guard is posted on every vertex of the smallest color class.
// Every triangle is then assigned to one of those guards.
//
// Floors are solved concurrently; rooms of a floor are solved in order, and a
// failing room never takes down the rest of its floor.
package guardplan

import (
	"context"

	"github.com/osuushi/guardplan/internal/solver"
	"github.com/osuushi/guardplan/plan"
)

type Room = plan.Room
type Obstacle = plan.Obstacle
type Floor = solver.Floor
type AreaTable = solver.AreaTable
type Region = solver.Region
type Solution = solver.Solution
type RoomResult = solver.RoomResult
type FloorResult = solver.FloorResult
type Option = solver.Option

var (
	WithWorkers      = solver.WithWorkers
	WithFloorTimeout = solver.WithFloorTimeout
	WithMaxArea      = solver.WithMaxArea
	WithMaxSteiner   = solver.WithMaxSteiner
	WithDelaunay     = solver.WithDelaunay
	WithLogger       = solver.WithLogger
)

// SolveRoom solves a single room. Only the mesh options apply.
func SolveRoom(room Room, opts ...Option) (*Solution, error) {
	return solver.New(opts...).SolveRoom(room)
}

// SolveFloor solves every room of a floor.
func SolveFloor(ctx context.Context, floor Floor, opts ...Option) (*FloorResult, error) {
	return solver.New(opts...).SolveFloor(ctx, floor)
}

// SolveFloors solves floors concurrently. Results are in input order.
func SolveFloors(ctx context.Context, floors []Floor, opts ...Option) ([]*FloorResult, error) {
	return solver.New(opts...).SolveFloors(ctx, floors)
}
