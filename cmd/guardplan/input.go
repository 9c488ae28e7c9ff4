package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/internal/floorplan"
	"github.com/osuushi/guardplan/internal/solver"
	"github.com/osuushi/guardplan/plan"
)

// loadFloors reads every input. The format follows the extension: .svg is a
// drawing, .txt or "-" (stdin) is a point list, anything else is a floor
// document.
func loadFloors(paths []string, stdin io.Reader) ([]solver.Floor, error) {
	var floors []solver.Floor
	for _, path := range paths {
		loaded, err := loadFloor(path, stdin)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		floors = append(floors, loaded...)
	}
	return floors, nil
}

func loadFloor(path string, stdin io.Reader) ([]solver.Floor, error) {
	if path == "-" {
		room, err := readRoom(stdin, "stdin")
		if err != nil {
			return nil, err
		}
		return []solver.Floor{{ID: "stdin", Rooms: []plan.Room{room}}}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch ext {
	case ".svg":
		floor, err := floorplan.DecodeSVG(f, id)
		if err != nil {
			return nil, err
		}
		return []solver.Floor{*floor}, nil
	case ".txt":
		room, err := readRoom(f, id)
		if err != nil {
			return nil, err
		}
		return []solver.Floor{{ID: id, Rooms: []plan.Room{room}}}, nil
	}

	doc, err := floorplan.Decode(f)
	if err != nil {
		return nil, err
	}
	return doc.Floors(), nil
}

// readRoom reads newline separated points in the form "x y", with each
// polygon separated by an extra newline. The first polygon is the room
// boundary and the rest are obstacles. Lines starting with # are comments.
func readRoom(in io.Reader, name string) (plan.Room, error) {
	polygons, err := readPolygons(in)
	if err != nil {
		return plan.Room{}, err
	}
	if len(polygons) == 0 {
		return plan.Room{}, fmt.Errorf("no polygons in input")
	}

	room := plan.Room{Name: name, Boundary: polygons[0]}
	for _, poly := range polygons[1:] {
		room.Obstacles = append(room.Obstacles, plan.Obstacle{Polygon: poly})
	}
	return room, nil
}

func readPolygons(in io.Reader) ([]geometry.Polygon, error) {
	var polygons []geometry.Polygon
	var points []geometry.Point
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(text, "#") {
			continue
		}

		// An empty line ends the current polygon
		if text == "" {
			if len(points) > 0 {
				polygons = append(polygons, geometry.NewPolygon(points...))
				points = nil
			}
			continue
		}

		point, err := parsePoint(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Handle trailing polygon if any
	if len(points) > 0 {
		polygons = append(polygons, geometry.NewPolygon(points...))
	}
	return polygons, nil
}

func parsePoint(line string) (geometry.Point, error) {
	parts := strings.Fields(line)
	if len(parts) != 2 {
		return geometry.Point{}, fmt.Errorf("want \"x y\", got %q", line)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return geometry.Point{}, err
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{X: x, Y: y}, nil
}
