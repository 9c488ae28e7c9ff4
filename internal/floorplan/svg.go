package floorplan

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/JoshVarga/svgparser"
	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/internal/solver"
	"github.com/osuushi/guardplan/plan"
)

// SVG class names recognized by DecodeSVG.
const (
	ClassRoom     = "room"
	ClassObstacle = "obstacle"
	ClassScale    = "scale"
)

// DecodeSVG reads one floor from an SVG drawing. Every <polygon> with class
// "room" becomes a room and every <polygon> with class "obstacle" becomes an
// obstacle of the room that strictly contains it. Element ids become names.
// An optional <line class="scale" data-length="..."> calibrates the drawing
// the same way a document scale does. Other elements are ignored.
func DecodeSVG(r io.Reader, floorID string) (*solver.Floor, error) {
	root, err := svgparser.Parse(r, false)
	if err != nil {
		return nil, fault.WrapWithCode(err, fault.CodeInvalidDocument, "parse svg")
	}

	factor := 1.0
	for _, line := range root.FindAll("line") {
		if !hasClass(line, ClassScale) {
			continue
		}
		scale, err := scaleFromLine(line)
		if err != nil {
			return nil, err
		}
		factor = scale.UnitsPerDrawingUnit()
		break
	}

	floor := &solver.Floor{ID: floorID, Name: root.Attributes["id"]}
	var obstacles []plan.Obstacle
	for i, el := range root.FindAll("polygon") {
		isRoom, isObstacle := hasClass(el, ClassRoom), hasClass(el, ClassObstacle)
		if !isRoom && !isObstacle {
			continue
		}
		name := el.Attributes["id"]
		poly, err := parsePoints(el.Attributes["points"])
		if err != nil {
			return nil, fault.WrapWithCode(err, fault.CodeInvalidDocument, fmt.Sprintf("polygon %d (%q)", i, name))
		}
		for j := range poly.Points {
			poly.Points[j] = poly.Points[j].Scale(factor)
		}

		if isRoom {
			if name == "" {
				name = fmt.Sprintf("room-%d", len(floor.Rooms))
			}
			floor.Rooms = append(floor.Rooms, plan.Room{Name: name, Boundary: poly})
		} else {
			obstacles = append(obstacles, plan.Obstacle{Name: name, Polygon: poly})
		}
	}
	if len(floor.Rooms) == 0 {
		return nil, fault.Newf(fault.CodeMissingField, "svg has no polygon with class %q", ClassRoom).
			WithMeta("field", "polygon."+ClassRoom)
	}

	boundaries := make([]geometry.Polygon, len(floor.Rooms))
	for i, room := range floor.Rooms {
		boundaries[i] = room.Boundary
	}
	for _, obstacle := range obstacles {
		i, ok := geometry.AnyContains(boundaries, obstacle.Polygon)
		if !ok {
			return nil, fault.InvalidGeometry("obstacle %q is not strictly inside any room", obstacle.Name).
				WithMeta("obstacle", obstacle.Name)
		}
		floor.Rooms[i].Obstacles = append(floor.Rooms[i].Obstacles, obstacle)
	}
	return floor, nil
}

func hasClass(el *svgparser.Element, class string) bool {
	for _, c := range strings.Fields(el.Attributes["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

// parsePoints reads an SVG points list. Coordinates may be separated by
// commas, whitespace or both.
func parsePoints(s string) (geometry.Polygon, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields)%2 != 0 {
		return geometry.Polygon{}, fmt.Errorf("odd number of coordinates in %q", s)
	}

	var poly geometry.Polygon
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return geometry.Polygon{}, fmt.Errorf("invalid x value %q: %w", fields[i], err)
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return geometry.Polygon{}, fmt.Errorf("invalid y value %q: %w", fields[i+1], err)
		}
		poly.Points = append(poly.Points, geometry.Point{X: x, Y: y})
	}
	return poly, nil
}

func scaleFromLine(el *svgparser.Element) (*Scale, error) {
	var values [5]float64
	for i, key := range []string{"x1", "y1", "x2", "y2", "data-length"} {
		raw, ok := el.Attributes[key]
		if !ok {
			return nil, fault.MissingField("line.scale." + key)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fault.WrapWithCode(err, fault.CodeInvalidDocument, "scale line "+key).
				WithMeta("field", "line.scale."+key)
		}
		values[i] = v
	}
	scale := &Scale{
		From:   []float64{values[0], values[1]},
		To:     []float64{values[2], values[3]},
		Length: values[4],
	}
	if err := scale.validate("line.scale"); err != nil {
		return nil, err
	}
	return scale, nil
}
