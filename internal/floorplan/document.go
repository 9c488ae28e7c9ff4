// Package floorplan reads floor plans from versioned YAML or JSON documents
// and from SVG drawings, and turns them into floors ready for the solver.
package floorplan

import (
	"errors"
	"fmt"
	"io"

	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/internal/solver"
	"github.com/osuushi/guardplan/plan"
	"gopkg.in/yaml.v3"
)

// Version is the only document version this package reads and writes.
const Version = 1

// Coords is a polygon written as a list of [x, y] pairs.
type Coords [][]float64

// Document is the on-disk form of a set of floors.
type Document struct {
	Version   *int       `json:"version" yaml:"version"`
	FloorDocs []FloorDoc `json:"floors" yaml:"floors"`
}

type FloorDoc struct {
	ID    string    `json:"id" yaml:"id"`
	Name  string    `json:"name,omitempty" yaml:"name,omitempty"`
	Scale *Scale    `json:"scale,omitempty" yaml:"scale,omitempty"`
	Areas *AreasDoc `json:"areas,omitempty" yaml:"areas,omitempty"`
	Rooms []RoomDoc `json:"rooms" yaml:"rooms"`
}

// Scale calibrates drawing units: the distance between From and To in the
// drawing is Length real units.
type Scale struct {
	From   []float64 `json:"from" yaml:"from"`
	To     []float64 `json:"to" yaml:"to"`
	Length float64   `json:"length" yaml:"length"`
}

// AreasDoc holds maximum triangle areas in real units.
type AreasDoc struct {
	Default float64 `json:"default,omitempty" yaml:"default,omitempty"`
}

type RoomDoc struct {
	Name      string        `json:"name" yaml:"name"`
	Boundary  Coords        `json:"boundary" yaml:"boundary"`
	Obstacles []ObstacleDoc `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
	MaxArea   float64       `json:"max_area,omitempty" yaml:"max_area,omitempty"`
	Regions   []RegionDoc   `json:"regions,omitempty" yaml:"regions,omitempty"`
}

type ObstacleDoc struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Polygon Coords `json:"polygon" yaml:"polygon"`
}

type RegionDoc struct {
	Witness []float64 `json:"witness" yaml:"witness"`
	MaxArea float64   `json:"max_area" yaml:"max_area"`
}

// Decode reads a document from r. JSON input is accepted since it is valid
// YAML. Unknown keys are rejected and the result is validated.
func Decode(r io.Reader) (*Document, error) {
	doc := &Document{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fault.MissingField("version")
		}
		return nil, fault.WrapWithCode(err, fault.CodeInvalidDocument, "decode floor document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks required fields and coordinate shapes. The first problem
// found is returned: fault.CodeMissingField with the field path in the
// "field" metadata, or fault.CodeInvalidDocument.
func (doc *Document) Validate() error {
	if doc.Version == nil {
		return fault.MissingField("version")
	}
	if *doc.Version != Version {
		return fault.Newf(fault.CodeInvalidDocument, "unsupported document version %d", *doc.Version).
			WithMeta("field", "version")
	}
	if len(doc.FloorDocs) == 0 {
		return fault.MissingField("floors")
	}

	for i, floor := range doc.FloorDocs {
		path := fmt.Sprintf("floors[%d]", i)
		if floor.ID == "" {
			return fault.MissingField(path + ".id")
		}
		if floor.Scale != nil {
			if err := floor.Scale.validate(path + ".scale"); err != nil {
				return err
			}
		}
		if len(floor.Rooms) == 0 {
			return fault.MissingField(path + ".rooms")
		}
		for j, room := range floor.Rooms {
			if err := room.validate(fmt.Sprintf("%s.rooms[%d]", path, j)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (room RoomDoc) validate(path string) error {
	if room.Name == "" {
		return fault.MissingField(path + ".name")
	}
	if err := room.Boundary.validate(path + ".boundary"); err != nil {
		return err
	}
	for k, obstacle := range room.Obstacles {
		if err := obstacle.Polygon.validate(fmt.Sprintf("%s.obstacles[%d].polygon", path, k)); err != nil {
			return err
		}
	}
	if room.MaxArea < 0 {
		return invalidField(path+".max_area", "must not be negative")
	}
	for k, region := range room.Regions {
		regionPath := fmt.Sprintf("%s.regions[%d]", path, k)
		if region.Witness == nil {
			return fault.MissingField(regionPath + ".witness")
		}
		if _, err := pair(region.Witness, regionPath+".witness"); err != nil {
			return err
		}
		if region.MaxArea <= 0 {
			return invalidField(regionPath+".max_area", "must be positive")
		}
	}
	return nil
}

func (c Coords) validate(path string) error {
	if c == nil {
		return fault.MissingField(path)
	}
	for i, xy := range c {
		if _, err := pair(xy, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scale) validate(path string) error {
	if s.From == nil {
		return fault.MissingField(path + ".from")
	}
	if s.To == nil {
		return fault.MissingField(path + ".to")
	}
	from, err := pair(s.From, path+".from")
	if err != nil {
		return err
	}
	to, err := pair(s.To, path+".to")
	if err != nil {
		return err
	}
	if from.Equal(to) {
		return invalidField(path, "from and to must differ")
	}
	if !(s.Length > 0) {
		return invalidField(path+".length", "must be positive")
	}
	return nil
}

// UnitsPerDrawingUnit is the factor converting drawing coordinates to real
// units.
func (s *Scale) UnitsPerDrawingUnit() float64 {
	if s == nil {
		return 1
	}
	from, _ := pair(s.From, "")
	to, _ := pair(s.To, "")
	return s.Length / from.Distance(to)
}

func pair(xy []float64, path string) (geometry.Point, error) {
	if len(xy) != 2 {
		return geometry.Point{}, invalidField(path, fmt.Sprintf("want an [x, y] pair, got %d values", len(xy)))
	}
	p := geometry.Point{X: xy[0], Y: xy[1]}
	if !p.IsFinite() {
		return geometry.Point{}, invalidField(path, "coordinates must be finite")
	}
	return p, nil
}

func invalidField(path, problem string) *fault.Error {
	return fault.Newf(fault.CodeInvalidDocument, "%s: %s", path, problem).WithMeta("field", path)
}

// Floors converts the document into solver floors, applying each floor's
// scale. Area limits are given in real units and pass through unscaled.
// The document must be valid.
func (doc *Document) Floors() []solver.Floor {
	floors := make([]solver.Floor, 0, len(doc.FloorDocs))
	for _, fd := range doc.FloorDocs {
		factor := fd.Scale.UnitsPerDrawingUnit()
		floor := solver.Floor{ID: fd.ID, Name: fd.Name}
		if fd.Areas != nil {
			floor.Areas.Default = fd.Areas.Default
		}
		for i, rd := range fd.Rooms {
			room := plan.Room{Name: rd.Name, Boundary: rd.Boundary.polygon(factor)}
			for _, od := range rd.Obstacles {
				room.Obstacles = append(room.Obstacles, plan.Obstacle{Name: od.Name, Polygon: od.Polygon.polygon(factor)})
			}
			floor.Rooms = append(floor.Rooms, room)

			if rd.MaxArea > 0 {
				if floor.Areas.Rooms == nil {
					floor.Areas.Rooms = make(map[int]float64)
				}
				floor.Areas.Rooms[i] = rd.MaxArea
			}
			for _, region := range rd.Regions {
				if floor.Areas.Regions == nil {
					floor.Areas.Regions = make(map[int][]solver.Region)
				}
				witness, _ := pair(region.Witness, "")
				floor.Areas.Regions[i] = append(floor.Areas.Regions[i], solver.Region{
					Witness: witness.Scale(factor),
					MaxArea: region.MaxArea,
				})
			}
		}
		floors = append(floors, floor)
	}
	return floors
}

func (c Coords) polygon(factor float64) geometry.Polygon {
	points := make([]geometry.Point, 0, len(c))
	for _, xy := range c {
		points = append(points, geometry.Point{X: xy[0] * factor, Y: xy[1] * factor})
	}
	return geometry.NewPolygon(points...)
}

// FromFloors builds a document from solver floors. Area tables are carried
// over where the document form can express them.
func FromFloors(floors []solver.Floor) *Document {
	version := Version
	doc := &Document{Version: &version}
	for _, floor := range floors {
		fd := FloorDoc{ID: floor.ID, Name: floor.Name}
		if floor.Areas.Default > 0 {
			fd.Areas = &AreasDoc{Default: floor.Areas.Default}
		}
		for i, room := range floor.Rooms {
			rd := RoomDoc{Name: room.Name, Boundary: coordsOf(room.Boundary), MaxArea: floor.Areas.Rooms[i]}
			for _, obstacle := range room.Obstacles {
				rd.Obstacles = append(rd.Obstacles, ObstacleDoc{Name: obstacle.Name, Polygon: coordsOf(obstacle.Polygon)})
			}
			for _, region := range floor.Areas.Regions[i] {
				rd.Regions = append(rd.Regions, RegionDoc{
					Witness: []float64{region.Witness.X, region.Witness.Y},
					MaxArea: region.MaxArea,
				})
			}
			fd.Rooms = append(fd.Rooms, rd)
		}
		doc.FloorDocs = append(doc.FloorDocs, fd)
	}
	return doc
}

func coordsOf(poly geometry.Polygon) Coords {
	c := make(Coords, 0, poly.Len())
	for _, p := range poly.Points {
		c = append(c, []float64{p.X, p.Y})
	}
	return c
}
