package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/internal/guard"
	"github.com/osuushi/guardplan/internal/solver"
	"gopkg.in/yaml.v3"
)

// Report formats understood by WriteReport.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Report struct {
	Floors []FloorReport `json:"floors" yaml:"floors"`
}

type FloorReport struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Task    string       `json:"task" yaml:"task"`
	Elapsed string       `json:"elapsed" yaml:"elapsed"`
	Failed  int          `json:"failed" yaml:"failed"`
	Rooms   []RoomReport `json:"rooms" yaml:"rooms"`
}

// RoomReport describes one room. Status is the fault code, "OK" for solved
// rooms, which carry everything from Vertices on.
type RoomReport struct {
	Name    string         `json:"name" yaml:"name"`
	Status  fault.Code     `json:"status" yaml:"status"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
	Meta    map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
	Elapsed string         `json:"elapsed" yaml:"elapsed"`

	Vertices  int           `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	Triangles int           `json:"triangles,omitempty" yaml:"triangles,omitempty"`
	Steiner   int           `json:"steiner,omitempty" yaml:"steiner,omitempty"`
	Area      float64       `json:"area,omitempty" yaml:"area,omitempty"`
	Group     int           `json:"group" yaml:"group"`
	Guards    []guard.Guard `json:"guards,omitempty" yaml:"guards,omitempty"`
	Coverage  []int         `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	Stats     *guard.Stats  `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// NewReport summarizes floor results. Nil results are skipped.
func NewReport(results []*solver.FloorResult) Report {
	report := Report{Floors: make([]FloorReport, 0, len(results))}
	for _, result := range results {
		if result == nil {
			continue
		}
		fr := FloorReport{
			ID:      result.Floor,
			Name:    result.Name,
			Task:    result.TaskID,
			Elapsed: result.Elapsed.String(),
			Failed:  result.Failed(),
			Rooms:   make([]RoomReport, 0, len(result.Rooms)),
		}
		for _, room := range result.Rooms {
			fr.Rooms = append(fr.Rooms, roomReport(room))
		}
		report.Floors = append(report.Floors, fr)
	}
	return report
}

func roomReport(room solver.RoomResult) RoomReport {
	rr := RoomReport{
		Name:    room.Room,
		Status:  room.Code(),
		Elapsed: room.Elapsed.String(),
		Group:   -1,
	}
	if room.Err != nil {
		rr.Error = room.Err.Error()
		rr.Meta = fault.GetMeta(room.Err)
		return rr
	}

	sol := room.Solution
	stats := sol.Stats
	rr.Vertices = sol.Graph.NumVertices()
	rr.Triangles = len(sol.Triangles())
	rr.Steiner = sol.Mesh.Steiner
	rr.Area = sol.Mesh.Area(sol.Graph)
	rr.Group = sol.Group
	rr.Guards = sol.Guards
	rr.Coverage = sol.Coverage
	rr.Stats = &stats
	return rr
}

// WriteReport writes the report for results to w in the given format.
func WriteReport(w io.Writer, format string, results []*solver.FloorResult) error {
	report := NewReport(results)
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("export: unknown report format %q", format)
}
