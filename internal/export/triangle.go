// Package export writes solved rooms in the file formats of Shewchuk's
// Triangle (.node, .ele, .poly, .area) and as JSON or YAML reports.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/internal/mesh"
	"github.com/osuushi/guardplan/internal/solver"
	"github.com/osuushi/guardplan/plan"
	"github.com/pkg/errors"
)

// Boundary markers written for vertices and segments.
const (
	MarkerInterior = 0
	MarkerBoundary = 1
	MarkerHole     = 2
)

func edgeMarker(e plan.Edge) int {
	switch {
	case e.IsHole():
		return MarkerHole
	case e.IsSegment():
		return MarkerBoundary
	}
	return MarkerInterior
}

// vertexMarkers marks every vertex with the marker of the segments it lies
// on. Vertices off every segment are interior.
func vertexMarkers(g *plan.Graph) []int {
	markers := make([]int, g.NumVertices())
	for _, e := range g.Segments() {
		m := edgeMarker(e)
		if m > markers[e.U] {
			markers[e.U] = m
		}
		if m > markers[e.V] {
			markers[e.V] = m
		}
	}
	return markers
}

// WriteNode writes the vertices of g as a .node file:
//
//	<# of vertices> 2 0 1
//	<vertex #> <x> <y> <boundary marker>
func WriteNode(w io.Writer, g *plan.Graph) error {
	bw := bufio.NewWriter(w)
	writeNodes(bw, g)
	return bw.Flush()
}

func writeNodes(w *bufio.Writer, g *plan.Graph) {
	markers := vertexMarkers(g)
	fmt.Fprintf(w, "%d  2  %d  %d\n", g.NumVertices(), 0, 1)
	for id, v := range g.Vertices {
		fmt.Fprintf(w, "%d  %.3f  %.3f %d\n", id, v.Point.X, v.Point.Y, markers[id])
	}
}

// WriteEle writes triangles as an .ele file:
//
//	<# of triangles> 3 0
//	<triangle #> <node> <node> <node>
func WriteEle(w io.Writer, tris []plan.Triangle) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d  3  %d\n", len(tris), 0)
	for i, tri := range tris {
		fmt.Fprintf(bw, "%d %d %d %d\n", i, tri[0], tri[1], tri[2])
	}
	return bw.Flush()
}

// WritePoly writes the segments of g with hole and region points as a .poly
// file. When withVertices is false the vertex section is the empty header
// "0 2 0 0", which tells Triangle to read a separate .node file.
func WritePoly(w io.Writer, g *plan.Graph, holes []geometry.Point, regions []mesh.Region, withVertices bool) error {
	bw := bufio.NewWriter(w)
	if withVertices {
		writeNodes(bw, g)
	} else {
		fmt.Fprintln(bw, "0 2 0 0")
	}

	segments := g.Segments()
	fmt.Fprintf(bw, "%d  %d\n", len(segments), 1)
	for i, e := range segments {
		fmt.Fprintf(bw, "%d  %d  %d  %d\n", i, e.U, e.V, edgeMarker(e))
	}

	fmt.Fprintf(bw, "%d\n", len(holes))
	for i, p := range holes {
		fmt.Fprintf(bw, "%d  %.3f  %.3f\n", i, p.X, p.Y)
	}

	fmt.Fprintf(bw, "%d\n", len(regions))
	for i, r := range regions {
		fmt.Fprintf(bw, "%d  %.3f  %.3f  %d %.4f\n", i, r.Witness.X, r.Witness.Y, i, r.MaxArea)
	}
	return bw.Flush()
}

// WriteArea writes the area constraint of every triangle as an .area file:
//
//	<# of triangles>
//	<triangle #> <maximum area>
//
// A triangle takes the limit of its region, else opts.MaxArea. Unconstrained
// triangles are written as -1.
func WriteArea(w io.Writer, result *mesh.Result, opts mesh.Options) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(result.Triangles))
	for i := range result.Triangles {
		limit := -1.0
		if opts.MaxArea > 0 {
			limit = opts.MaxArea
		}
		if i < len(result.TriangleRegion) {
			if r := result.TriangleRegion[i]; r >= 0 && r < len(opts.Regions) {
				limit = opts.Regions[r].MaxArea
			}
		}
		fmt.Fprintf(bw, "%d %.2f\n", i, limit)
	}
	return bw.Flush()
}

// WriteFiles writes <base>.node, .ele, .poly and .area for a solved room
// into dir, creating dir if needed. It returns the paths written.
func WriteFiles(dir, base string, sol *solver.Solution) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	holes, err := plan.HoleWitnesses(sol.Room)
	if err != nil {
		return nil, err
	}

	writers := []struct {
		ext   string
		write func(io.Writer) error
	}{
		{".node", func(w io.Writer) error { return WriteNode(w, sol.Graph) }},
		{".ele", func(w io.Writer) error { return WriteEle(w, sol.Triangles()) }},
		{".poly", func(w io.Writer) error { return WritePoly(w, sol.Graph, holes, sol.Options.Regions, false) }},
		{".area", func(w io.Writer) error { return WriteArea(w, sol.Mesh, sol.Options) }},
	}

	paths := make([]string, 0, len(writers))
	for _, wr := range writers {
		path := filepath.Join(dir, base+wr.ext)
		if err := writeFile(path, wr.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	if err := write(f); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
