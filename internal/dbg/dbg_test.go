package dbg

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osuushi/guardplan/geometry"
	"github.com/osuushi/guardplan/internal/mesh"
	"github.com/osuushi/guardplan/internal/solver"
	"github.com/osuushi/guardplan/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	a, b := new(int), new(int)
	assert.Equal(t, Name(a), Name(a))
	assert.NotEmpty(t, Name(b))
	assert.Equal(t, "Ø", Name((*int)(nil)))
	assert.Equal(t, "Ø", Name(nil))
	assert.NotEqual(t, "Ø", Name(3))
}

func TestRunName(t *testing.T) {
	name := RunName()
	assert.Len(t, strings.Split(name, "-"), 2)
}

func TestSavePNG(t *testing.T) {
	room := plan.Room{
		Name:      "hall",
		Boundary:  geometry.PolygonFromPairs([2]float64{0, 0}, [2]float64{20, 0}, [2]float64{20, 10}, [2]float64{0, 10}),
		Obstacles: []plan.Obstacle{{Polygon: geometry.PolygonFromPairs([2]float64{8, 4}, [2]float64{12, 4}, [2]float64{12, 6}, [2]float64{8, 6})}},
	}
	sol, err := solver.SolveRoom(room, mesh.Options{MaxArea: 10, Delaunay: true})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "hall.png")
	require.NoError(t, SavePNG(path, sol, 10))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 20*10+2*drawPadding, img.Bounds().Dx())
	assert.Equal(t, 10*10+2*drawPadding, img.Bounds().Dy())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Zero(t, r+g+b, "padding stays black")
}
