package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const officeFloor = `
version: 1
floors:
  - id: office
    rooms:
      - name: hall
        boundary: [[0, 0], [20, 0], [20, 20], [0, 20]]
        obstacles:
          - polygon: [[8, 8], [12, 8], [12, 12], [8, 12]]
      - name: closet
        boundary: [[20, 0], [30, 0], [30, 10], [20, 10]]
`

const brokenFloor = `
version: 1
floors:
  - id: broken
    rooms:
      - name: square
        boundary: [[0, 0], [10, 0], [10, 10], [0, 10]]
      - name: bowtie
        boundary: [[0, 0], [10, 10], [10, 0], [0, 10]]
`

func writeFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"--no-color"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSolve(t *testing.T) {
	path := writeFile(t, "office.yaml", officeFloor)
	code, stdout, stderr := runCLI(t, "", "solve", path)
	require.Equal(t, exitOK, code, stderr)

	var report export.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Floors, 1)
	floor := report.Floors[0]
	assert.Equal(t, "office", floor.ID)
	assert.Equal(t, 0, floor.Failed)
	require.Len(t, floor.Rooms, 2)
	for _, room := range floor.Rooms {
		assert.Equal(t, fault.CodeOK, room.Status)
		assert.NotEmpty(t, room.Guards)
		assert.Len(t, room.Coverage, room.Triangles)
	}
	assert.InDelta(t, 384, floor.Rooms[0].Area, 1e-6)
	assert.Contains(t, stderr, "OK office/hall")
}

func TestSolve_DefaultCommand(t *testing.T) {
	path := writeFile(t, "office.yaml", officeFloor)
	code, stdout, _ := runCLI(t, "", path, "--format", "yaml")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "floors:")
	assert.Contains(t, stdout, "status: OK")
}

func TestSolve_FailedRoom(t *testing.T) {
	path := writeFile(t, "broken.yaml", brokenFloor)
	code, stdout, stderr := runCLI(t, "", "solve", path)
	assert.Equal(t, exitFailed, code)

	var report export.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Floors[0].Rooms, 2)
	assert.Equal(t, fault.CodeOK, report.Floors[0].Rooms[0].Status)
	bowtie := report.Floors[0].Rooms[1]
	assert.Equal(t, fault.CodeInvalidGeometry, bowtie.Status)
	assert.Equal(t, -1, bowtie.Group)
	assert.Contains(t, stderr, "INVALID_GEOMETRY broken/bowtie")
}

func TestSolve_PointsFromStdin(t *testing.T) {
	points := "# room\n0 0\n10 0\n10 10\n0 10\n\n4 4\n6 4\n6 6\n4 6\n"
	out := filepath.Join(t.TempDir(), "report.json")
	code, stdout, stderr := runCLI(t, points, "solve", "-", "--out", out)
	require.Equal(t, exitOK, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var report export.Report
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Floors, 1)
	assert.Equal(t, "stdin", report.Floors[0].ID)
	assert.InDelta(t, 96, report.Floors[0].Rooms[0].Area, 1e-6)
}

func TestSolve_Stats(t *testing.T) {
	path := writeFile(t, "office.yaml", officeFloor)
	code, _, stderr := runCLI(t, "", "solve", "--stats", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, "guardplan.guards")
	assert.Contains(t, stderr, "guardplan.room.duration")
}

func TestSolve_PNG(t *testing.T) {
	path := writeFile(t, "office.yaml", officeFloor)
	dir := t.TempDir()
	code, _, stderr := runCLI(t, "", "--log-level", "debug", "solve", "--png-dir", dir, "--png-scale", "2", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, "rendered room")
	assert.Contains(t, stderr, "solution=")
	assert.FileExists(t, filepath.Join(dir, "office_hall.png"))
	assert.FileExists(t, filepath.Join(dir, "office_closet.png"))
}

func TestValidate(t *testing.T) {
	path := writeFile(t, "broken.yaml", brokenFloor)
	code, stdout, stderr := runCLI(t, "", "validate", path)
	assert.Equal(t, exitFailed, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "VALID broken/square")
	assert.Contains(t, stderr, "INVALID broken/bowtie")

	path = writeFile(t, "office.yaml", officeFloor)
	code, _, _ = runCLI(t, "", "validate", path)
	assert.Equal(t, exitOK, code)
}

func TestExport(t *testing.T) {
	path := writeFile(t, "office.yaml", officeFloor)
	dir := t.TempDir()
	code, _, stderr := runCLI(t, "", "export", "--dir", dir, "--max-area", "10", path)
	require.Equal(t, exitOK, code, stderr)
	for _, ext := range []string{".node", ".ele", ".poly", ".area"} {
		assert.FileExists(t, filepath.Join(dir, "office_hall"+ext))
		assert.FileExists(t, filepath.Join(dir, "office_closet"+ext))
	}
}

func TestUsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"solve", "--bogus", "x.yaml"}},
		{"missing input", []string{"validate"}},
		{"bad format", []string{"solve", "--format", "xml", "x.yaml"}},
		{"bad log level", []string{"--log-level", "loud", "solve", "x.yaml"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tc.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr, "guardplan:")
		})
	}
}

func TestBadConfig(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "solver:\n  workers: -3\n")
	code, _, stderr := runCLI(t, "", "--config", cfg, "validate", "x.yaml")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "workers")
}

func TestMissingInput(t *testing.T) {
	code, _, _ := runCLI(t, "", "solve", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, exitError, code)
}

func TestReadRoom(t *testing.T) {
	room, err := readRoom(strings.NewReader("0 0\n4 0\n4 4\n\n\n1 1\n2 1\n2 2\n"), "r")
	require.NoError(t, err)
	assert.Equal(t, "r", room.Name)
	assert.Len(t, room.Boundary.Points, 3)
	require.Len(t, room.Obstacles, 1)
	assert.Len(t, room.Obstacles[0].Polygon.Points, 3)

	_, err = readRoom(strings.NewReader("0 0\n4 x\n"), "r")
	assert.ErrorContains(t, err, "line 2")

	_, err = readRoom(strings.NewReader("0 0 0\n"), "r")
	assert.ErrorContains(t, err, "want")

	_, err = readRoom(strings.NewReader("\n# nothing\n"), "r")
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.yaml")
	require.NoError(t, writeReport(path, nil, export.FormatYAML, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "floors")

	assert.Error(t, writeReport(filepath.Join(dir, "missing", "report.json"), nil, export.FormatJSON, nil))
	assert.Error(t, writeReport(filepath.Join(dir, "bad.json"), nil, "xml", nil))

	var stdout bytes.Buffer
	require.NoError(t, writeReport("", &stdout, export.FormatJSON, nil))
	assert.Contains(t, stdout.String(), "floors")
}

func TestSolve_ReportWriteFails(t *testing.T) {
	path := writeFile(t, "office.yaml", officeFloor)
	out := filepath.Join(t.TempDir(), "missing", "report.json")
	code, _, stderr := runCLI(t, "", "solve", "--out", out, path)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "write report")
}

func TestFileBase(t *testing.T) {
	assert.Equal(t, "ground_room_1_", fileBase("ground", "room 1/"))
}
