// Command guardplan places guards in floor plans. Rooms come from versioned
// YAML/JSON floor documents, SVG drawings, or plain point lists; every room
// is triangulated, colored and split among the guards of its smallest color
// class.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/osuushi/guardplan/fault"
	"github.com/osuushi/guardplan/internal/config"
	"github.com/osuushi/guardplan/internal/dbg"
	"github.com/osuushi/guardplan/internal/export"
	"github.com/osuushi/guardplan/internal/observe"
	"github.com/osuushi/guardplan/internal/solver"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"gopkg.in/alecthomas/kingpin.v2"
)

// Exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitUsage  = 2
	exitFailed = 3 // at least one room failed
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cli struct {
	app *kingpin.Application

	configPath *string
	logLevel   *string
	logFormat  *string
	noColor    *bool

	solve struct {
		cmd        *kingpin.CmdClause
		inputs     *[]string
		workers    *int
		timeout    *time.Duration
		maxArea    *float64
		maxSteiner *int
		noDelaunay *bool
		format     *string
		out        *string
		pngDir     *string
		pngScale   *float64
		stats      *bool
	}

	validate struct {
		cmd    *kingpin.CmdClause
		inputs *[]string
	}

	export struct {
		cmd     *kingpin.CmdClause
		inputs  *[]string
		dir     *string
		maxArea *float64
	}
}

func newCLI(stderr io.Writer) *cli {
	c := &cli{app: kingpin.New("guardplan", "Place guards in floor plans with triangulation and 3-coloring.")}
	c.app.UsageWriter(stderr)
	c.app.ErrorWriter(stderr)

	c.configPath = c.app.Flag("config", "YAML configuration file.").Short('c').String()
	c.logLevel = c.app.Flag("log-level", "Log level, overrides the config file.").Enum("debug", "info", "warn", "error")
	c.logFormat = c.app.Flag("log-format", "Log format, overrides the config file.").Enum("text", "json")
	c.noColor = c.app.Flag("no-color", "Disable colored status lines.").Bool()

	s := &c.solve
	s.cmd = c.app.Command("solve", "Solve every room of the given floor plans.").Default()
	s.inputs = s.cmd.Arg("input", "Floor documents (.yaml, .json), SVG drawings (.svg) or point lists (.txt, - for stdin).").Required().Strings()
	s.workers = s.cmd.Flag("workers", "Floors solved at once, 0 for one per floor.").Default("-1").Int()
	s.timeout = s.cmd.Flag("timeout", "Per-floor timeout, 0 to disable.").Default("-1ns").Duration()
	s.maxArea = s.cmd.Flag("max-area", "Default maximum triangle area, 0 for none.").Default("-1").Float64()
	s.maxSteiner = s.cmd.Flag("max-steiner", "Cap on refinement vertices per room.").Default("0").Int()
	s.noDelaunay = s.cmd.Flag("no-delaunay", "Skip constrained Delaunay flips.").Bool()
	s.format = s.cmd.Flag("format", "Report format.").Enum(export.FormatJSON, export.FormatYAML)
	s.out = s.cmd.Flag("out", "Write the report to this file instead of stdout.").Short('o').String()
	s.pngDir = s.cmd.Flag("png-dir", "Render every solved room as a PNG into this directory.").String()
	s.pngScale = s.cmd.Flag("png-scale", "Pixels per unit for PNG renderings.").Default("10").Float64()
	s.stats = s.cmd.Flag("stats", "Print solver metrics to stderr when done.").Bool()

	v := &c.validate
	v.cmd = c.app.Command("validate", "Check room geometry without solving.")
	v.inputs = v.cmd.Arg("input", "Floor plans to check.").Required().Strings()

	e := &c.export
	e.cmd = c.app.Command("export", "Solve and write Triangle .node/.ele/.poly/.area files per room.")
	e.inputs = e.cmd.Arg("input", "Floor plans to export.").Required().Strings()
	e.dir = e.cmd.Flag("dir", "Output directory.").Default(".").String()
	e.maxArea = e.cmd.Flag("max-area", "Default maximum triangle area, 0 for none.").Default("-1").Float64()

	return c
}

// settings applies the command line overrides to the loaded config.
func (c *cli) settings() (*config.Config, error) {
	cfg := config.Default()
	if *c.configPath != "" {
		loaded, err := config.Load(*c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *c.logLevel != "" {
		cfg.Log.Level = config.LogLevel(*c.logLevel)
	}
	if *c.logFormat != "" {
		cfg.Log.Format = config.Format(*c.logFormat)
	}
	if *c.noColor {
		cfg.Output.Color = false
	}

	s := &c.solve
	if *s.workers >= 0 {
		cfg.Solver.Workers = *s.workers
	}
	if *s.timeout >= 0 {
		cfg.Solver.FloorTimeout = *s.timeout
	}
	if *s.maxArea >= 0 {
		cfg.Solver.MaxArea = *s.maxArea
	}
	if *c.export.maxArea >= 0 {
		cfg.Solver.MaxArea = *c.export.maxArea
	}
	if *s.maxSteiner > 0 {
		cfg.Solver.MaxSteiner = *s.maxSteiner
	}
	if *s.noDelaunay {
		cfg.Solver.Delaunay = false
	}
	if *s.format != "" {
		cfg.Output.Format = config.Format(*s.format)
	}
	return cfg, config.Validate(cfg)
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Log.Level.Level()}
	if cfg.Log.Format == config.FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := newCLI(stderr)
	command, err := c.app.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "guardplan: %v\n", err)
		return exitUsage
	}

	cfg, err := c.settings()
	if err != nil {
		fmt.Fprintf(stderr, "guardplan: %v\n", err)
		return exitUsage
	}
	logger := newLogger(cfg, stderr).With("run", dbg.RunName())
	slog.SetDefault(logger)

	au := aurora.NewAurora(cfg.Output.Color)
	switch command {
	case c.solve.cmd.FullCommand():
		return c.runSolve(ctx, cfg, logger, au, stdin, stdout, stderr)
	case c.validate.cmd.FullCommand():
		return c.runValidate(cfg, logger, au, stdin, stderr)
	case c.export.cmd.FullCommand():
		return c.runExport(ctx, cfg, logger, au, stdin, stderr)
	}
	return exitUsage
}

func newSolver(cfg *config.Config, logger *slog.Logger, metrics *observe.Metrics) *solver.Solver {
	opts := []solver.Option{
		solver.WithWorkers(cfg.Solver.Workers),
		solver.WithFloorTimeout(cfg.Solver.FloorTimeout),
		solver.WithMaxArea(cfg.Solver.MaxArea),
		solver.WithMaxSteiner(cfg.Solver.MaxSteiner),
		solver.WithDelaunay(cfg.Solver.Delaunay),
		solver.WithLogger(logger),
	}
	if metrics != nil {
		opts = append(opts, solver.WithMetrics(metrics))
	}
	return solver.New(opts...)
}

func (c *cli) runSolve(ctx context.Context, cfg *config.Config, logger *slog.Logger, au aurora.Aurora, stdin io.Reader, stdout, stderr io.Writer) int {
	floors, err := loadFloors(*c.solve.inputs, stdin)
	if err != nil {
		logger.Error("load floor plans", "error", err)
		return exitError
	}

	var reader *sdkmetric.ManualReader
	var metrics *observe.Metrics
	if *c.solve.stats {
		reader = sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()
		otel.SetMeterProvider(mp)
		if metrics, err = observe.NewMetrics(mp); err != nil {
			logger.Error("create metrics", "error", err)
			return exitError
		}
	}

	results, solveErr := newSolver(cfg, logger, metrics).SolveFloors(ctx, floors)
	if solveErr != nil {
		logger.Error("solve interrupted", "error", solveErr)
	}
	failed := printStatus(stderr, au, results)

	if dir := *c.solve.pngDir; dir != "" {
		if err := renderPNGs(logger, dir, *c.solve.pngScale, results); err != nil {
			logger.Error("render png", "error", err)
			return exitError
		}
	}

	if err := writeReport(*c.solve.out, stdout, string(cfg.Output.Format), results); err != nil {
		logger.Error("write report", "error", err)
		return exitError
	}

	if reader != nil {
		if err := printStats(ctx, stderr, reader); err != nil {
			logger.Error("collect metrics", "error", err)
		}
	}

	switch {
	case solveErr != nil:
		return exitError
	case failed > 0:
		return exitFailed
	}
	return exitOK
}

func (c *cli) runValidate(cfg *config.Config, logger *slog.Logger, au aurora.Aurora, stdin io.Reader, stderr io.Writer) int {
	floors, err := loadFloors(*c.validate.inputs, stdin)
	if err != nil {
		logger.Error("load floor plans", "error", err)
		return exitError
	}

	invalid := 0
	for _, floor := range floors {
		for _, room := range floor.Rooms {
			if err := room.Validate(); err != nil {
				invalid++
				fmt.Fprintf(stderr, "%s %s/%s: %v\n", au.Red("INVALID"), floor.ID, room.Name, fault.GetMessage(err))
				continue
			}
			fmt.Fprintf(stderr, "%s %s/%s\n", au.Green("VALID"), floor.ID, room.Name)
		}
	}
	if invalid > 0 {
		return exitFailed
	}
	return exitOK
}

func (c *cli) runExport(ctx context.Context, cfg *config.Config, logger *slog.Logger, au aurora.Aurora, stdin io.Reader, stderr io.Writer) int {
	floors, err := loadFloors(*c.export.inputs, stdin)
	if err != nil {
		logger.Error("load floor plans", "error", err)
		return exitError
	}

	results, err := newSolver(cfg, logger, nil).SolveFloors(ctx, floors)
	if err != nil {
		logger.Error("solve interrupted", "error", err)
		return exitError
	}
	failed := printStatus(stderr, au, results)

	for _, result := range results {
		for _, room := range result.Rooms {
			if room.Solution == nil {
				continue
			}
			paths, err := export.WriteFiles(*c.export.dir, fileBase(result.Floor, room.Room), room.Solution)
			if err != nil {
				logger.Error("export room", "floor", result.Floor, "room", room.Room, "error", err)
				return exitError
			}
			logger.Info("exported room", "floor", result.Floor, "room", room.Room, "files", paths)
		}
	}
	if failed > 0 {
		return exitFailed
	}
	return exitOK
}

// printStatus writes one colored line per room and returns the number of
// failed rooms.
func printStatus(w io.Writer, au aurora.Aurora, results []*solver.FloorResult) int {
	failed := 0
	for _, result := range results {
		if result == nil {
			continue
		}
		for _, room := range result.Rooms {
			label := fmt.Sprintf("%s/%s", result.Floor, room.Room)
			if room.Err != nil {
				failed++
				fmt.Fprintf(w, "%s %s: %s\n", au.Red(room.Code()), au.Bold(label), fault.GetMessage(room.Err))
				continue
			}
			sol := room.Solution
			fmt.Fprintf(w, "%s %s: %d guards, %d triangles, %d colors\n",
				au.Green(fault.CodeOK), au.Bold(label), len(sol.Guards), len(sol.Triangles()), sol.Stats.Colors)
		}
	}
	return failed
}

// writeReport writes the report to path, or to stdout when path is empty.
// The file is closed before returning so a failed flush is reported.
func writeReport(path string, stdout io.Writer, format string, results []*solver.FloorResult) error {
	if path == "" {
		return export.WriteReport(stdout, format, results)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteReport(f, format, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func renderPNGs(logger *slog.Logger, dir string, scale float64, results []*solver.FloorResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, result := range results {
		if result == nil {
			continue
		}
		for _, room := range result.Rooms {
			if room.Solution == nil {
				continue
			}
			path := filepath.Join(dir, fileBase(result.Floor, room.Room)+".png")
			if err := dbg.SavePNG(path, room.Solution, scale); err != nil {
				return err
			}
			logger.Debug("rendered room", "floor", result.Floor, "room", room.Room,
				"solution", dbg.Name(room.Solution), "path", path)
		}
	}
	return nil
}

// fileBase builds a file name stem from a floor and room, keeping only
// characters that are safe in paths.
func fileBase(floor, room string) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
				return r
			}
			return '_'
		}, s)
	}
	return clean(floor) + "_" + clean(room)
}
