// Package config defines the guardplan configuration file and its loader.
package config

import (
	"log/slog"
	"time"

	"github.com/osuushi/guardplan/internal/mesh"
)

// LogLevel is a slog level name.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l names a known level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to its slog level. Unknown levels are info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Format is an encoding for logs or reports.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Config is the root of a guardplan configuration file.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Solver SolverConfig `yaml:"solver"`
	Output OutputConfig `yaml:"output"`
}

type LogConfig struct {
	Level  LogLevel `yaml:"level"`
	Format Format   `yaml:"format"`
}

// SolverConfig holds the floor orchestration and meshing settings.
type SolverConfig struct {
	// Workers bounds how many floors are solved at once. Zero means one
	// worker per floor.
	Workers int `yaml:"workers"`

	// FloorTimeout bounds each floor. Zero disables the timeout.
	FloorTimeout time.Duration `yaml:"floor_timeout"`

	// MaxArea is the default maximum triangle area. Zero leaves triangles
	// unconstrained.
	MaxArea float64 `yaml:"max_area"`

	// MaxSteiner caps refinement per room.
	MaxSteiner int `yaml:"max_steiner"`

	// Delaunay enables edge flips after ear clipping.
	Delaunay bool `yaml:"delaunay"`
}

type OutputConfig struct {
	Format Format `yaml:"format"`
	Color  bool   `yaml:"color"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  LogInfo,
			Format: FormatText,
		},
		Solver: SolverConfig{
			FloorTimeout: 30 * time.Second,
			MaxSteiner:   mesh.DefaultMaxSteiner,
			Delaunay:     true,
		},
		Output: OutputConfig{
			Format: FormatJSON,
			Color:  true,
		},
	}
}
