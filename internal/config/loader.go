package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. Keys missing from the file keep their [Default] values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}
	if cfg.Log.Format != FormatText && cfg.Log.Format != FormatJSON {
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: text, json", cfg.Log.Format))
	}

	if cfg.Solver.Workers < 0 {
		errs = append(errs, fmt.Errorf("solver.workers %d must not be negative", cfg.Solver.Workers))
	}
	if cfg.Solver.FloorTimeout < 0 {
		errs = append(errs, fmt.Errorf("solver.floor_timeout %s must not be negative", cfg.Solver.FloorTimeout))
	}
	if cfg.Solver.MaxArea < 0 {
		errs = append(errs, fmt.Errorf("solver.max_area %g must not be negative", cfg.Solver.MaxArea))
	}
	if cfg.Solver.MaxSteiner <= 0 {
		errs = append(errs, fmt.Errorf("solver.max_steiner %d must be positive", cfg.Solver.MaxSteiner))
	}

	if cfg.Output.Format != FormatJSON && cfg.Output.Format != FormatYAML {
		errs = append(errs, fmt.Errorf("output.format %q is invalid; valid values: json, yaml", cfg.Output.Format))
	}

	return errors.Join(errs...)
}
