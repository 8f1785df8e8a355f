// Package config loads the polynom driver configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no configuration file is named explicitly.
const DefaultPath = "polynom.yaml"

var validate = validator.New()

// Config names the six input polynomials and the evaluation point.
type Config struct {
	// Inputs are the files holding P1..P6, in order.
	Inputs []string `yaml:"inputs" validate:"len=6,dive,required"`
	// Dir is prepended to relative input paths.
	Dir      string  `yaml:"dir"`
	Point    float64 `yaml:"point"`
	LogLevel string  `yaml:"log_level" validate:"oneof=debug info warn error"`
}

func Default() Config {
	return Config{
		Inputs: []string{
			"input01.txt", "input02.txt", "input03.txt",
			"input04.txt", "input05.txt", "input06.txt",
		},
		Point:    2,
		LogLevel: "info",
	}
}

// Load reads the configuration at path over the defaults. An empty path
// means DefaultPath, which may be absent; a named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	default:
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error { return validate.Struct(c) }

// Paths returns the input paths with Dir applied.
func (c Config) Paths() []string {
	out := make([]string, len(c.Inputs))
	for i, in := range c.Inputs {
		if c.Dir != "" && !filepath.IsAbs(in) {
			in = filepath.Join(c.Dir, in)
		}
		out[i] = in
	}
	return out
}

// Level maps LogLevel onto slog. Unknown values fall back to info.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
