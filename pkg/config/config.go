// Package config provides configuration loading, defaults, and validation
// for nef3.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the root configuration.
type Config struct {
	Constructor ConstructorConfig `mapstructure:"constructor"`
	Log         LogConfig         `mapstructure:"log"`
	Preview     PreviewConfig     `mapstructure:"preview"`
	Engine      EngineConfig      `mapstructure:"engine"`
}

// ConstructorConfig selects the constructor variant.
type ConstructorConfig struct {
	// Indexed copies identity indices and records facet pairs.
	Indexed bool `mapstructure:"indexed"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level string `mapstructure:"level"` // "debug" | "info" | "warn" | "error"
}

// PreviewConfig controls mesh previews.
type PreviewConfig struct {
	Cells  int     `mapstructure:"cells"`  // marching cubes resolution
	Radius float64 `mapstructure:"radius"` // marker distance from the vertex
}

// EngineConfig controls script evaluation.
type EngineConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q; expected debug|info|warn|error", ErrInvalid, c.Log.Level)
	}
	if c.Preview.Cells < 1 {
		return fmt.Errorf("%w: preview.cells must be >= 1, got %d", ErrInvalid, c.Preview.Cells)
	}
	if c.Preview.Radius <= 0 {
		return fmt.Errorf("%w: preview.radius must be positive, got %g", ErrInvalid, c.Preview.Radius)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("%w: engine.timeout must be positive, got %s", ErrInvalid, c.Engine.Timeout)
	}
	return nil
}
