package config

import (
	"time"

	"github.com/spf13/viper"
)

// Defaults for every setting.
const (
	DefaultLogLevel      = "info"
	DefaultPreviewCells  = 64
	DefaultPreviewRadius = 1.0
	DefaultEngineTimeout = 5 * time.Second
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields of cfg.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Preview.Cells == 0 {
		cfg.Preview.Cells = DefaultPreviewCells
	}
	if cfg.Preview.Radius == 0 {
		cfg.Preview.Radius = DefaultPreviewRadius
	}
	if cfg.Engine.Timeout == 0 {
		cfg.Engine.Timeout = DefaultEngineTimeout
	}
}

// registerKeys makes every key known to v so that NEF3_* variables are
// honored without a config file.
func registerKeys(v *viper.Viper) {
	v.SetDefault("constructor.indexed", false)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("preview.cells", DefaultPreviewCells)
	v.SetDefault("preview.radius", DefaultPreviewRadius)
	v.SetDefault("engine.timeout", DefaultEngineTimeout)
}
