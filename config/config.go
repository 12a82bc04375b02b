// Package config loads run configuration for the executor CLI from an
// optional TOML file, layered beneath command-line flags. It covers
// execution limits, output display, logging, the diagnostics server port,
// and input echo.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the executor's run configuration.
type Config struct {
	Execution struct {
		HeapSize int `toml:"heap_size"`
	} `toml:"execution"`

	Display struct {
		ColorOutput bool `toml:"color_output"`
	} `toml:"display"`

	Logging struct {
		Format string `toml:"format"` // "text" or "json"
		Level  string `toml:"level"`  // "info" or "debug"
	} `toml:"logging"`

	Server struct {
		Port int `toml:"port"`
	} `toml:"server"`

	Input struct {
		Echo bool `toml:"echo"` // echo INCH/INNUM input back to stdout as it's consumed
	} `toml:"input"`
}

// Default returns a Config populated with the built-in defaults: a 512-cell
// heap, plain-text logging, color auto-detected by the caller.
func Default() *Config {
	c := &Config{}
	c.Execution.HeapSize = 512
	c.Display.ColorOutput = true
	c.Logging.Format = "text"
	c.Logging.Level = "info"
	c.Server.Port = 8787
	return c
}

// Load reads a TOML configuration file at path, overlaying it onto
// Default(). A missing file is not an error — it simply yields the
// defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return c, nil
}
