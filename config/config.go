// Package config holds the settings shared by the hazard command and the
// samples.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/hazard/core"
)

// Report formats.
const (
	FormatText  = "text"
	FormatTable = "table"
)

// Environment variables read by FromEnv.
const (
	EnvRegisters = "HAZARD_REGISTERS"
	EnvFormat    = "HAZARD_FORMAT"
	EnvVerbose   = "HAZARD_VERBOSE"
	EnvStrict    = "HAZARD_STRICT"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config describes one checking session.
type Config struct {
	// Registers is the size of the tracked register file.
	Registers int `yaml:"registers"`

	// Format is the report format, "text" or "table". Empty lets the
	// command pick one based on the output.
	Format string `yaml:"format"`

	Verbose bool `yaml:"verbose"`

	// Strict turns diagnostics into a failing exit status.
	Strict bool `yaml:"strict"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Registers: core.DefaultNumRegisters,
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return c, c.Validate()
}

// FromEnv overlays the HAZARD_* environment variables that are set.
func (c Config) FromEnv() Config {
	c.Registers = env.Int(EnvRegisters, c.Registers)
	c.Format = env.Str(EnvFormat, c.Format)

	if env.Has(EnvVerbose) {
		c.Verbose = env.Bool(EnvVerbose)
	}

	if env.Has(EnvStrict) {
		c.Strict = env.Bool(EnvStrict)
	}

	return c
}

// Validate reports settings no session can run with.
func (c Config) Validate() error {
	if c.Registers <= 0 {
		return fmt.Errorf("%w: registers must be positive, got %d",
			ErrInvalidConfig, c.Registers)
	}

	switch c.Format {
	case "", FormatText, FormatTable:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}

	return nil
}
