// Package config loads the user configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/formation/config.toml
// (~/.config/formation/config.toml when XDG_CONFIG_HOME is unset). Every key
// is optional; missing keys keep their defaults:
//
//	[stage]
//	rows = 10
//	cols = 15
//	cell_ratio = 1.0
//
//	[transition]
//	duration = "100ms"
//	fps = 60
//
//	[palette]
//	colors = ["#FF595E", "#1982C4", "#6A4C93", "#8AC926", "#FFCA3A"]
//
//	[render]
//	cell_width = 40.0
//	show_grid = true
//
//	[serve]
//	addr = ":8080"
//	redis_addr = ""
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
	"github.com/matzehuels/formation/pkg/core/transition"
	ferrors "github.com/matzehuels/formation/pkg/errors"
)

const appName = "formation"

// Config is the decoded configuration file.
type Config struct {
	Stage      stage.Config `toml:"stage"`
	Transition Transition   `toml:"transition"`
	Palette    Palette      `toml:"palette"`
	Render     Render       `toml:"render"`
	Serve      Serve        `toml:"serve"`
}

// Transition configures scene changes.
type Transition struct {
	Duration Duration `toml:"duration"`
	FPS      int      `toml:"fps"`
}

// Palette lists the colors offered for new dancers.
type Palette struct {
	Colors []string `toml:"colors"`
}

// Render configures SVG output.
type Render struct {
	CellWidth float64 `toml:"cell_width"`
	ShowGrid  bool    `toml:"show_grid"`
}

// Serve configures the preview server.
type Serve struct {
	Addr      string `toml:"addr"`
	RedisAddr string `toml:"redis_addr"`
}

// Duration is a time.Duration written as a string ("100ms") in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Stage:      stage.Default(),
		Transition: Transition{Duration: Duration{transition.DefaultDuration}, FPS: 60},
		Palette:    Palette{Colors: append([]string(nil), formation.DefaultPalette...)},
		Render:     Render{CellWidth: stage.CellWidth, ShowGrid: true},
		Serve:      Serve{Addr: ":8080"},
	}
}

// Dir returns the configuration directory using the XDG convention.
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the location of the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration at path. A missing file yields the defaults.
// Unknown keys and out-of-range values are reported as INVALID_INPUT errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "%s", path)
	}
	return cfg, nil
}

// LoadDefault loads the configuration from [Path].
func LoadDefault() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Stage.Validate(); err != nil {
		return err
	}
	if d := c.Transition.Duration.Duration; d <= 0 || d > 10*time.Second {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "transition.duration must be in (0, 10s] (got %s)", d)
	}
	if c.Transition.FPS < 1 || c.Transition.FPS > 240 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "transition.fps must be 1-240 (got %d)", c.Transition.FPS)
	}
	if len(c.Palette.Colors) == 0 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "palette.colors cannot be empty")
	}
	for _, col := range c.Palette.Colors {
		if err := ferrors.ValidateColor(col); err != nil {
			return err
		}
	}
	if c.Render.CellWidth <= 0 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "render.cell_width must be positive (got %g)", c.Render.CellWidth)
	}
	if c.Serve.Addr == "" {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "serve.addr cannot be empty")
	}
	return nil
}

// Encode returns c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write saves c to path, creating parent directories. It refuses to replace
// an existing file unless overwrite is set.
func (c *Config) Write(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return ferrors.New(ferrors.ErrCodeInvalidPath, "%s already exists", path)
		}
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
