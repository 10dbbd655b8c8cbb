package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tatianab/toons/internal/engine"
	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/penguins"
	"github.com/tatianab/toons/internal/scanner"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// EnvFile names the environment variable holding the config file path.
const EnvFile = "TOONS_CONFIG"

const (
	ScanEveryTick = "every-tick"
	ScanOnChange  = "on-change"
)

// Relocate is how far, in pixels, a window may move in one rescan and still
// carry its riders along.
type Relocate struct {
	Up    int `yaml:"up"`
	Down  int `yaml:"down"`
	Left  int `yaml:"left"`
	Right int `yaml:"right"`
}

// Config holds the application configuration.
type Config struct {
	Display       string   `yaml:"display"`
	Delay         int      `yaml:"delay"` // milliseconds between ticks
	Penguins      int      `yaml:"penguins"`
	EdgeBlock     string   `yaml:"edge_block"` // none, both or side-bottom
	SolidPopups   bool     `yaml:"solid_popups"`
	ShapedWindows bool     `yaml:"shaped_windows"`
	MaxRelocate   Relocate `yaml:"max_relocate"`
	ScanMode      string   `yaml:"scan_mode"`
	Theme         string   `yaml:"theme"`
	ThemeDir      string   `yaml:"theme_dir"`
	ThemeSource   string   `yaml:"theme_source"` // go-getter address, fetched into ThemeDir
	Layout        string   `yaml:"layout"`       // simulated desktop for the terminal front end
	Quiet         bool     `yaml:"quiet"`
	Debug         bool     `yaml:"debug"`
	Seed          uint64   `yaml:"seed"`
}

// DefaultConfig returns a Config with the classic xpenguins behaviour.
func DefaultConfig() *Config {
	return &Config{
		Delay:         int(penguins.DefaultDelay / time.Millisecond),
		Penguins:      8,
		EdgeBlock:     engine.EdgeSideBottom.String(),
		SolidPopups:   true,
		ShapedWindows: true,
		MaxRelocate: Relocate{
			Up:    engine.DefaultMaxRelocate,
			Down:  engine.DefaultMaxRelocate,
			Left:  engine.DefaultMaxRelocate,
			Right: engine.DefaultMaxRelocate,
		},
		ScanMode: ScanEveryTick,
		Theme:    "penguins",
		ThemeDir: models.ThemeDir,
	}
}

// LoadFile reads a yaml config file. Keys missing from the file keep their
// default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfig loads the file named by TOONS_CONFIG, or the defaults when the
// variable is not set.
func LoadConfig() (*Config, error) {
	path := os.Getenv(EnvFile)
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["display"] {
		cfg.Display = fromFile.Display
	}
	if !explicitFlags["delay"] {
		cfg.Delay = fromFile.Delay
	}
	if !explicitFlags["penguins"] && !explicitFlags["n"] {
		cfg.Penguins = fromFile.Penguins
	}
	if !explicitFlags["edge-block"] {
		cfg.EdgeBlock = fromFile.EdgeBlock
	}
	if !explicitFlags["solid-popups"] {
		cfg.SolidPopups = fromFile.SolidPopups
	}
	if !explicitFlags["shaped-windows"] {
		cfg.ShapedWindows = fromFile.ShapedWindows
	}
	if !explicitFlags["max-relocate"] {
		cfg.MaxRelocate = fromFile.MaxRelocate
	}
	if !explicitFlags["scan-mode"] {
		cfg.ScanMode = fromFile.ScanMode
	}
	if !explicitFlags["theme"] {
		cfg.Theme = fromFile.Theme
	}
	if !explicitFlags["theme-dir"] {
		cfg.ThemeDir = fromFile.ThemeDir
	}
	if !explicitFlags["theme-source"] {
		cfg.ThemeSource = fromFile.ThemeSource
	}
	if !explicitFlags["layout"] {
		cfg.Layout = fromFile.Layout
	}
	if !explicitFlags["q"] {
		cfg.Quiet = fromFile.Quiet
	}
	if !explicitFlags["debug"] {
		cfg.Debug = fromFile.Debug
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
}

// ParseEdgeMode converts an edge_block value.
func ParseEdgeMode(s string) (engine.EdgeMode, error) {
	for _, m := range []engine.EdgeMode{engine.EdgeNone, engine.EdgeBoth, engine.EdgeSideBottom} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: edge_block %q (want none, both or side-bottom)", ErrInvalidConfig, s)
}

// Validate reports the first unusable value.
func (c *Config) Validate() error {
	if c.Delay <= 0 {
		return fmt.Errorf("%w: delay must be positive, got %d", ErrInvalidConfig, c.Delay)
	}
	if c.Penguins < 0 {
		return fmt.Errorf("%w: penguins must not be negative, got %d", ErrInvalidConfig, c.Penguins)
	}
	if _, err := ParseEdgeMode(c.EdgeBlock); err != nil {
		return err
	}
	r := c.MaxRelocate
	if r.Up < 0 || r.Down < 0 || r.Left < 0 || r.Right < 0 {
		return fmt.Errorf("%w: max_relocate must not be negative", ErrInvalidConfig)
	}
	if c.ScanMode != ScanEveryTick && c.ScanMode != ScanOnChange {
		return fmt.Errorf("%w: scan_mode %q (want %s or %s)", ErrInvalidConfig, c.ScanMode, ScanEveryTick, ScanOnChange)
	}
	if c.Theme == "" {
		return fmt.Errorf("%w: theme name is empty", ErrInvalidConfig)
	}
	return nil
}

// EngineOptions converts the movement and relocation settings. The config
// must be valid.
func (c *Config) EngineOptions() engine.Options {
	edge, _ := ParseEdgeMode(c.EdgeBlock)
	return engine.Options{
		Edge: edge,
		MaxRelocate: engine.Relocate{
			Up:    c.MaxRelocate.Up,
			Down:  c.MaxRelocate.Down,
			Left:  c.MaxRelocate.Left,
			Right: c.MaxRelocate.Right,
		},
		ScanEveryTick: c.ScanMode == ScanEveryTick,
	}
}

func (c *Config) ScanOptions() scanner.Options {
	return scanner.Options{SolidPopups: c.SolidPopups, ShapedWindows: c.ShapedWindows}
}

func (c *Config) ColonyOptions() penguins.Options {
	return penguins.Options{
		Count:  c.Penguins,
		Delay:  time.Duration(c.Delay) * time.Millisecond,
		Seed:   c.Seed,
		Engine: c.EngineOptions(),
	}
}

// LoadTheme fetches the theme from ThemeSource when one is given, then loads
// it from ThemeDir.
func (c *Config) LoadTheme(ctx context.Context) (*models.Theme, error) {
	if c.ThemeSource != "" {
		return models.FetchTheme(ctx, c.ThemeSource, c.ThemeDir, c.Theme)
	}
	return models.LoadTheme(c.ThemeDir, c.Theme)
}
