// Package config loads the launcher configuration.
//
// The file lives at $PANE_CONFIG_PATH or ~/.config/pane/config.toml. Any
// format viper understands is accepted (TOML, YAML, JSON); the extension
// decides, and TOML is assumed when there is none. Every key may be
// overridden by a PANE_<KEY> environment variable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pane-dev/pane/internal/runner"
	"github.com/pane-dev/pane/internal/skills"
)

// EnvPath names the variable that overrides the config file location.
const EnvPath = "PANE_CONFIG_PATH"

// DefaultPath is the config file location when EnvPath is unset.
const DefaultPath = "~/.config/pane/config.toml"

// View modes accepted by default_view_mode.
const (
	ViewAll       = "all"
	ViewFavorites = "favorites"
	ViewRecent    = "recent"
)

// ErrCorrupt is returned when the config file exists but cannot be parsed.
var ErrCorrupt = errors.New("config file corrupted, using defaults")

// Config is the launcher configuration.
type Config struct {
	// SkillPaths holds the project, user and system skill roots, in that
	// order. Missing trailing entries disable those scopes.
	SkillPaths      []string `mapstructure:"skill_paths"`
	DebugLogEnabled bool     `mapstructure:"debug_log_enabled"`
	DebugLogPath    string   `mapstructure:"debug_log_path"`
	EnableMouse     bool     `mapstructure:"enable_mouse"`
	Language        string   `mapstructure:"language"`
	DefaultViewMode string   `mapstructure:"default_view_mode"`
	MaxRecentSkills int      `mapstructure:"max_recent_skills"`
	EnvPassthrough  []string `mapstructure:"env_passthrough"`

	// Path is the file this config was loaded from, or would have been.
	Path string `mapstructure:"-"`
}

var defaults = map[string]any{
	"skill_paths":       []string{"./.pane/skills/", "~/.config/pane/skills/", skills.SystemRoot + "/"},
	"debug_log_enabled": false,
	"debug_log_path":    "~/.config/pane/logs/pane-debug.log",
	"enable_mouse":      true,
	"language":          "en",
	"default_view_mode": ViewAll,
	"max_recent_skills": 10,
	"env_passthrough":   []string{},
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, _ := decode(newViper())
	cfg.Path = Path()
	return cfg
}

// Path returns the config file location with ~ expanded.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return ExpandHome(p)
	}
	return ExpandHome(DefaultPath)
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("PANE")
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Load reads the config at path. A missing file yields the defaults; a file
// that cannot be parsed yields ErrCorrupt.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		path = ExpandHome(path)
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("toml")
		}
		if _, err := os.Stat(path); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("%w: check %s: %v", ErrCorrupt, path, err)
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("%w: check %s: %v", ErrCorrupt, path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Validate checks values that decoding alone cannot.
func (c *Config) Validate() error {
	if len(c.SkillPaths) == 0 {
		return fmt.Errorf("configuration error: skill_paths cannot be empty")
	}
	if len(c.SkillPaths) > len(skills.Scopes) {
		return fmt.Errorf("configuration error: skill_paths has %d entries, at most %d allowed", len(c.SkillPaths), len(skills.Scopes))
	}
	switch c.DefaultViewMode {
	case ViewAll, ViewFavorites, ViewRecent:
	default:
		return fmt.Errorf("invalid default_view_mode: %s (must be all, favorites, or recent)", c.DefaultViewMode)
	}
	if c.MaxRecentSkills < 0 {
		return fmt.Errorf("invalid max_recent_skills: %d", c.MaxRecentSkills)
	}
	for _, name := range c.EnvPassthrough {
		if !runner.ValidEnvName(name) {
			return fmt.Errorf("invalid env_passthrough name %q", name)
		}
		if strings.HasPrefix(name, "PANE_") {
			return fmt.Errorf("env_passthrough cannot forward %s: PANE_ variables are set by the launcher", name)
		}
	}
	return nil
}

// Roots maps skill_paths onto scope roots. Relative paths resolve against
// cwd and ~ against home.
func (c *Config) Roots(cwd, home string) skills.Roots {
	resolve := func(p string) string {
		if p == "" {
			return ""
		}
		p = expandHomeWith(p, home)
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		return filepath.Clean(p)
	}
	var r skills.Roots
	for i, p := range c.SkillPaths {
		switch i {
		case 0:
			r.Project = resolve(p)
		case 1:
			r.User = resolve(p)
		case 2:
			r.System = resolve(p)
		}
	}
	return r
}

// DebugLogFile returns the expanded debug log path.
func (c *Config) DebugLogFile() string {
	return ExpandHome(c.DebugLogPath)
}

// ExpandHome replaces a leading ~/ with $HOME. Paths are returned unchanged
// when HOME is unset.
func ExpandHome(p string) string {
	return expandHomeWith(p, os.Getenv("HOME"))
}

func expandHomeWith(p, home string) string {
	if home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return p
}
