package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Config is the effective daemon configuration.
type Config struct {
	// Modifier is the "+"-separated modifier list every binding is grabbed
	// with, e.g. "CTRL+ALT".
	Modifier string `yaml:"modifier"`

	// Bindings maps an action name to a key name ("KP_8", "Left", "g").
	// An empty key leaves the action unbound.
	Bindings map[string]string `yaml:"bindings"`

	// DebugActions enables actions that only log, such as listwindows.
	DebugActions bool `yaml:"debug_actions"`

	// ChangeScreenTolerance is how far (in pixels) each window edge may be
	// from a region for leftscreen/rightscreen to treat the window as placed
	// in that region.
	ChangeScreenTolerance int `yaml:"change_screen_tolerance"`

	// WatchConfig reloads the daemon when the config file changes.
	WatchConfig bool `yaml:"watch_config"`

	// PidFile overrides the single-instance lock file location.
	PidFile string `yaml:"pid_file"`

	// Display overrides $DISPLAY for the X11 connection.
	Display string `yaml:"display"`

	// LogLevel is one of debug, info, warning, error.
	LogLevel string `yaml:"log_level"`

	// Warnings holds non-fatal problems found while loading.
	Warnings []string `yaml:"-"`
}

const (
	DefaultModifier              = "CTRL+ALT"
	DefaultChangeScreenTolerance = 32
	DefaultLogLevel              = "info"
)

// DefaultBindings returns the stock key layout: the numeric keypad mirrors
// the screen, arrows move between monitors.
func DefaultBindings() map[string]string {
	return map[string]string{
		"top":         "KP_8",
		"topright":    "KP_9",
		"topleft":     "KP_7",
		"bottom":      "KP_2",
		"bottomright": "KP_3",
		"bottomleft":  "KP_1",
		"right":       "KP_6",
		"left":        "KP_4",
		"leftscreen":  "Left",
		"rightscreen": "Right",
		"grid":        "g",
		"sidebyside":  "s",
		"maximize":    "KP_5",
	}
}

func DefaultConfig() *Config {
	return &Config{
		Modifier:              DefaultModifier,
		Bindings:              DefaultBindings(),
		ChangeScreenTolerance: DefaultChangeScreenTolerance,
		WatchConfig:           true,
		LogLevel:              DefaultLogLevel,
	}
}

// DefaultConfigPath returns ~/.config/tiler/config.yaml, or the legacy
// ~/.config/tiler.conf when only that one exists.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	path := filepath.Join(homeDir, ".config", "tiler", "config.yaml")
	legacy := filepath.Join(homeDir, ".config", "tiler.conf")

	if ok, _ := pathExists(path); ok {
		return path, nil
	}
	if ok, _ := pathExists(legacy); ok {
		return legacy, nil
	}
	return path, nil
}

// BindingNames returns the configured action names in sorted order.
func (c *Config) BindingNames() []string {
	names := make([]string, 0, len(c.Bindings))
	for name := range c.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate performs strict validation of the effective configuration.
// Unknown actions and keys are not checked here; they are reported as
// warnings when bindings are applied.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Modifier) == "" {
		return &ValidationError{Path: "modifier", Err: fmt.Errorf("modifier is required")}
	}
	if c.Bindings == nil {
		return &ValidationError{Path: "bindings", Err: fmt.Errorf("bindings must not be null")}
	}
	for name := range c.Bindings {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "bindings", Err: fmt.Errorf("bindings contains an empty action name")}
		}
	}
	if c.ChangeScreenTolerance < 0 {
		return &ValidationError{Path: "change_screen_tolerance", Err: fmt.Errorf("change_screen_tolerance must be >= 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}
