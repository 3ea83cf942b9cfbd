package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one file's view of the configuration. Nil fields were not
// set by that file.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Modifier              *string           `yaml:"modifier"`
	Bindings              map[string]string `yaml:"bindings"`
	DebugActions          *bool             `yaml:"debug_actions"`
	ChangeScreenTolerance *int              `yaml:"change_screen_tolerance"`
	WatchConfig           *bool             `yaml:"watch_config"`
	PidFile               *string           `yaml:"pid_file"`
	Display               *string           `yaml:"display"`
	LogLevel              *string           `yaml:"log_level"`

	// ReplaceBindings drops the default bindings instead of merging into
	// them.
	ReplaceBindings *bool `yaml:"replace_bindings"`
}

// merge returns c with every field set in overlay applied on top. Binding
// maps are merged key by key.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.Modifier != nil {
		out.Modifier = overlay.Modifier
	}
	if overlay.Bindings != nil {
		out.Bindings = mergeStringMap(c.Bindings, overlay.Bindings)
	}
	if overlay.DebugActions != nil {
		out.DebugActions = overlay.DebugActions
	}
	if overlay.ChangeScreenTolerance != nil {
		out.ChangeScreenTolerance = overlay.ChangeScreenTolerance
	}
	if overlay.WatchConfig != nil {
		out.WatchConfig = overlay.WatchConfig
	}
	if overlay.PidFile != nil {
		out.PidFile = overlay.PidFile
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.ReplaceBindings != nil {
		out.ReplaceBindings = overlay.ReplaceBindings
	}
	return out
}

func mergeStringMap(base map[string]string, overlay map[string]string) map[string]string {
	if base == nil && overlay == nil {
		return nil
	}
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
