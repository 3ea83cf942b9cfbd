package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Modifier != nil {
		cfg.Modifier = strings.TrimSpace(*raw.Modifier)
	}
	if raw.ReplaceBindings != nil && *raw.ReplaceBindings {
		cfg.Bindings = map[string]string{}
	}
	for name, key := range raw.Bindings {
		name = strings.ToLower(strings.TrimSpace(name))
		key = strings.TrimSpace(key)
		if key == "" {
			delete(cfg.Bindings, name)
			continue
		}
		cfg.Bindings[name] = key
	}
	if raw.DebugActions != nil {
		cfg.DebugActions = *raw.DebugActions
	}
	if raw.ChangeScreenTolerance != nil {
		cfg.ChangeScreenTolerance = *raw.ChangeScreenTolerance
	}
	if raw.WatchConfig != nil {
		cfg.WatchConfig = *raw.WatchConfig
	}
	if raw.PidFile != nil {
		cfg.PidFile = strings.TrimSpace(*raw.PidFile)
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.LogLevel != nil {
		level := strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if level == "warn" {
			level = "warning"
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}
