package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// loadLegacy reads the line-based format:
//
//	# comment
//	modifier = CTRL+ALT
//	top = KP_8
//
// Every other key names an action. A legacy file lists its complete set of
// bindings, so the defaults are replaced rather than merged.
func loadLegacy(path string) (RawConfig, map[string]Source, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawConfig{}, nil, nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	defer f.Close()

	replace := true
	raw := RawConfig{
		Bindings:        map[string]string{},
		ReplaceBindings: &replace,
	}
	sources := map[string]Source{}
	var warnings []string

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		key, value, ok := strings.Cut(text, "=")
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s:%d: expected \"name = value\"", path, line))
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" {
			warnings = append(warnings, fmt.Sprintf("%s:%d: missing name", path, line))
			continue
		}

		src := Source{Kind: SourceFile, File: path, Line: line, Column: 1}
		if key == "modifier" {
			mod := value
			raw.Modifier = &mod
			sources["modifier"] = src
			continue
		}

		if _, dup := raw.Bindings[key]; dup {
			warnings = append(warnings, fmt.Sprintf("%s:%d: %s is bound more than once, keeping the first key", path, line, key))
			continue
		}
		raw.Bindings[key] = value
		sources["bindings."+key] = src
	}
	if err := scanner.Err(); err != nil {
		return RawConfig{}, nil, nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	return raw, sources, warnings, nil
}
