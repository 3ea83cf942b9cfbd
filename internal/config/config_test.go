package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Bindings["top"] != "KP_8" {
		t.Fatalf("expected top bound to KP_8, got %q", cfg.Bindings["top"])
	}
	if _, ok := cfg.Bindings["listwindows"]; ok {
		t.Fatalf("listwindows must not be bound by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Modifier != DefaultModifier {
		t.Fatalf("expected modifier %q, got %q", DefaultModifier, res.Config.Modifier)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.ChangeScreenTolerance != DefaultChangeScreenTolerance {
		t.Fatalf("expected default tolerance, got %d", res.Config.ChangeScreenTolerance)
	}
}

func TestLoadFromPath_BindingsMergeIntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"modifier: SUPER",
		"debug_actions: true",
		"bindings:",
		"  grid: G",
		"  sidebyside: \"\"",
		"  ListWindows: l",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Modifier != "SUPER" || !cfg.DebugActions {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Bindings["grid"] != "G" {
		t.Fatalf("grid = %q, want G", cfg.Bindings["grid"])
	}
	if _, ok := cfg.Bindings["sidebyside"]; ok {
		t.Fatalf("empty key must unbind sidebyside")
	}
	if cfg.Bindings["listwindows"] != "l" {
		t.Fatalf("action names must be lower-cased, got %v", cfg.Bindings)
	}
	if cfg.Bindings["top"] != "KP_8" {
		t.Fatalf("default top binding lost")
	}

	src, ok := res.Sources["bindings.grid"]
	if !ok || src.Kind != SourceFile || src.Line != 4 {
		t.Fatalf("expected bindings.grid source on line 4, got %#v", src)
	}
}

func TestLoadFromPath_ReplaceBindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "replace_bindings: true\nbindings:\n  maximize: m\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.Bindings) != 1 || res.Config.Bindings["maximize"] != "m" {
		t.Fatalf("bindings = %v", res.Config.Bindings)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("unknown_key: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "log_level: info\nchange_screen_tolerance: -4\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "change_screen_tolerance" || verr.Source.Line != 2 {
		t.Fatalf("unexpected error context %#v", verr)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_LogLevelWarnAlias(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: WARN\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "warning" {
		t.Fatalf("log_level = %q, want warning", res.Config.LogLevel)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configD, "10-base.yaml"), []byte("change_screen_tolerance: 5\nbindings:\n  grid: a\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configD, "20-override.yaml"), []byte("change_screen_tolerance: 6\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"change_screen_tolerance: 7",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(main), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.ChangeScreenTolerance != 7 {
		t.Fatalf("expected change_screen_tolerance to be 7, got %d", res.Config.ChangeScreenTolerance)
	}
	if res.Config.Bindings["grid"] != "a" {
		t.Fatalf("expected included grid binding, got %q", res.Config.Bindings["grid"])
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "include:\n  - missing.yaml\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(a, []byte("include: b.yaml\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(b, []byte("include: a.yaml\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_Legacy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiler.conf")
	data := strings.Join([]string{
		"# tiler keys",
		"modifier = CTRL+SUPER",
		"",
		"top = KP_8",
		"grid=g",
		"top = KP_9",
		"garbage line",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Modifier != "CTRL+SUPER" {
		t.Fatalf("modifier = %q", cfg.Modifier)
	}
	if len(cfg.Bindings) != 2 || cfg.Bindings["top"] != "KP_8" || cfg.Bindings["grid"] != "g" {
		t.Fatalf("bindings = %v", cfg.Bindings)
	}
	if len(cfg.Warnings) != 2 {
		t.Fatalf("expected duplicate and syntax warnings, got %v", cfg.Warnings)
	}
	if !strings.Contains(cfg.Warnings[0], ":6:") || !strings.Contains(cfg.Warnings[1], ":7:") {
		t.Fatalf("warnings lack line numbers: %v", cfg.Warnings)
	}
	if src := res.Sources["bindings.grid"]; src.Line != 5 {
		t.Fatalf("grid source line = %d, want 5", src.Line)
	}
}

func TestDefaultConfigPath_PrefersYAMLThenLegacy(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	yamlPath := filepath.Join(home, ".config", "tiler", "config.yaml")
	legacyPath := filepath.Join(home, ".config", "tiler.conf")

	got, err := DefaultConfigPath()
	if err != nil || got != yamlPath {
		t.Fatalf("no files: got %q, %v", got, err)
	}

	if err := os.MkdirAll(filepath.Dir(legacyPath), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(legacyPath, []byte("top = KP_8\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := DefaultConfigPath(); got != legacyPath {
		t.Fatalf("legacy only: got %q", got)
	}

	if err := os.MkdirAll(filepath.Dir(yamlPath), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(yamlPath, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := DefaultConfigPath(); got != yamlPath {
		t.Fatalf("both: got %q", got)
	}
}

func TestWatcher_ReportsWritesToConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-w.Changes():
		t.Fatalf("unexpected change for unrelated file")
	case <-time.After(100 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte("debug_actions: true\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for change")
	}
}
