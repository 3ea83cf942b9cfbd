// Package engine ties monitors, the binding table and the window system
// together: it builds bindings from the configuration, routes key presses to
// the monitor hosting the focused window and runs the matching actions.
//
// An Engine is not safe for concurrent use. The daemon loop owns it.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"github.com/1broseidon/tiler/internal/binding"
	"github.com/1broseidon/tiler/internal/config"
	"github.com/1broseidon/tiler/internal/monitor"
	"github.com/1broseidon/tiler/internal/platform"
	"github.com/1broseidon/tiler/internal/tiling"
)

// ErrNotInitialized is returned when the engine is used before Initialize or
// after Shutdown.
var ErrNotInitialized = errors.New("engine not initialized")

// ErrActionDisabled is returned when a debug action runs with debug_actions
// off.
var ErrActionDisabled = errors.New("action disabled")

// KeyEvent is a key press or release as delivered by the window system.
type KeyEvent struct {
	Keysym  binding.Keysym
	State   uint16
	Release bool
}

// Engine owns the monitor list and the binding table.
type Engine struct {
	backend platform.Backend
	cfg     *config.Config
	logger  *slog.Logger

	monitors []monitor.Monitor
	table    *binding.Table
	bound    bool
	warnings []error
}

// New returns an engine that is not yet initialized.
func New(backend platform.Backend, cfg *config.Config, logger *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
	}
}

// Initialize discovers monitors, computes their usable areas, builds the
// binding table and binds every configured key. Only a missing monitor
// geometry is fatal; configuration problems are logged and collected in
// Warnings.
func (e *Engine) Initialize() error {
	if e.bound {
		return nil
	}
	if err := e.Prepare(); err != nil {
		return err
	}

	e.bindAll()
	e.bound = true

	for _, m := range e.monitors {
		e.logger.Debug("monitor",
			"id", m.ID,
			"name", m.Name,
			"bounds", m.Bounds.String(),
			"usable", m.Usable.String(),
		)
	}
	e.logger.Info("bindings ready",
		"monitors", len(e.monitors),
		"modifier", e.table.Modifiers().String(),
		"grabs", e.table.Grabs(),
		"warnings", len(e.warnings),
	)
	return nil
}

// Prepare discovers monitors and builds a table with every payload but no
// key bound. Nothing is grabbed, so it can run next to a live daemon.
func (e *Engine) Prepare() error {
	if e.table != nil {
		if err := e.table.Teardown(e.backend); err != nil {
			e.logger.Warn("teardown before prepare", "error", err)
		}
	}
	e.table = nil
	e.bound = false
	e.warnings = nil
	for _, w := range e.cfg.Warnings {
		e.warn(errors.New(w))
	}

	monitors, err := monitor.Discover(e.backend)
	if err != nil {
		return fmt.Errorf("discover monitors: %w", err)
	}
	e.monitors = monitor.ComputeUsable(monitors, e.systemWindows())

	table := binding.NewTable()
	mods, unknown := binding.ParseModifiers(e.cfg.Modifier)
	for _, name := range unknown {
		e.warn(fmt.Errorf("unknown modifier %q", name))
	}
	table.AddModifier(mods)
	if r, ok := e.backend.(platform.NumLockReporter); ok {
		table.SetNumLock(binding.ModMask(r.NumLockMask()))
	}
	table.Build(e.monitors)
	e.table = table
	return nil
}

func (e *Engine) systemWindows() []tiling.Rect {
	windows, err := e.backend.Windows()
	if err != nil {
		e.logger.Debug("cannot list windows for usable area", "error", err)
		return nil
	}
	return lo.FilterMap(windows, func(w platform.Window, _ int) (tiling.Rect, bool) {
		return w.Bounds, !w.Regular
	})
}

// bindAll binds the configured keys in table order, then reports the names
// that match no action.
func (e *Engine) bindAll() {
	for _, a := range binding.Actions() {
		key, ok := e.cfg.Bindings[a.String()]
		if !ok || key == "" {
			continue
		}
		if a == binding.ListWindows && !e.cfg.DebugActions {
			e.logger.Debug("debug action not bound", "action", a.String())
			continue
		}

		sym, err := e.backend.ResolveKeysym(key)
		if err != nil {
			e.warn(fmt.Errorf("%s: %w %q: %v", a, binding.ErrInvalidKey, key, err))
			continue
		}
		if err := e.table.Bind(a, binding.Keysym(sym), e.backend); err != nil {
			e.warn(fmt.Errorf("%s = %s: %w", a, key, err))
			continue
		}
		e.logger.Debug("bound", "action", a.String(), "key", key, "keysym", binding.Keysym(sym).String())
	}

	var unknown []string
	for name := range e.cfg.Bindings {
		if _, err := binding.ParseAction(name); err != nil {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		e.warn(fmt.Errorf("%w: %q", binding.ErrUnknownAction, name))
	}
}

func (e *Engine) warn(err error) {
	e.logger.Warn("configuration", "warning", err.Error())
	e.warnings = append(e.warnings, err)
}

// Reconfigure releases every grab and builds the engine again from cfg. A
// nil cfg keeps the current configuration, which is what a monitor change
// needs.
func (e *Engine) Reconfigure(cfg *config.Config) error {
	if err := e.Shutdown(); err != nil {
		e.logger.Warn("teardown before rebuild", "error", err)
	}
	if cfg != nil {
		e.cfg = cfg
	}
	return e.Initialize()
}

// Shutdown releases every key grab and clears the binding table. It is safe
// to call more than once.
func (e *Engine) Shutdown() error {
	if e.table == nil {
		return nil
	}
	err := e.table.Teardown(e.backend)
	e.table = nil
	e.bound = false
	return err
}

// Dispatch runs every action bound to ev's key on the monitor hosting the
// focused window and returns how many ran. Releases and unbound keys are
// ignored.
func (e *Engine) Dispatch(ev KeyEvent) int {
	if ev.Release || e.table == nil || !e.table.Built() {
		return 0
	}

	m := e.activeMonitor()
	matches := e.table.Lookup(m, ev.Keysym)
	if len(matches) == 0 {
		e.logger.Debug("unbound key", "keysym", ev.Keysym.String(), "state", ev.State, "monitor", m)
		return 0
	}

	for _, b := range matches {
		e.logger.Debug("dispatch", "action", b.Action.String(), "monitor", m)
		if err := e.run(m, b); err != nil {
			e.logger.Debug("action failed", "action", b.Action.String(), "error", err)
		}
	}
	return len(matches)
}

// Run executes action on the monitor hosting the focused window, as if its
// key had been pressed.
func (e *Engine) Run(action binding.Action) error {
	if e.table == nil || !e.table.Built() {
		return ErrNotInitialized
	}
	if !action.Valid() {
		return fmt.Errorf("%w: %d", binding.ErrUnknownAction, int(action))
	}
	m := e.activeMonitor()
	b, ok := e.table.Binding(m, action)
	if !ok {
		return fmt.Errorf("no binding row for monitor %d", m)
	}
	return e.run(m, b)
}

// activeMonitor returns the index of the monitor hosting the focused window,
// or 0 when there is none.
func (e *Engine) activeMonitor() int {
	id, err := e.backend.ActiveWindow()
	if err != nil {
		return 0
	}
	rect, err := e.backend.WindowGeometry(id)
	if err != nil {
		return 0
	}
	return monitor.IndexOf(e.monitors, rect)
}

// Warnings returns the configuration problems found by the last Initialize.
func (e *Engine) Warnings() []error {
	return append([]error(nil), e.warnings...)
}

// Monitors returns the monitors of the current build.
func (e *Engine) Monitors() []monitor.Monitor {
	return append([]monitor.Monitor(nil), e.monitors...)
}

// Table returns the current binding table, or nil before Initialize.
func (e *Engine) Table() *binding.Table {
	return e.table
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config {
	return e.cfg
}
