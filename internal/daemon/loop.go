// Package daemon runs the tiler's single event loop. Every change to engine
// state happens on the goroutine executing Loop.Run.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/1broseidon/tiler/internal/binding"
	"github.com/1broseidon/tiler/internal/config"
	"github.com/1broseidon/tiler/internal/engine"
	"github.com/1broseidon/tiler/internal/ipc"
)

// ErrStopped is returned by requests made after the loop has exited.
var ErrStopped = errors.New("event loop stopped")

// ErrEventsClosed is returned by Run when the X event loop quits, which
// happens when the display connection goes away.
var ErrEventsClosed = errors.New("X event loop quit")

// EventSource is an X event loop driven by pings. Callbacks run between a
// receive on before and a receive on after.
type EventSource interface {
	MainPing() (before, after, quit chan struct{})
}

// Options wires a Loop. Nil channels are never ready.
type Options struct {
	Events EventSource
	Engine *engine.Engine
	Logger *slog.Logger

	// LoadConfig reads the configuration again on reload.
	LoadConfig func() (*config.Config, error)
	ConfigPath string

	// ConfigChanges fires when the config file was written.
	ConfigChanges <-chan struct{}
	// Hangup receives SIGHUP.
	Hangup <-chan os.Signal
	// Topology fires after monitor or keyboard layout changes.
	Topology <-chan struct{}
}

// Loop multiplexes X events, reloads, topology changes and IPC requests.
type Loop struct {
	opts    Options
	logger  *slog.Logger
	engine  *engine.Engine
	calls   chan func()
	done    chan struct{}
	started time.Time
	fatal   error
}

// New creates a loop. Run starts it.
func New(opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	return &Loop{
		opts:   opts,
		logger: logger,
		engine: opts.Engine,
		calls:  make(chan func()),
		done:   make(chan struct{}),
	}
}

// Run initializes the engine and processes events until ctx is cancelled, the
// X event loop quits, or a rebuild fails to find any monitor geometry. The
// engine is shut down, releasing every grab, before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer func() {
		if err := l.engine.Shutdown(); err != nil {
			l.logger.Warn("shutdown", "error", err)
		}
	}()

	if err := l.engine.Initialize(); err != nil {
		return err
	}
	l.started = time.Now()

	before, after, quit := l.opts.Events.MainPing()
	l.logger.Info("event loop started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopping")
			return nil

		case <-before:
			// X callbacks run now; wait for them to finish.
			<-after

		case <-quit:
			return ErrEventsClosed

		case <-l.opts.ConfigChanges:
			l.logger.Info("config file changed")
			l.reload()

		case sig := <-l.opts.Hangup:
			l.logger.Info("reload requested", "signal", sig.String())
			l.reload()

		case <-l.opts.Topology:
			l.rebuild(nil)

		case fn := <-l.calls:
			fn()
		}

		if l.fatal != nil {
			return l.fatal
		}
	}
}

// reload reads the configuration and rebuilds the engine from it. A config
// that fails to load leaves the running bindings untouched.
func (l *Loop) reload() error {
	cfg, err := l.opts.LoadConfig()
	if err != nil {
		l.logger.Error("config reload failed, keeping current bindings", "error", err)
		return err
	}
	return l.rebuild(cfg)
}

func (l *Loop) rebuild(cfg *config.Config) error {
	if err := l.engine.Reconfigure(cfg); err != nil {
		l.logger.Error("rebuild failed", "error", err)
		l.fatal = err
		return err
	}
	return nil
}

// do runs fn on the loop goroutine and waits for it.
func (l *Loop) do(fn func()) error {
	done := make(chan struct{})
	select {
	case l.calls <- func() { fn(); close(done) }:
	case <-l.done:
		return ErrStopped
	}
	<-done
	return nil
}

// Reload reloads the configuration on the loop goroutine.
func (l *Loop) Reload() error {
	var err error
	if derr := l.do(func() { err = l.reload() }); derr != nil {
		return derr
	}
	return err
}

// Status reports the daemon state.
func (l *Loop) Status() ipc.StatusData {
	var status ipc.StatusData
	l.do(func() {
		table := l.engine.Table()
		status = ipc.StatusData{
			DaemonRunning: true,
			UptimeSeconds: int64(time.Since(l.started).Seconds()),
			ConfigPath:    l.opts.ConfigPath,
			Monitors:      len(l.engine.Monitors()),
			ActiveMonitor: l.engine.ActiveMonitor(),
		}
		if table != nil {
			status.Modifier = table.Modifiers().String()
			status.Grabs = table.Grabs()
			for _, a := range binding.Actions() {
				if table.Keysym(a) != binding.VoidSymbol {
					status.BoundActions++
				}
			}
		}
		for _, w := range l.engine.Warnings() {
			status.Warnings = append(status.Warnings, w.Error())
		}
	})
	return status
}

// Monitors describes the monitors and the live binding table.
func (l *Loop) Monitors() ipc.MonitorsData {
	var data ipc.MonitorsData
	l.do(func() {
		data = ipc.NewMonitorsData(l.engine.Monitors(), l.engine.Table())
	})
	return data
}

// Windows lists every window relative to the active monitor.
func (l *Loop) Windows() (ipc.WindowsData, error) {
	var (
		data ipc.WindowsData
		err  error
	)
	if derr := l.do(func() {
		data.ActiveMonitor = l.engine.ActiveMonitor()
		data.Windows, err = l.engine.ListWindows(data.ActiveMonitor)
	}); derr != nil {
		return data, derr
	}
	return data, err
}

// RunAction runs the named action as if its key was pressed.
func (l *Loop) RunAction(name string) error {
	action, err := binding.ParseAction(name)
	if err != nil {
		return err
	}
	if derr := l.do(func() { err = l.engine.Run(action) }); derr != nil {
		return derr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}
