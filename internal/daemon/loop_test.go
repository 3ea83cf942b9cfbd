package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/1broseidon/tiler/internal/binding"
	"github.com/1broseidon/tiler/internal/config"
	"github.com/1broseidon/tiler/internal/engine"
	"github.com/1broseidon/tiler/internal/monitor"
	"github.com/1broseidon/tiler/internal/platform"
	"github.com/1broseidon/tiler/internal/tiling"
)

// stubBackend is a window system with one window on configurable displays.
// The loop goroutine is its only caller while Run is active.
type stubBackend struct {
	mu       sync.Mutex
	displays []platform.Display
	window   tiling.Rect
	moves    []tiling.Rect
	grabs    int
	ungrabs  int
}

func (s *stubBackend) Displays() ([]platform.Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]platform.Display(nil), s.displays...), nil
}

func (s *stubBackend) ScreenBounds() (tiling.Rect, error) {
	return tiling.Rect{}, errors.New("no root")
}

func (s *stubBackend) Windows() ([]platform.Window, error) {
	return []platform.Window{{ID: 1, Regular: true, Bounds: s.window}}, nil
}

func (s *stubBackend) ActiveWindow() (platform.WindowID, error) { return 1, nil }
func (s *stubBackend) CurrentDesktop() (int, error)             { return 0, nil }

func (s *stubBackend) WindowGeometry(platform.WindowID) (tiling.Rect, error) {
	return s.window, nil
}

func (s *stubBackend) MoveResize(_ platform.WindowID, r tiling.Rect) error {
	s.window = r
	s.moves = append(s.moves, r)
	return nil
}

func (s *stubBackend) Maximize(platform.WindowID) error   { return nil }
func (s *stubBackend) Unmaximize(platform.WindowID) error { return nil }

func (s *stubBackend) ResolveKeysym(name string) (uint32, error) {
	if len(name) == 1 {
		return uint32(name[0]), nil
	}
	return 0, errors.New("no such key")
}

func (s *stubBackend) GrabKey(platform.Chord) error {
	s.grabs++
	return nil
}

func (s *stubBackend) UngrabKey(platform.Chord) error {
	s.ungrabs++
	return nil
}

func (s *stubBackend) setDisplays(rs ...tiling.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displays = nil
	for i, r := range rs {
		s.displays = append(s.displays, platform.Display{ID: i, Bounds: r})
	}
}

type stubEvents struct {
	before, after, quit chan struct{}
}

func newStubEvents() *stubEvents {
	return &stubEvents{
		before: make(chan struct{}),
		after:  make(chan struct{}),
		quit:   make(chan struct{}),
	}
}

func (e *stubEvents) MainPing() (chan struct{}, chan struct{}, chan struct{}) {
	return e.before, e.after, e.quit
}

type harness struct {
	backend  *stubBackend
	events   *stubEvents
	engine   *engine.Engine
	loop     *Loop
	cancel   context.CancelFunc
	errc     chan error
	configs  chan *config.Config
	hangup   chan os.Signal
	topology chan struct{}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startLoop(t *testing.T, bindings map[string]string) *harness {
	t.Helper()

	h := &harness{
		backend:  &stubBackend{window: tiling.Rect{X: 10, Y: 10, Width: 100, Height: 100}},
		events:   newStubEvents(),
		errc:     make(chan error, 1),
		configs:  make(chan *config.Config, 1),
		hangup:   make(chan os.Signal),
		topology: make(chan struct{}),
	}
	h.backend.setDisplays(tiling.Rect{Width: 1000, Height: 800})

	cfg := config.DefaultConfig()
	cfg.Bindings = bindings
	h.engine = engine.New(h.backend, cfg, quietLogger())

	h.loop = New(Options{
		Events: h.events,
		Engine: h.engine,
		Logger: quietLogger(),
		LoadConfig: func() (*config.Config, error) {
			select {
			case cfg := <-h.configs:
				return cfg, nil
			default:
				return nil, errors.New("config: broken")
			}
		},
		Hangup:   h.hangup,
		Topology: h.topology,
	})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.errc <- h.loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.loop.done:
		case <-time.After(2 * time.Second):
		}
	})

	// The first request is served once Initialize has finished.
	if !h.loop.Status().DaemonRunning {
		t.Fatal("loop did not start")
	}
	return h
}

func (h *harness) stop(t *testing.T) error {
	t.Helper()
	h.cancel()
	select {
	case err := <-h.errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
		return nil
	}
}

func TestLoop_ShutdownReleasesGrabs(t *testing.T) {
	h := startLoop(t, map[string]string{"top": "t", "grid": "g"})

	if err := h.stop(t); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.backend.grabs == 0 || h.backend.grabs != h.backend.ungrabs {
		t.Fatalf("grabs=%d ungrabs=%d", h.backend.grabs, h.backend.ungrabs)
	}
	if err := h.loop.RunAction("top"); !errors.Is(err, ErrStopped) {
		t.Fatalf("RunAction after stop err = %v", err)
	}
	if h.loop.Status().DaemonRunning {
		t.Fatal("stopped loop reports running")
	}
}

func TestLoop_EventPingsAndQuit(t *testing.T) {
	h := startLoop(t, map[string]string{"top": "t"})

	for i := 0; i < 3; i++ {
		h.events.before <- struct{}{}
		h.events.after <- struct{}{}
	}
	h.events.quit <- struct{}{}

	select {
	case err := <-h.errc:
		if !errors.Is(err, ErrEventsClosed) {
			t.Fatalf("Run err = %v, want ErrEventsClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop ignored quit")
	}
	if h.backend.grabs != h.backend.ungrabs {
		t.Fatalf("grabs=%d ungrabs=%d", h.backend.grabs, h.backend.ungrabs)
	}
}

func TestLoop_RunAction(t *testing.T) {
	h := startLoop(t, map[string]string{"top": "t"})

	if err := h.loop.RunAction("TOP"); err != nil {
		t.Fatalf("RunAction: %v", err)
	}
	if err := h.loop.RunAction("cascade"); !errors.Is(err, binding.ErrUnknownAction) {
		t.Fatalf("RunAction(cascade) err = %v", err)
	}
	if err := h.loop.RunAction("listwindows"); !errors.Is(err, engine.ErrActionDisabled) {
		t.Fatalf("RunAction(listwindows) err = %v", err)
	}
	if err := h.stop(t); err != nil {
		t.Fatal(err)
	}

	want := tiling.Rect{Width: 1000, Height: 400}
	if len(h.backend.moves) != 1 || h.backend.moves[0] != want {
		t.Fatalf("moves = %v, want [%v]", h.backend.moves, want)
	}
}

func TestLoop_HangupReloadsConfig(t *testing.T) {
	h := startLoop(t, map[string]string{"top": "t"})

	next := config.DefaultConfig()
	next.Bindings = map[string]string{"bottom": "b"}
	h.configs <- next
	h.hangup <- syscall.SIGHUP

	// The hangup is handled before the next request is served.
	if got := h.loop.Status().BoundActions; got != 1 {
		t.Fatalf("bound actions = %d", got)
	}
	if k := h.engine.Table().Keysym(binding.Bottom); k != binding.Keysym('b') {
		t.Fatalf("bottom keysym = %s", k)
	}
	if k := h.engine.Table().Keysym(binding.Top); k != binding.VoidSymbol {
		t.Fatalf("top still bound to %s", k)
	}
}

func TestLoop_BrokenConfigKeepsBindings(t *testing.T) {
	h := startLoop(t, map[string]string{"top": "t"})

	if err := h.loop.Reload(); err == nil {
		t.Fatal("Reload of a broken config succeeded")
	}
	if k := h.engine.Table().Keysym(binding.Top); k != binding.Keysym('t') {
		t.Fatalf("top keysym = %s after failed reload", k)
	}
	if !h.loop.Status().DaemonRunning {
		t.Fatal("failed reload stopped the loop")
	}
}

func TestLoop_TopologyChangeRebuildsMonitors(t *testing.T) {
	h := startLoop(t, map[string]string{"rightscreen": "r"})

	h.backend.setDisplays(
		tiling.Rect{Width: 1000, Height: 800},
		tiling.Rect{X: 1000, Width: 1280, Height: 1024},
	)
	h.topology <- struct{}{}

	data := h.loop.Monitors()
	if len(data.Monitors) != 2 {
		t.Fatalf("monitors after change = %d", len(data.Monitors))
	}
	right := data.Monitors[0].Bindings[binding.RightScreen]
	if right.Monitor == nil || *right.Monitor != 1 || right.Keysym != binding.Keysym('r').String() {
		t.Fatalf("rightscreen = %+v", right)
	}
	if h.backend.grabs-h.backend.ungrabs != 2 {
		t.Fatalf("live grabs = %d, want 2", h.backend.grabs-h.backend.ungrabs)
	}
}

func TestLoop_LostGeometryIsFatal(t *testing.T) {
	h := startLoop(t, map[string]string{"top": "t"})

	h.backend.setDisplays()
	h.topology <- struct{}{}

	select {
	case err := <-h.errc:
		if !errors.Is(err, monitor.ErrNoGeometry) {
			t.Fatalf("Run err = %v, want ErrNoGeometry", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop kept running without geometry")
	}
	if h.backend.grabs != h.backend.ungrabs {
		t.Fatalf("grabs=%d ungrabs=%d", h.backend.grabs, h.backend.ungrabs)
	}
}

func TestLoop_Windows(t *testing.T) {
	h := startLoop(t, nil)

	data, err := h.loop.Windows()
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if data.ActiveMonitor != 0 || len(data.Windows) != 1 || data.Windows[0].Marker() != "*+" {
		t.Fatalf("windows = %+v", data)
	}
}
