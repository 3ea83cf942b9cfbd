package hotkeys

import (
	"log/slog"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/tiler/internal/binding"
	"github.com/1broseidon/tiler/internal/engine"
	"github.com/1broseidon/tiler/internal/x11"
)

// Dispatcher runs the actions bound to a key.
type Dispatcher interface {
	Dispatch(ev engine.KeyEvent) int
}

// Handler feeds key events from the X event loop to a Dispatcher and
// reports monitor and keyboard layout changes.
//
// Its callbacks run inside the X event loop, between the loop's before and
// after pings.
type Handler struct {
	conn       *x11.Connection
	dispatcher Dispatcher
	logger     *slog.Logger
	changes    chan struct{}
}

// NewHandler creates a handler. Call Start before running the event loop.
func NewHandler(conn *x11.Connection, d Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		conn:       conn,
		dispatcher: d,
		logger:     logger,
		changes:    make(chan struct{}, 1),
	}
}

// Start connects the key, keymap and screen-change callbacks. Without RandR
// the handler still dispatches keys but never reports monitor changes.
func (h *Handler) Start() error {
	xu := h.conn.XUtil

	if err := h.conn.WatchScreenChanges(); err != nil {
		h.logger.Warn("monitor changes will not be tracked", "error", err)
	} else {
		xevent.HookFun(h.hook).Connect(xu)
	}

	xevent.KeyPressFun(func(_ *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.handle(ev.Detail, ev.State, false)
	}).Connect(xu, h.conn.Root)

	xevent.KeyReleaseFun(func(_ *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		h.handle(ev.Detail, ev.State, true)
	}).Connect(xu, h.conn.Root)

	// keybind.Initialize refreshes the key map first; our grabs are keyed by
	// keycode and must be redone.
	xevent.MappingNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MappingNotifyEvent) {
		if ev.Request != xproto.MappingKeyboard {
			return
		}
		h.conn.ForgetKeycodes()
		h.logger.Info("keyboard mapping changed")
		h.notify()
	}).Connect(xu, xevent.NoWindow)

	return nil
}

// Changes delivers one value after any number of monitor or keyboard layout
// changes. The receiver should rebuild the bindings.
func (h *Handler) Changes() <-chan struct{} {
	return h.changes
}

func (h *Handler) handle(code xproto.Keycode, state uint16, release bool) {
	ev := keyEvent(code, state, release, h.conn.KeycodeKeysym)
	if release {
		return
	}
	n := h.dispatcher.Dispatch(ev)
	h.logger.Debug("key press",
		"keycode", code,
		"keysym", ev.Keysym.String(),
		"state", binding.ModMask(state).String(),
		"actions", n,
	)
}

func (h *Handler) hook(_ *xgbutil.XUtil, ev interface{}) bool {
	if sc, ok := ev.(randr.ScreenChangeNotifyEvent); ok {
		h.logger.Info("screen changed", "width", sc.Width, "height", sc.Height)
		h.notify()
	}
	return true
}

func (h *Handler) notify() {
	select {
	case h.changes <- struct{}{}:
	default:
	}
}

// keyEvent converts a key code to an engine event, matching on the key's
// unshifted symbol so Shift or NumLock do not change which binding runs.
func keyEvent(code xproto.Keycode, state uint16, release bool, lookup func(xproto.Keycode) xproto.Keysym) engine.KeyEvent {
	return engine.KeyEvent{
		Keysym:  binding.Keysym(lookup(code)),
		State:   state,
		Release: release,
	}
}
