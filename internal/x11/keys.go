package x11

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

// ResolveKeysym maps a key name such as "KP_8", "Left" or "g" to the
// unshifted keysym of the key that produces it. Key presses are matched on
// that same column, so "KP_8" and "KP_Up" resolve alike.
func (c *Connection) ResolveKeysym(name string) (xproto.Keysym, error) {
	codes := keybind.StrToKeycodes(c.XUtil, name)
	if len(codes) == 0 {
		return 0, fmt.Errorf("no keycode for key %q", name)
	}
	for _, kc := range codes {
		if sym := keybind.KeysymGet(c.XUtil, kc, 0); sym != 0 {
			return sym, nil
		}
	}
	return 0, fmt.Errorf("key %q has no unshifted symbol", name)
}

// KeycodeKeysym returns the unshifted keysym of a keycode.
func (c *Connection) KeycodeKeysym(code xproto.Keycode) xproto.Keysym {
	return keybind.KeysymGet(c.XUtil, code, 0)
}

// keycodesFor returns every keycode that produces sym in any column. Results are
// cached until the keyboard mapping changes.
func (c *Connection) keycodesFor(sym xproto.Keysym) []xproto.Keycode {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()

	if codes, ok := c.keycodes[sym]; ok {
		return codes
	}

	setup := c.XUtil.Setup()
	perCode := keybind.KeyMapGet(c.XUtil).KeysymsPerKeycode

	var codes []xproto.Keycode
	for kc := int(setup.MinKeycode); kc <= int(setup.MaxKeycode); kc++ {
		code := xproto.Keycode(kc)
		for col := byte(0); col < perCode; col++ {
			if keybind.KeysymGet(c.XUtil, code, col) == sym {
				codes = append(codes, code)
				break
			}
		}
	}
	c.keycodes[sym] = codes
	return codes
}

// ForgetKeycodes drops the keysym cache, for use after a MappingNotify.
func (c *Connection) ForgetKeycodes() {
	c.keyMu.Lock()
	c.keycodes = make(map[xproto.Keysym][]xproto.Keycode)
	c.keyMu.Unlock()
}

// NumLockMask returns the modifier the Num_Lock key toggles, or 0 when the
// keyboard has no Num_Lock.
func (c *Connection) NumLockMask() uint16 {
	for _, code := range keybind.StrToKeycodes(c.XUtil, "Num_Lock") {
		if mask := keybind.ModGet(c.XUtil, code); mask != 0 {
			return mask
		}
	}
	return 0
}

// GrabKey grabs sym with exactly mods on the root window, for every keycode
// that produces it.
func (c *Connection) GrabKey(sym xproto.Keysym, mods uint16) error {
	return c.grabs.grab(sym, mods)
}

// UngrabKey releases a grab made by GrabKey. The keycodes released are the
// ones grabbed, even if the keyboard mapping changed in between.
func (c *Connection) UngrabKey(sym xproto.Keysym, mods uint16) error {
	return c.grabs.ungrab(sym, mods)
}

type grabKey struct {
	sym  xproto.Keysym
	mods uint16
}

// keyGrabs remembers the keycodes each (keysym, modifiers) grab went to.
type keyGrabs struct {
	mu     sync.Mutex
	lookup func(xproto.Keysym) []xproto.Keycode
	grabFn func(code xproto.Keycode, mods uint16) error
	freeFn func(code xproto.Keycode, mods uint16) error
	held   map[grabKey][]xproto.Keycode
}

func newKeyGrabs(lookup func(xproto.Keysym) []xproto.Keycode,
	grabFn, freeFn func(xproto.Keycode, uint16) error) *keyGrabs {
	return &keyGrabs{
		lookup: lookup,
		grabFn: grabFn,
		freeFn: freeFn,
		held:   make(map[grabKey][]xproto.Keycode),
	}
}

func (g *keyGrabs) grab(sym xproto.Keysym, mods uint16) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := grabKey{sym, mods}
	if _, ok := g.held[key]; ok {
		return nil
	}
	codes := g.lookup(sym)
	if len(codes) == 0 {
		return fmt.Errorf("keysym 0x%x is not on the keyboard", uint32(sym))
	}
	for i, code := range codes {
		if err := g.grabFn(code, mods); err != nil {
			for _, done := range codes[:i] {
				g.freeFn(done, mods)
			}
			return fmt.Errorf("grab keycode %d mods 0x%x: %w", code, mods, err)
		}
	}
	g.held[key] = append([]xproto.Keycode(nil), codes...)
	return nil
}

func (g *keyGrabs) ungrab(sym xproto.Keysym, mods uint16) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := grabKey{sym, mods}
	codes, ok := g.held[key]
	if !ok {
		return nil
	}
	delete(g.held, key)

	var errs []error
	for _, code := range codes {
		if err := g.freeFn(code, mods); err != nil {
			errs = append(errs, fmt.Errorf("ungrab keycode %d mods 0x%x: %w", code, mods, err))
		}
	}
	return errors.Join(errs...)
}
