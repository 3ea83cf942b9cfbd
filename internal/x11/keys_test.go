package x11

import (
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

type grabCall struct {
	code xproto.Keycode
	mods uint16
}

// fakeKeyboard maps keysyms to keycodes and records grab calls. The map can
// change between calls, as it does after a MappingNotify.
type fakeKeyboard struct {
	codes   map[xproto.Keysym][]xproto.Keycode
	grabbed map[grabCall]int
	freed   map[grabCall]int
	failOn  xproto.Keycode
}

func newFakeKeyboard() *fakeKeyboard {
	return &fakeKeyboard{
		codes:   make(map[xproto.Keysym][]xproto.Keycode),
		grabbed: make(map[grabCall]int),
		freed:   make(map[grabCall]int),
	}
}

func (k *fakeKeyboard) grabs() *keyGrabs {
	return newKeyGrabs(
		func(sym xproto.Keysym) []xproto.Keycode { return k.codes[sym] },
		func(code xproto.Keycode, mods uint16) error {
			if code == k.failOn {
				return errors.New("BadAccess")
			}
			k.grabbed[grabCall{code, mods}]++
			return nil
		},
		func(code xproto.Keycode, mods uint16) error {
			k.freed[grabCall{code, mods}]++
			return nil
		},
	)
}

func TestKeyGrabs_UngrabAfterMappingChange(t *testing.T) {
	kb := newFakeKeyboard()
	g := kb.grabs()

	kb.codes[0x67] = []xproto.Keycode{42}
	if err := g.grab(0x67, 0x0c); err != nil {
		t.Fatalf("grab: %v", err)
	}

	// 'g' moves to another key.
	kb.codes[0x67] = []xproto.Keycode{43}
	if err := g.ungrab(0x67, 0x0c); err != nil {
		t.Fatalf("ungrab: %v", err)
	}
	if kb.freed[grabCall{42, 0x0c}] != 1 {
		t.Fatalf("keycode 42 not released: %v", kb.freed)
	}
	if kb.freed[grabCall{43, 0x0c}] != 0 {
		t.Fatalf("released keycode 43, which was never grabbed")
	}

	if err := g.grab(0x67, 0x0c); err != nil {
		t.Fatalf("regrab: %v", err)
	}
	if kb.grabbed[grabCall{43, 0x0c}] != 1 {
		t.Fatalf("regrab did not use the new keycode: %v", kb.grabbed)
	}
}

func TestKeyGrabs_ModifiersAreTrackedSeparately(t *testing.T) {
	kb := newFakeKeyboard()
	g := kb.grabs()
	kb.codes[0xff97] = []xproto.Keycode{80, 88}

	for _, mods := range []uint16{0x0c, 0x1c} {
		if err := g.grab(0xff97, mods); err != nil {
			t.Fatalf("grab mods 0x%x: %v", mods, err)
		}
	}
	if err := g.ungrab(0xff97, 0x1c); err != nil {
		t.Fatal(err)
	}
	if len(g.held) != 1 {
		t.Fatalf("held = %v", g.held)
	}
	for _, code := range []xproto.Keycode{80, 88} {
		if kb.freed[grabCall{code, 0x1c}] != 1 || kb.freed[grabCall{code, 0x0c}] != 0 {
			t.Fatalf("freed = %v", kb.freed)
		}
	}
}

func TestKeyGrabs_Errors(t *testing.T) {
	kb := newFakeKeyboard()
	g := kb.grabs()

	if err := g.grab(0x67, 0); err == nil {
		t.Fatal("grab of a keysym with no keycode succeeded")
	}

	kb.codes[0x74] = []xproto.Keycode{28, 29}
	kb.failOn = 29
	if err := g.grab(0x74, 0); err == nil {
		t.Fatal("failed grab reported success")
	}
	if kb.freed[grabCall{28, 0}] != 1 {
		t.Fatalf("partial grab not rolled back: %v", kb.freed)
	}
	if len(g.held) != 0 {
		t.Fatalf("held = %v after failed grab", g.held)
	}

	// Releasing something never grabbed is a no-op.
	if err := g.ungrab(0x74, 0); err != nil {
		t.Fatal(err)
	}
	if len(kb.freed) != 1 {
		t.Fatalf("freed = %v", kb.freed)
	}
}
