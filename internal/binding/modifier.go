package binding

import (
	"fmt"
	"strings"
)

// Keysym is a key symbol in the X11 encoding.
type Keysym uint32

// VoidSymbol marks an action that has no key bound.
const VoidSymbol Keysym = 0xffffff

func (k Keysym) String() string {
	if k == VoidSymbol {
		return "none"
	}
	return fmt.Sprintf("0x%x", uint32(k))
}

// ModMask is a set of modifier keys, bit-compatible with X11 key masks.
type ModMask uint16

const (
	ModShift   ModMask = 1 << 0
	ModLock    ModMask = 1 << 1
	ModControl ModMask = 1 << 2
	Mod1       ModMask = 1 << 3
	Mod2       ModMask = 1 << 4
	Mod3       ModMask = 1 << 5
	Mod4       ModMask = 1 << 6
	Mod5       ModMask = 1 << 7

	// ModNumLock is the modifier NumLock toggles on most keyboards. Tables
	// use it until told otherwise with SetNumLock.
	ModNumLock = Mod2
)

var modifierNames = map[string]ModMask{
	"SHIFT":   ModShift,
	"CTRL":    ModControl,
	"CONTROL": ModControl,
	"ALT":     Mod1,
	"MOD1":    Mod1,
	"MOD2":    Mod2,
	"MOD3":    Mod3,
	"SUPER":   Mod4,
	"WIN":     Mod4,
	"MOD4":    Mod4,
	"MOD5":    Mod5,
}

var maskOrder = []struct {
	mask ModMask
	name string
}{
	{ModControl, "CTRL"},
	{ModShift, "SHIFT"},
	{Mod1, "ALT"},
	{Mod4, "SUPER"},
	{Mod2, "MOD2"},
	{Mod3, "MOD3"},
	{Mod5, "MOD5"},
	{ModLock, "LOCK"},
}

func (m ModMask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, o := range maskOrder {
		if m&o.mask != 0 {
			parts = append(parts, o.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParseModifiers parses a "+"-separated modifier list such as "CTRL+ALT".
// Unknown names are returned so callers can report them; the known ones are
// still applied.
func ParseModifiers(names string) (ModMask, []string) {
	var (
		mask    ModMask
		unknown []string
	)
	for _, tok := range strings.Split(names, "+") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		m, ok := modifierNames[tok]
		if !ok {
			unknown = append(unknown, tok)
			continue
		}
		mask |= m
	}
	return mask, unknown
}
