package binding

import (
	"errors"
	"fmt"

	"github.com/1broseidon/tiler/internal/monitor"
	"github.com/1broseidon/tiler/internal/platform"
	"github.com/1broseidon/tiler/internal/tiling"
)

var (
	// ErrNotBuilt is returned when bindings are used before Build.
	ErrNotBuilt = errors.New("binding table not built")
	// ErrUnknownAction is returned for action names or values that do not exist.
	ErrUnknownAction = errors.New("unknown action")
	// ErrAlreadyBound is returned when an action already has a key.
	ErrAlreadyBound = errors.New("action already bound")
	// ErrInvalidKey is returned when a key cannot be bound.
	ErrInvalidKey = errors.New("invalid key")
	// ErrGrabFailed is returned when the window system refuses a key grab.
	ErrGrabFailed = errors.New("key grab failed")
)

// PayloadKind tags the content of a Payload.
type PayloadKind uint8

const (
	PayloadNone PayloadKind = iota
	PayloadRect
	PayloadMonitor
)

// Payload is the monitor-specific data an action runs with. Rect is the
// target rectangle for PayloadRect and the target monitor's usable area for
// PayloadMonitor, where Target is that monitor's index.
type Payload struct {
	Kind   PayloadKind `json:"kind"`
	Rect   tiling.Rect `json:"rect"`
	Target int         `json:"target"`
}

// RectPayload returns a payload moving a window to r.
func RectPayload(r tiling.Rect) Payload {
	return Payload{Kind: PayloadRect, Rect: r}
}

// MonitorPayload returns a payload moving a window to monitor target.
func MonitorPayload(target int, usable tiling.Rect) Payload {
	return Payload{Kind: PayloadMonitor, Rect: usable, Target: target}
}

// Binding ties an action to a key and to its data on one monitor.
type Binding struct {
	Action  Action  `json:"action"`
	Keysym  Keysym  `json:"keysym"`
	Payload Payload `json:"payload"`
}

// Grabber registers key chords with the window system.
type Grabber interface {
	GrabKey(chord platform.Chord) error
	UngrabKey(chord platform.Chord) error
}

// Table is indexed [monitor][action]. Keys are shared by every monitor's row;
// payloads are per monitor. Use NewTable to create one.
type Table struct {
	mods    ModMask
	numLock ModMask
	built   bool
	rows    [][ActionCount]Binding
	keysyms [ActionCount]Keysym
	// bound remembers the chords each action was grabbed with, so
	// AddModifier or SetNumLock after Bind cannot orphan a grab.
	bound [ActionCount][]platform.Chord
	grabs map[platform.Chord]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	t := &Table{numLock: ModNumLock, grabs: make(map[platform.Chord]int)}
	for i := range t.keysyms {
		t.keysyms[i] = VoidSymbol
	}
	return t
}

func template() [ActionCount]Binding {
	var row [ActionCount]Binding
	for i := range row {
		row[i] = Binding{Action: Action(i), Keysym: VoidSymbol}
	}
	return row
}

// Build lays out one row per monitor from the action template. Positional
// actions get the monitor's regions. LeftScreen and RightScreen get the usable
// area of the nearest monitor on that side, or no payload when there is none.
// Keys already bound stay bound.
func (t *Table) Build(monitors []monitor.Monitor) {
	if t.grabs == nil {
		t.grabs = make(map[platform.Chord]int)
	}

	rows := make([][ActionCount]Binding, len(monitors))
	for i, m := range monitors {
		row := template()
		for a := range row {
			row[a].Keysym = t.keysyms[a]
		}

		regions := tiling.ComputeRegions(m.Usable)
		for r, rect := range regions {
			row[ActionForRegion(tiling.Region(r))].Payload = RectPayload(rect)
		}

		if j, ok := neighbour(monitors, i, tiling.LeftOf); ok {
			row[LeftScreen].Payload = MonitorPayload(j, monitors[j].Usable)
		}
		if j, ok := neighbour(monitors, i, tiling.RightOf); ok {
			row[RightScreen].Payload = MonitorPayload(j, monitors[j].Usable)
		}

		rows[i] = row
	}

	t.rows = rows
	t.built = true
}

// neighbour finds the monitor closest to monitors[i] on side pos. Ties go to
// the lowest index.
func neighbour(monitors []monitor.Monitor, i int, pos tiling.Position) (int, bool) {
	best, bestGap := -1, 0
	base := monitors[i].Bounds
	for j, m := range monitors {
		if j == i || tiling.RelativePosition(base, m.Bounds) != pos {
			continue
		}
		gap := tiling.Gap(base, m.Bounds, pos)
		if best < 0 || gap < bestGap {
			best, bestGap = j, gap
		}
	}
	return best, best >= 0
}

// AddModifier adds mask to the modifiers of every subsequent Bind.
func (t *Table) AddModifier(mask ModMask) {
	t.mods |= mask
}

// Modifiers returns the current modifier mask.
func (t *Table) Modifiers() ModMask {
	return t.mods
}

// SetNumLock sets the modifier NumLock toggles on this keyboard. Zero means
// NumLock is not mapped and chords are grabbed plain only.
func (t *Table) SetNumLock(mask ModMask) {
	t.numLock = mask
}

// NumLock returns the NumLock modifier chords are also grabbed with.
func (t *Table) NumLock() ModMask {
	return t.numLock
}

// chords returns the distinct chords grabbed for a key: the plain chord and
// the chord with NumLock.
func (t *Table) chords(k Keysym) []platform.Chord {
	plain := platform.Chord{Keysym: uint32(k), Mods: uint16(t.mods)}
	locked := platform.Chord{Keysym: uint32(k), Mods: uint16(t.mods | t.numLock)}
	if plain == locked {
		return []platform.Chord{plain}
	}
	return []platform.Chord{plain, locked}
}

// Bind assigns k to action on every monitor and grabs the chord. A chord
// shared with another action is grabbed only once.
func (t *Table) Bind(action Action, k Keysym, g Grabber) error {
	if !t.built {
		return ErrNotBuilt
	}
	if !action.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAction, int(action))
	}
	if k == VoidSymbol || k == 0 {
		return fmt.Errorf("%w: %s has no key symbol", ErrInvalidKey, action)
	}
	if t.keysyms[action] != VoidSymbol {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, action)
	}

	cs := t.chords(k)
	for i, c := range cs {
		if t.grabs[c] == 0 {
			if err := g.GrabKey(c); err != nil {
				t.release(cs[:i], g)
				return fmt.Errorf("%w: %s (keysym %s, mods %s): %v", ErrGrabFailed, action, k, ModMask(c.Mods), err)
			}
		}
		t.grabs[c]++
	}

	t.keysyms[action] = k
	t.bound[action] = cs
	for m := range t.rows {
		t.rows[m][action].Keysym = k
	}
	return nil
}

// release drops one reference to each chord, ungrabbing those that reach
// zero.
func (t *Table) release(cs []platform.Chord, g Grabber) error {
	var errs []error
	for _, c := range cs {
		n := t.grabs[c]
		if n == 0 {
			continue
		}
		if n > 1 {
			t.grabs[c] = n - 1
			continue
		}
		delete(t.grabs, c)
		if err := g.UngrabKey(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Teardown releases every grab, unbinds every action and clears all
// payloads. The table must be built again before further use. Calling it
// more than once is harmless.
func (t *Table) Teardown(g Grabber) error {
	var errs []error
	for a, k := range t.keysyms {
		if k == VoidSymbol {
			continue
		}
		if err := t.release(t.bound[a], g); err != nil {
			errs = append(errs, fmt.Errorf("ungrab %s: %w", Action(a), err))
		}
		t.keysyms[a] = VoidSymbol
		t.bound[a] = nil
	}

	for m := range t.rows {
		for a := range t.rows[m] {
			t.rows[m][a].Keysym = VoidSymbol
			t.rows[m][a].Payload = Payload{}
		}
	}
	t.built = false
	return errors.Join(errs...)
}

// Lookup returns the bindings of monitor m whose key is k, in table order.
func (t *Table) Lookup(m int, k Keysym) []Binding {
	if k == VoidSymbol || m < 0 || m >= len(t.rows) {
		return nil
	}
	var out []Binding
	for _, b := range t.rows[m] {
		if b.Keysym == k {
			out = append(out, b)
		}
	}
	return out
}

// Binding returns the binding of action on monitor m.
func (t *Table) Binding(m int, action Action) (Binding, bool) {
	if m < 0 || m >= len(t.rows) || !action.Valid() {
		return Binding{}, false
	}
	return t.rows[m][action], true
}

// Row returns a copy of monitor m's bindings.
func (t *Table) Row(m int) []Binding {
	if m < 0 || m >= len(t.rows) {
		return nil
	}
	row := t.rows[m]
	return row[:]
}

// Keysym returns the key bound to action, or VoidSymbol.
func (t *Table) Keysym(action Action) Keysym {
	if !action.Valid() {
		return VoidSymbol
	}
	return t.keysyms[action]
}

// Built reports whether the table has been built since the last teardown.
func (t *Table) Built() bool { return t.built }

// Monitors returns the number of rows.
func (t *Table) Monitors() int { return len(t.rows) }

// Grabs returns the number of distinct chords currently grabbed.
func (t *Table) Grabs() int { return len(t.grabs) }
