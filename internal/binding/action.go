// Package binding holds the per-monitor table that maps tiling actions to key
// chords and to the geometry each action applies on that monitor.
package binding

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tiler/internal/tiling"
)

// Action is one of the fixed tiling operations.
type Action int

// The first eight actions share their numbering with tiling.Region.
const (
	Top Action = iota
	TopRight
	TopLeft
	Bottom
	BottomRight
	BottomLeft
	Right
	Left
	LeftScreen
	RightScreen
	Grid
	SideBySide
	Maximize
	ListWindows

	ActionCount int = iota
)

var actionNames = [ActionCount]string{
	Top:         "top",
	TopRight:    "topright",
	TopLeft:     "topleft",
	Bottom:      "bottom",
	BottomRight: "bottomright",
	BottomLeft:  "bottomleft",
	Right:       "right",
	Left:        "left",
	LeftScreen:  "leftscreen",
	RightScreen: "rightscreen",
	Grid:        "grid",
	SideBySide:  "sidebyside",
	Maximize:    "maximize",
	ListWindows: "listwindows",
}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a >= 0 && int(a) < ActionCount
}

// Region returns the positional region moved to by a, if any.
func (a Action) Region() (tiling.Region, bool) {
	if a < Top || a > Left {
		return 0, false
	}
	return tiling.Region(a), true
}

// ActionForRegion is the inverse of Action.Region.
func ActionForRegion(r tiling.Region) Action {
	return Action(r)
}

// Actions returns every action in table order.
func Actions() []Action {
	out := make([]Action, ActionCount)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

// ParseAction resolves a canonical action name, ignoring case.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}
