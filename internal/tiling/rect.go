package tiling

import "fmt"

// Rect represents a window position and size in absolute screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d), (%d, %d)", r.X, r.Y, r.Width, r.Height)
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle covers no pixel.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ContainsPoint reports whether (x, y) lies inside the rectangle.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (cx, cy int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Intersect returns the overlapping area of r and o, or the zero Rect when
// they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.Right(), o.Right())
	y2 := min(r.Bottom(), o.Bottom())

	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Overlaps reports whether r and o share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Position describes where a target rectangle lies relative to a base one.
type Position int

const (
	PositionUnknown Position = iota
	LeftOf
	RightOf
	TopOf
	BottomOf
)

func (p Position) String() string {
	switch p {
	case LeftOf:
		return "left-of"
	case RightOf:
		return "right-of"
	case TopOf:
		return "top-of"
	case BottomOf:
		return "bottom-of"
	default:
		return "unknown"
	}
}

// RelativePosition reports on which side of base the target lies. The
// horizontal axis is checked first; overlapping rectangles are Unknown.
func RelativePosition(base, target Rect) Position {
	switch {
	case base.X >= target.Right():
		return LeftOf
	case base.Right() <= target.X:
		return RightOf
	case base.Y >= target.Bottom():
		return TopOf
	case base.Bottom() <= target.Y:
		return BottomOf
	default:
		return PositionUnknown
	}
}

// Gap returns the distance between base and target along the axis implied by
// pos. It is zero for touching rectangles and -1 for PositionUnknown.
func Gap(base, target Rect, pos Position) int {
	switch pos {
	case LeftOf:
		return base.X - target.Right()
	case RightOf:
		return target.X - base.Right()
	case TopOf:
		return base.Y - target.Bottom()
	case BottomOf:
		return target.Y - base.Bottom()
	default:
		return -1
	}
}
