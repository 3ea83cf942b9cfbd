package tiling

// Region names one of the eight positional tiles of a monitor's usable area.
type Region int

const (
	RegionTop Region = iota
	RegionTopRight
	RegionTopLeft
	RegionBottom
	RegionBottomRight
	RegionBottomLeft
	RegionRight
	RegionLeft

	RegionCount int = iota
)

var regionNames = [RegionCount]string{
	RegionTop:         "top",
	RegionTopRight:    "topright",
	RegionTopLeft:     "topleft",
	RegionBottom:      "bottom",
	RegionBottomRight: "bottomright",
	RegionBottomLeft:  "bottomleft",
	RegionRight:       "right",
	RegionLeft:        "left",
}

func (r Region) String() string {
	if r < 0 || int(r) >= RegionCount {
		return "invalid"
	}
	return regionNames[r]
}

// Regions holds the target rectangle of every positional region, indexed by
// Region.
type Regions [RegionCount]Rect

// ComputeRegions splits a usable area into halves and quadrants. Integer
// division truncates the top and left halves; the bottom and right halves
// take the remaining pixel so the halves always add up to the full area.
func ComputeRegions(usable Rect) Regions {
	x, y, w, h := usable.X, usable.Y, usable.Width, usable.Height

	lw := w / 2
	rw := w - lw
	th := h / 2
	bh := h - th

	var rs Regions
	rs[RegionTop] = Rect{X: x, Y: y, Width: w, Height: th}
	rs[RegionBottom] = Rect{X: x, Y: y + th, Width: w, Height: bh}
	rs[RegionLeft] = Rect{X: x, Y: y, Width: lw, Height: h}
	rs[RegionRight] = Rect{X: x + lw, Y: y, Width: rw, Height: h}
	rs[RegionTopLeft] = Rect{X: x, Y: y, Width: lw, Height: th}
	rs[RegionTopRight] = Rect{X: x + lw, Y: y, Width: rw, Height: th}
	rs[RegionBottomLeft] = Rect{X: x, Y: y + th, Width: lw, Height: bh}
	rs[RegionBottomRight] = Rect{X: x + lw, Y: y + th, Width: rw, Height: bh}
	return rs
}

// Match returns the region whose rectangle is closest to win, provided no
// edge is further than tolerance pixels away.
func (rs Regions) Match(win Rect, tolerance int) (Region, bool) {
	best := Region(-1)
	bestDist := 0

	for i, r := range rs {
		dx := abs(win.X - r.X)
		dy := abs(win.Y - r.Y)
		dr := abs(win.Right() - r.Right())
		db := abs(win.Bottom() - r.Bottom())
		if dx > tolerance || dy > tolerance || dr > tolerance || db > tolerance {
			continue
		}
		dist := dx + dy + dr + db
		if best < 0 || dist < bestDist {
			best = Region(i)
			bestDist = dist
		}
	}

	return best, best >= 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
