package tiling

import "testing"

func area(r Rect) int { return r.Width * r.Height }

func TestComputeRegions_QuadrantsPartitionUsableArea(t *testing.T) {
	tests := []struct {
		name   string
		usable Rect
	}{
		{"even", Rect{X: 0, Y: 0, Width: 1000, Height: 800}},
		{"odd width and height", Rect{X: 0, Y: 30, Width: 1921, Height: 1051}},
		{"offset monitor", Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}},
		{"one pixel", Rect{X: 5, Y: 5, Width: 1, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := ComputeRegions(tt.usable)
			quads := []Rect{
				rs[RegionTopLeft], rs[RegionTopRight],
				rs[RegionBottomLeft], rs[RegionBottomRight],
			}

			total := 0
			for i, q := range quads {
				if !tt.usable.Contains(q) {
					t.Fatalf("quadrant %d %v not within usable %v", i, q, tt.usable)
				}
				total += area(q)
				for j := i + 1; j < len(quads); j++ {
					if q.Overlaps(quads[j]) {
						t.Fatalf("quadrants %d and %d overlap: %v %v", i, j, q, quads[j])
					}
				}
			}
			if total != area(tt.usable) {
				t.Fatalf("quadrants cover %d pixels, usable area has %d", total, area(tt.usable))
			}
		})
	}
}

func TestComputeRegions_HalvesPartitionUsableArea(t *testing.T) {
	usable := Rect{X: 100, Y: 50, Width: 801, Height: 601}
	rs := ComputeRegions(usable)

	top, bottom := rs[RegionTop], rs[RegionBottom]
	if top.Overlaps(bottom) {
		t.Fatalf("top %v overlaps bottom %v", top, bottom)
	}
	if top.Height+bottom.Height != usable.Height || top.Width != usable.Width || bottom.Width != usable.Width {
		t.Fatalf("top %v and bottom %v do not cover %v", top, bottom, usable)
	}
	if bottom.Y != top.Bottom() {
		t.Fatalf("bottom starts at %d, want %d", bottom.Y, top.Bottom())
	}

	left, right := rs[RegionLeft], rs[RegionRight]
	if left.Overlaps(right) {
		t.Fatalf("left %v overlaps right %v", left, right)
	}
	if left.Width+right.Width != usable.Width || left.Height != usable.Height || right.Height != usable.Height {
		t.Fatalf("left %v and right %v do not cover %v", left, right, usable)
	}

	// The odd pixel goes to the bottom and right halves.
	if bottom.Height != 301 || right.Width != 401 {
		t.Fatalf("expected bottom height 301 and right width 401, got %d and %d", bottom.Height, right.Width)
	}
}

func TestComputeRegions_SideBySideGeometry(t *testing.T) {
	rs := ComputeRegions(Rect{X: 100, Y: 50, Width: 800, Height: 600})

	if got, want := rs[RegionRight], (Rect{X: 500, Y: 50, Width: 400, Height: 600}); got != want {
		t.Fatalf("right = %v, want %v", got, want)
	}
	if got, want := rs[RegionLeft], (Rect{X: 100, Y: 50, Width: 400, Height: 600}); got != want {
		t.Fatalf("left = %v, want %v", got, want)
	}
}

func TestComputeRegions_Deterministic(t *testing.T) {
	usable := Rect{X: 0, Y: 27, Width: 2559, Height: 1413}
	if ComputeRegions(usable) != ComputeRegions(usable) {
		t.Fatal("expected identical regions for identical input")
	}
}

func TestRegionsMatch(t *testing.T) {
	rs := ComputeRegions(Rect{X: 0, Y: 0, Width: 1000, Height: 800})

	tests := []struct {
		name      string
		win       Rect
		tolerance int
		want      Region
		ok        bool
	}{
		{"exact top left", Rect{X: 0, Y: 0, Width: 500, Height: 400}, 0, RegionTopLeft, true},
		{"exact right", Rect{X: 500, Y: 0, Width: 500, Height: 800}, 0, RegionRight, true},
		{"decorated bottom", Rect{X: 2, Y: 424, Width: 996, Height: 374}, 30, RegionBottom, true},
		{"decorated bottom without tolerance", Rect{X: 2, Y: 424, Width: 996, Height: 374}, 0, 0, false},
		{"floating window", Rect{X: 120, Y: 130, Width: 300, Height: 200}, 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rs.Match(tt.win, tt.tolerance)
			if ok != tt.ok {
				t.Fatalf("Match ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}
