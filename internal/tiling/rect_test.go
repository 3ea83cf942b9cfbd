package tiling

import "testing"

func TestRelativePosition(t *testing.T) {
	base := Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}

	tests := []struct {
		name   string
		target Rect
		want   Position
	}{
		{"left neighbour", Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, LeftOf},
		{"right neighbour", Rect{X: 3840, Y: 0, Width: 1280, Height: 1024}, RightOf},
		{"above", Rect{X: 1920, Y: -1080, Width: 1920, Height: 1080}, TopOf},
		{"below", Rect{X: 1920, Y: 1080, Width: 1920, Height: 1080}, BottomOf},
		{"overlapping clone", Rect{X: 2000, Y: 0, Width: 1920, Height: 1080}, PositionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativePosition(base, tt.target); got != tt.want {
				t.Fatalf("RelativePosition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRelativePosition_Symmetry(t *testing.T) {
	rects := []Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 1280, Height: 1024},
		{X: 3200, Y: 200, Width: 800, Height: 600},
		{X: -1024, Y: 300, Width: 1024, Height: 768},
	}

	for i, a := range rects {
		for j, b := range rects {
			if i == j {
				continue
			}
			switch RelativePosition(a, b) {
			case LeftOf:
				if got := RelativePosition(b, a); got != RightOf {
					t.Fatalf("rect %d left of %d but reverse is %v", j, i, got)
				}
			case RightOf:
				if got := RelativePosition(b, a); got != LeftOf {
					t.Fatalf("rect %d right of %d but reverse is %v", j, i, got)
				}
			}
		}
	}
}

func TestGap(t *testing.T) {
	base := Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}
	touching := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	far := Rect{X: -1024, Y: 0, Width: 1024, Height: 768}

	if g := Gap(base, touching, LeftOf); g != 0 {
		t.Fatalf("touching gap = %d, want 0", g)
	}
	if g := Gap(base, far, LeftOf); g != 1920 {
		t.Fatalf("far gap = %d, want 1920", g)
	}
	if g := Gap(base, touching, PositionUnknown); g != -1 {
		t.Fatalf("unknown gap = %d, want -1", g)
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 80, Width: 100, Height: 100}

	if got, want := a.Intersect(b), (Rect{X: 50, Y: 80, Width: 50, Height: 20}); got != want {
		t.Fatalf("Intersect = %v, want %v", got, want)
	}
	if got := a.Intersect(Rect{X: 100, Y: 0, Width: 10, Height: 10}); !got.Empty() {
		t.Fatalf("expected touching rects not to intersect, got %v", got)
	}
}
