package tiling

import "testing"

func TestUsableArea(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	tests := []struct {
		name   string
		bounds Rect
		system []Rect
		want   Rect
	}{
		{
			name:   "no system windows",
			bounds: monitor,
			want:   monitor,
		},
		{
			name:   "top dock",
			bounds: monitor,
			system: []Rect{{X: 0, Y: 0, Width: 1920, Height: 30}},
			want:   Rect{X: 0, Y: 30, Width: 1920, Height: 1050},
		},
		{
			name:   "bottom panel",
			bounds: monitor,
			system: []Rect{{X: 0, Y: 1040, Width: 1920, Height: 40}},
			want:   Rect{X: 0, Y: 0, Width: 1920, Height: 1040},
		},
		{
			name:   "top and bottom",
			bounds: monitor,
			system: []Rect{
				{X: 0, Y: 1040, Width: 1920, Height: 40},
				{X: 0, Y: 0, Width: 1920, Height: 24},
			},
			want: Rect{X: 0, Y: 24, Width: 1920, Height: 1016},
		},
		{
			name:   "stacked top bars accumulate",
			bounds: monitor,
			system: []Rect{
				{X: 0, Y: 0, Width: 1920, Height: 24},
				{X: 0, Y: 24, Width: 1920, Height: 32},
			},
			want: Rect{X: 0, Y: 56, Width: 1920, Height: 1024},
		},
		{
			name:   "full-screen overlay ignored",
			bounds: monitor,
			system: []Rect{{X: 0, Y: 0, Width: 1920, Height: 1080}},
			want:   monitor,
		},
		{
			name:   "upper half measured from the monitor origin",
			bounds: Rect{X: 0, Y: 1080, Width: 1920, Height: 1080},
			system: []Rect{{X: 0, Y: 1080, Width: 1920, Height: 30}},
			want:   Rect{X: 0, Y: 1110, Width: 1920, Height: 1050},
		},
		{
			name:   "never shrinks below zero",
			bounds: Rect{X: 0, Y: 0, Width: 100, Height: 100},
			system: []Rect{
				{X: 0, Y: 0, Width: 100, Height: 60},
				{X: 0, Y: 0, Width: 100, Height: 60},
			},
			want: Rect{X: 0, Y: 100, Width: 100, Height: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UsableArea(tt.bounds, tt.system)
			if got != tt.want {
				t.Fatalf("UsableArea = %v, want %v", got, tt.want)
			}
			if !tt.bounds.Contains(got) {
				t.Fatalf("usable area %v escapes bounds %v", got, tt.bounds)
			}
		})
	}
}

// A left-hand side dock is handled like a top bar: the heuristic only knows
// about the vertical axis, so the whole dock height is removed from the top.
func TestUsableArea_SideDockIsCharacterizedNotSolved(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	sideDock := Rect{X: 0, Y: 0, Width: 64, Height: 1000}

	got := UsableArea(monitor, []Rect{sideDock})
	want := Rect{X: 0, Y: 1000, Width: 1920, Height: 80}
	if got != want {
		t.Fatalf("UsableArea = %v, want %v", got, want)
	}
}
