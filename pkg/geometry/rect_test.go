package geometry

import "testing"

func TestIsRectangle(t *testing.T) {
	tests := []struct {
		name string
		ring []Point
		want bool
	}{
		{"plain square", []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, true},
		{"closed ring with repeat", []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}, true},
		{"rectangle", []Point{{-1, -2}, {3, -2}, {3, 5}, {-1, 5}}, true},
		{"rotated square", []Point{{0, 2}, {2, 0}, {4, 2}, {2, 4}}, false},
		{"triangle", []Point{{0, 0}, {4, 0}, {2, 3}}, false},
		{"pentagon", []Point{{0, 0}, {4, 0}, {5, 2}, {2, 4}, {-1, 2}}, false},
		{"degenerate repeated corner", []Point{{0, 0}, {4, 0}, {4, 0}, {0, 4}}, false},
		{"near-rectangle within precision", []Point{{0, 0}, {4, 1e-12}, {4, 4}, {0, 4}}, true},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		if got := IsRectangle(tt.ring, DefaultPrecision); got != tt.want {
			t.Errorf("%s: IsRectangle = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBoundsOf(t *testing.T) {
	b := BoundsOf([]Point{{1, 2}, {-3, 7}, {4, -1}})
	want := Bounds{MinX: -3, MinY: -1, MaxX: 4, MaxY: 7}
	if b != want {
		t.Errorf("BoundsOf = %+v, want %+v", b, want)
	}
	if b.Width() != 7 || b.Height() != 8 {
		t.Errorf("Width/Height = %v/%v, want 7/8", b.Width(), b.Height())
	}
}

func TestTo3D(t *testing.T) {
	v := To3D([]Point{{1, 2}, {3, 4}}, 0.5)
	if len(v) != 2 || v[0] != (Vec3{1, 2, 0.5}) || v[1] != (Vec3{3, 4, 0.5}) {
		t.Errorf("To3D = %v", v)
	}
}
