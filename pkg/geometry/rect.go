package geometry

import "github.com/qweave/metalize/pkg/units"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the x extent of the box.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the y extent of the box.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// BoundsOf computes the bounding box of pts.
// Returns the zero Bounds for an empty slice.
func BoundsOf(pts []Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}

// IsRectangle reports whether the closed exterior ring is an axis-aligned
// rectangle. The ring may or may not repeat its first vertex at the end;
// after dropping the repeat it must have exactly four corners, each lying on
// a corner of its own bounding box. Coordinates are compared after rounding
// to precision decimal digits.
func IsRectangle(ring []Point, precision int) bool {
	pts := ring
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) != 4 {
		return false
	}

	b := BoundsOf(pts)
	for _, p := range pts {
		x := units.Round(p.X, precision)
		y := units.Round(p.Y, precision)
		onX := x == units.Round(b.MinX, precision) || x == units.Round(b.MaxX, precision)
		onY := y == units.Round(b.MinY, precision) || y == units.Round(b.MaxY, precision)
		if !onX || !onY {
			return false
		}
	}

	// Four corner points on the bounding box still admit degenerate repeats
	// (e.g. two identical corners). Require all four box corners present.
	corners := map[Point]bool{}
	for _, p := range pts {
		corners[Point{X: units.Round(p.X, precision), Y: units.Round(p.Y, precision)}] = true
	}
	return len(corners) == 4
}
