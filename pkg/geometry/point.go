// Package geometry provides the planar primitives used by the renderer:
// 2-D points, 3-D vectors, the fillet-eligibility filter for polylines and
// polygons, and the axis-aligned rectangle test.
//
// All predicates that compare lengths do so after rounding to a fixed number
// of decimal digits, so results are stable against floating-point
// order-of-operations differences between producers of the same design.
package geometry

import "math"

// Point is a 2-D vertex in design units (mm).
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Vec3 is a 3-D coordinate in design units (mm).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Dist returns the euclidean distance between p and q.
func Dist(p, q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// To3D lifts 2-D points onto the plane at height z.
func To3D(pts []Point, z float64) []Vec3 {
	out := make([]Vec3, len(pts))
	for i, p := range pts {
		out[i] = Vec3{X: p.X, Y: p.Y, Z: z}
	}
	return out
}

// Scale returns a copy of pts with both coordinates multiplied by f.
func Scale(pts []Point, f float64) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: p.X * f, Y: p.Y * f}
	}
	return out
}
