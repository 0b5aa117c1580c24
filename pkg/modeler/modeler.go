// Package modeler defines the CAD automation boundary.
//
// A Modeler receives the draw calls produced by the renderer: rectangles,
// polylines, boxes, renames, boolean subtraction, sweeps, fillets, and
// perfect-E boundary assignment. Backends live in subpackages:
//
//   - record: captures calls in memory for inspection, JSON export, and tests
//   - script: emits a pyEPR-compatible Python automation script
//
// All lengths are in design units (mm). Draw calls return the final object
// name so callers can reference the object in later boolean operations.
package modeler

import (
	"context"

	"github.com/qweave/metalize/pkg/geometry"
)

// Severity classifies modeler messages.
type Severity int

// Message severities, ordered by weight.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	}
	return "unknown"
}

// Color is an RGB triple in [0, 255].
type Color struct {
	R, G, B uint8
}

// Vec3 is the coordinate type shared with the geometry package.
type Vec3 = geometry.Vec3

// Attributes carry the optional visual and material properties of a draw
// call. The zero value means "backend defaults".
type Attributes struct {
	Name         string  // object name; backends generate one when empty
	Material     string  // material assignment, e.g. "silicon"
	Color        *Color  // display color
	Transparency float64 // 0 (opaque) to 1 (invisible)
	Wireframe    bool
}

// Option mutates draw attributes.
type Option func(*Attributes)

// WithName sets the object name at draw time.
func WithName(name string) Option {
	return func(a *Attributes) { a.Name = name }
}

// WithMaterial assigns a material.
func WithMaterial(material string) Option {
	return func(a *Attributes) { a.Material = material }
}

// WithColor sets the display color.
func WithColor(r, g, b uint8) Option {
	return func(a *Attributes) { a.Color = &Color{R: r, G: g, B: b} }
}

// WithTransparency sets the display transparency in [0, 1].
func WithTransparency(t float64) Option {
	return func(a *Attributes) { a.Transparency = t }
}

// WithWireframe draws the object as wireframe.
func WithWireframe() Option {
	return func(a *Attributes) { a.Wireframe = true }
}

// ApplyOptions folds opts into an Attributes value.
func ApplyOptions(opts []Option) Attributes {
	var a Attributes
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Modeler is the draw-call surface of a CAD modeler session.
//
// Draw methods return the name of the created object. Implementations are
// expected to be used by a single render pass at a time; none of the
// backends in this module synchronize internally.
type Modeler interface {
	// DrawRectCorner draws an axis-aligned rectangle from its corner with
	// extents dx, dy on the plane at height z.
	DrawRectCorner(ctx context.Context, corner Vec3, dx, dy, z float64, opts ...Option) (string, error)

	// DrawRectCenter draws an axis-aligned rectangle centered at center.
	DrawRectCenter(ctx context.Context, center Vec3, dx, dy float64, opts ...Option) (string, error)

	// DrawPolyline draws an open or closed polyline through pts.
	DrawPolyline(ctx context.Context, pts []Vec3, closed bool, opts ...Option) (string, error)

	// DrawBoxCenter draws a box centered at center with the given extents.
	DrawBoxCenter(ctx context.Context, center, size Vec3, opts ...Option) (string, error)

	// Rename changes an object's name and returns the new name.
	Rename(ctx context.Context, oldName, newName string) (string, error)

	// Fillet rounds the listed vertices of a polyline object with radius.
	Fillet(ctx context.Context, radius float64, vertices []int, object string) error

	// Subtract removes the tool objects from the blank object.
	Subtract(ctx context.Context, blank string, tools []string) error

	// SweepAlongPath sweeps the cross-section object along the path object.
	SweepAlongPath(ctx context.Context, section, path string) error

	// AssignPerfectE marks the listed surfaces as perfect electric conductors.
	AssignPerfectE(ctx context.Context, objects []string) error

	// AddMessage posts an informational message to the modeler host.
	AddMessage(ctx context.Context, msg string, severity Severity) error
}
