// Package design defines the tabular design database consumed by the
// renderer: chips, and per-element rows grouped into poly, path, and
// junction tables.
//
// A design is typically loaded from a TOML file (see [Load]) or from a
// storage backend (see the store subpackage). All lengths normalize to
// millimeters on load; the in-memory model carries plain float64 values.
package design

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/geometry"
)

// ElementKind names a design table.
type ElementKind string

// The element tables of a design.
const (
	KindPoly     ElementKind = "poly"
	KindPath     ElementKind = "path"
	KindJunction ElementKind = "junction"
)

// Kinds lists the element tables in render order.
var Kinds = []ElementKind{KindPoly, KindPath, KindJunction}

// Defaults for junction rows, matching electromagnetic-analysis conventions:
// capacitance and resistance must stay zero for the energy-participation
// analysis downstream.
const (
	DefaultInductance  = 10.0 // nH
	DefaultMeshMax     = 0.007
	DefaultMeshMaxExpr = "7um"
)

// MainChip is the chip that receives the vacuum sample-holder box.
const MainChip = "main"

// Design is a complete planar-circuit design.
type Design struct {
	Name      string
	Precision int // decimal digits for geometric comparisons
	Chips     map[string]Chip
	Elements  []Element
}

// Chip describes one wafer of the chip stack. Lengths are in mm.
type Chip struct {
	Material           string
	Center             geometry.Vec3
	Size               geometry.Vec3 // z is the wafer thickness (typically negative, growing downward)
	SampleHolderTop    float64
	SampleHolderBottom float64
}

// Junction carries the lumped-element parameters of a junction row.
type Junction struct {
	Inductance  float64 // nH
	Capacitance float64 // fF, must be 0
	Resistance  float64 // Ohm, must be 0
	MeshMax     float64 // mm, maximum mesh length over the junction
}

// Element is one row of a design table. Lengths are in mm.
type Element struct {
	Component int
	Name      string
	Kind      ElementKind
	Chip      string
	Fillet    float64
	Width     float64
	Subtract  bool
	Helper    bool

	// Poly geometry
	Exterior  []geometry.Point
	Interiors [][]geometry.Point

	// Path and junction geometry
	Points []geometry.Point

	Junction *Junction
}

var (
	invalidChars = regexp.MustCompile(`[^0-9a-zA-Z_]`)
	leadingJunk  = regexp.MustCompile(`^[^a-zA-Z_]+`)
)

// CleanName derives a CAD-safe identifier from an arbitrary element name:
// characters outside [0-9a-zA-Z_] are dropped, then any leading run that is
// neither a letter nor an underscore.
func CleanName(name string) string {
	name = invalidChars.ReplaceAllString(name, "")
	return leadingJunk.ReplaceAllString(name, "")
}

// ObjectName returns the modeler object name for the element,
// Q<component>_<cleaned element name>.
func (e Element) ObjectName() string {
	return "Q" + strconv.Itoa(e.Component) + "_" + CleanName(e.Name)
}

// Ring returns the element's defining vertex ring: the exterior for poly
// rows, the point sequence otherwise.
func (e Element) Ring() []geometry.Point {
	if e.Kind == KindPoly {
		return e.Exterior
	}
	return e.Points
}

// ChipZ returns the z height of the named chip's surface.
func (d *Design) ChipZ(chip string) (float64, error) {
	c, ok := d.Chips[chip]
	if !ok {
		return 0, errors.New(errors.ErrCodeUnknownChip, "design has no chip %q", chip)
	}
	return c.Center.Z, nil
}

// Table returns the elements of one table, preserving row order.
func (d *Design) Table(kind ElementKind) []Element {
	var out []Element
	for _, e := range d.Elements {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Components returns the sorted distinct component ids in the design.
func (d *Design) Components() []int {
	seen := map[int]struct{}{}
	for _, e := range d.Elements {
		seen[e.Component] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Validate checks structural consistency of the design: a valid name, known
// chips on every row, legal geometry per table, and junction parameter
// constraints.
func (d *Design) Validate() error {
	if err := errors.ValidateDesignName(d.Name); err != nil {
		return err
	}
	if d.Precision <= 0 {
		return errors.New(errors.ErrCodeInvalidDesign, "precision must be positive, got %d", d.Precision)
	}
	if len(d.Chips) == 0 {
		return errors.New(errors.ErrCodeInvalidDesign, "design has no chips")
	}

	for i, e := range d.Elements {
		if e.Name == "" {
			return errors.New(errors.ErrCodeInvalidDesign, "element %d has no name", i)
		}
		if CleanName(e.Name) == "" {
			return errors.New(errors.ErrCodeInvalidName, "element name %q leaves no valid identifier", e.Name)
		}
		if _, ok := d.Chips[e.Chip]; !ok {
			return errors.New(errors.ErrCodeUnknownChip, "element %q references unknown chip %q", e.Name, e.Chip)
		}
		if e.Fillet < 0 {
			return errors.New(errors.ErrCodeInvalidGeometry, "element %q has negative fillet radius", e.Name)
		}
		if e.Width < 0 {
			return errors.New(errors.ErrCodeInvalidGeometry, "element %q has negative width", e.Name)
		}

		switch e.Kind {
		case KindPoly:
			if len(e.Exterior) < 3 {
				return errors.New(errors.ErrCodeInvalidGeometry,
					"poly %q needs at least 3 exterior vertices, got %d", e.Name, len(e.Exterior))
			}
			for j, ring := range e.Interiors {
				if len(ring) < 3 {
					return errors.New(errors.ErrCodeInvalidGeometry,
						"poly %q interior %d needs at least 3 vertices, got %d", e.Name, j, len(ring))
				}
			}
		case KindPath, KindJunction:
			if len(e.Points) < 2 {
				return errors.New(errors.ErrCodeInvalidGeometry,
					"%s %q needs at least 2 points, got %d", e.Kind, e.Name, len(e.Points))
			}
		default:
			return errors.New(errors.ErrCodeInvalidDesign, "element %q has unknown kind %q", e.Name, e.Kind)
		}

		if e.Kind == KindJunction && e.Junction != nil {
			if e.Junction.Capacitance != 0 {
				return errors.New(errors.ErrCodeInvalidDesign,
					"junction %q capacitance must be 0, got %g", e.Name, e.Junction.Capacitance)
			}
			if e.Junction.Resistance != 0 {
				return errors.New(errors.ErrCodeInvalidDesign,
					"junction %q resistance must be 0, got %g", e.Name, e.Junction.Resistance)
			}
		}
	}

	return nil
}
