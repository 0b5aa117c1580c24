// Package ansys renders a planar-circuit design into draw calls against a
// modeler backend.
//
// Rendering is a sequential pass over the design tables:
//
//	RenderDesign
//	  └─ renderTables        one table at a time (poly, path, junction)
//	       └─ renderComponents
//	            └─ renderElementPoly / renderElementPath
//	  └─ renderChips         ground planes, wafers, sample holder
//	  └─ subtractFromGround  boolean-subtract negative shapes per chip
//	  └─ metallize           assign perfect-E to accumulated surfaces
//
// Two accumulators live for the duration of one pass: the per-chip set of
// shape names to subtract from the ground plane, and the ordered list of
// shape names to mark as perfect electric conductors. Errors from the
// modeler backend propagate wrapped; there is no retry.
package ansys

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/geometry"
	"github.com/qweave/metalize/pkg/modeler"
	"github.com/qweave/metalize/pkg/units"
)

// filletDigits is the number of decimal digits the fillet radius is rounded
// to before eligibility filtering and drawing.
const filletDigits = 7

// Renderer drives one render pass of a design against a modeler backend.
// A Renderer is single-use: create one per pass.
type Renderer struct {
	design *design.Design
	mod    modeler.Modeler
	logger *log.Logger

	// Pass accumulators. chipSubtract gains an entry for every chip touched
	// by a rendered element, even when the subtract set stays empty, so
	// renderChips knows which wafers to draw.
	chipSubtract map[string]map[string]struct{}
	perfE        []string
}

// New creates a renderer for the given design and backend.
// If logger is nil, the default logger is used.
func New(d *design.Design, m modeler.Modeler, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{
		design:       d,
		mod:          m,
		logger:       logger,
		chipSubtract: make(map[string]map[string]struct{}),
	}
}

// RenderDesign renders the components in selection, then the chips they sit
// on, then performs ground subtraction and metallization. An empty selection
// renders every component.
func (r *Renderer) RenderDesign(ctx context.Context, selection []int) error {
	if err := r.design.Validate(); err != nil {
		return err
	}

	msg := fmt.Sprintf("rendering design %s", r.design.Name)
	if err := r.mod.AddMessage(ctx, msg, modeler.SeverityInfo); err != nil {
		return errors.Wrap(errors.ErrCodeModeler, err, "add message")
	}

	if err := r.renderTables(ctx, selection); err != nil {
		return err
	}
	if err := r.renderChips(ctx); err != nil {
		return err
	}
	if err := r.subtractFromGround(ctx); err != nil {
		return err
	}
	return r.metallize(ctx)
}

// renderTables renders the design one table at a time.
func (r *Renderer) renderTables(ctx context.Context, selection []int) error {
	for _, kind := range design.Kinds {
		if err := r.renderComponents(ctx, kind, selection); err != nil {
			return err
		}
	}
	return nil
}

// renderComponents renders the rows of one table, optionally restricted to
// the selected component ids.
func (r *Renderer) renderComponents(ctx context.Context, kind design.ElementKind, selection []int) error {
	selected := make(map[int]struct{}, len(selection))
	for _, id := range selection {
		selected[id] = struct{}{}
	}

	for _, e := range r.design.Table(kind) {
		if len(selected) > 0 {
			if _, ok := selected[e.Component]; !ok {
				continue
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.renderElement(ctx, e); err != nil {
			return fmt.Errorf("render %s %s: %w", e.Kind, e.ObjectName(), err)
		}
	}
	return nil
}

// renderElement dispatches one row on its table kind. Junction rows share
// the path branch: their geometry is an open line.
func (r *Renderer) renderElement(ctx context.Context, e design.Element) error {
	switch e.Kind {
	case design.KindPoly:
		return r.renderElementPoly(ctx, e)
	case design.KindPath, design.KindJunction:
		return r.renderElementPath(ctx, e)
	}
	return errors.New(errors.ErrCodeInvalidDesign, "unknown element kind %q", e.Kind)
}

// renderElementPoly draws a closed polygon row. Axis-aligned rectangles use
// the rectangle primitive; anything else becomes a closed polyline.
// Interior rings are drawn separately and subtracted as holes.
func (r *Renderer) renderElementPoly(ctx context.Context, e design.Element) error {
	name := e.ObjectName()
	z, err := r.design.ChipZ(e.Chip)
	if err != nil {
		return err
	}

	ring := dropClosingRepeat(e.Exterior)
	fradius := units.Round(e.Fillet, filletDigits)

	if geometry.IsRectangle(ring, r.design.Precision) {
		r.logger.Debug("drawing rectangle", "name", name)
		b := geometry.BoundsOf(ring)
		corner := modeler.Vec3{X: b.MinX, Y: b.MinY, Z: z}
		drawn, err := r.mod.DrawRectCorner(ctx, corner, b.Width(), b.Height(), z)
		if err != nil {
			return err
		}
		if _, err := r.mod.Rename(ctx, drawn, name); err != nil {
			return err
		}
	} else {
		r.logger.Debug("drawing polygon", "name", name, "vertices", len(ring))
		drawn, err := r.mod.DrawPolyline(ctx, geometry.To3D(ring, z), true)
		if err != nil {
			return err
		}
		if _, err := r.mod.Rename(ctx, drawn, name); err != nil {
			return err
		}
	}

	// Fillets apply to both branches: a rectangle primitive rounds its
	// corners the same way a closed polyline does.
	if fradius > 0 {
		idxs := geometry.GoodFilletIndexes(ring, fradius, r.design.Precision, true)
		if len(idxs) > 0 {
			if err := r.mod.Fillet(ctx, fradius, idxs, name); err != nil {
				return err
			}
		}
	}

	// Interior rings become holes.
	for _, interior := range e.Interiors {
		hole := dropClosingRepeat(interior)
		inner, err := r.mod.DrawPolyline(ctx, geometry.To3D(hole, z), true)
		if err != nil {
			return err
		}
		if err := r.mod.Subtract(ctx, name, []string{inner}); err != nil {
			return err
		}
	}

	r.bookkeep(e, name, true)
	return nil
}

// renderElementPath draws an open polyline row, fillets eligible interior
// vertices, and sweeps a perpendicular cross-section along the path when the
// row has a nonzero width.
func (r *Renderer) renderElementPath(ctx context.Context, e design.Element) error {
	name := e.ObjectName()
	z, err := r.design.ChipZ(e.Chip)
	if err != nil {
		return err
	}

	pts := e.Points
	fradius := units.Round(e.Fillet, filletDigits)

	r.logger.Debug("drawing path", "name", name, "points", len(pts), "width", e.Width)

	drawn, err := r.mod.DrawPolyline(ctx, geometry.To3D(pts, z), false)
	if err != nil {
		return err
	}
	if _, err := r.mod.Rename(ctx, drawn, name); err != nil {
		return err
	}

	if fradius > 0 {
		idxs := geometry.GoodFilletIndexes(pts, fradius, r.design.Precision, false)
		if len(idxs) > 0 {
			if err := r.mod.Fillet(ctx, fradius, idxs, name); err != nil {
				return err
			}
		}
	}

	if e.Width > 0 {
		if err := r.sweepWidth(ctx, e, name, z); err != nil {
			return err
		}
	}

	r.bookkeep(e, name, e.Width > 0)
	return nil
}

// sweepWidth gives a path its width: a short cross-section perpendicular to
// the first segment, centered on the first vertex, swept along the path.
func (r *Renderer) sweepWidth(ctx context.Context, e design.Element, path string, z float64) error {
	p0, p1 := e.Points[0], e.Points[1]
	seg := math.Hypot(p1.X-p0.X, p1.Y-p0.Y)
	if seg == 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "zero-length first segment on %s", path)
	}

	half := e.Width / (2 * seg)
	a := modeler.Vec3{X: p0.X + half*(p0.Y-p1.Y), Y: p0.Y + half*(p1.X-p0.X), Z: z}
	b := modeler.Vec3{X: p0.X + half*(p1.Y-p0.Y), Y: p0.Y + half*(p0.X-p1.X), Z: z}

	section, err := r.mod.DrawPolyline(ctx, []modeler.Vec3{a, b}, false)
	if err != nil {
		return err
	}
	return r.mod.SweepAlongPath(ctx, section, path)
}

// bookkeep updates the pass accumulators for one rendered element.
// metalOK gates the perfect-E list: polys always qualify, paths only when
// they have a width (an unswept line has no surface to metallize).
func (r *Renderer) bookkeep(e design.Element, name string, metalOK bool) {
	if _, ok := r.chipSubtract[e.Chip]; !ok {
		r.chipSubtract[e.Chip] = make(map[string]struct{})
	}
	if e.Subtract {
		r.chipSubtract[e.Chip][name] = struct{}{}
	}
	if metalOK && !e.Subtract && !e.Helper {
		r.perfE = append(r.perfE, name)
	}
}

// dropClosingRepeat strips a duplicated closing vertex from a ring, so
// fillet indices and draw calls agree on vertex numbering.
func dropClosingRepeat(ring []geometry.Point) []geometry.Point {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}

// sortedNames returns the keys of a string set in sorted order.
func sortedNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
