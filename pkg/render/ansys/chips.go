package ansys

import (
	"context"
	"sort"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/modeler"
)

// Wafer display properties shared by every chip box.
var waferColor = [3]uint8{186, 186, 205}

const waferTransparency = 0.2

// renderChips draws, for every chip touched by the rendered elements, the
// ground plane rect and the wafer box. The main chip additionally gets a
// single vacuum box spanning the sample holder heights.
func (r *Renderer) renderChips(ctx context.Context) error {
	chips := make([]string, 0, len(r.chipSubtract))
	for name := range r.chipSubtract {
		chips = append(chips, name)
	}
	sort.Strings(chips)

	for _, chipName := range chips {
		chip := r.design.Chips[chipName]
		origin := chip.Center
		size := chip.Size

		if chipName == design.MainChip {
			// One vacuum box for the whole assembly, centered on main.
			holder := modeler.Vec3{
				X: origin.X,
				Y: origin.Y,
				Z: (chip.SampleHolderTop - chip.SampleHolderBottom) / 2,
			}
			holderSize := modeler.Vec3{
				X: size.X,
				Y: size.Y,
				Z: chip.SampleHolderTop + chip.SampleHolderBottom,
			}
			if _, err := r.mod.DrawBoxCenter(ctx, holder, holderSize,
				modeler.WithName("sample_holder")); err != nil {
				return err
			}
		}

		r.logger.Debug("drawing chip", "chip", chipName, "material", chip.Material)

		plane := chipName + "_plane"
		if _, err := r.mod.DrawRectCenter(ctx, origin, size.X, size.Y,
			modeler.WithName(plane)); err != nil {
			return err
		}

		// A chip with subtract geometry keeps a metallic ground plane.
		if len(r.chipSubtract[chipName]) > 0 {
			r.perfE = append(r.perfE, plane)
		}

		waferCenter := modeler.Vec3{X: origin.X, Y: origin.Y, Z: origin.Z + size.Z/2}
		waferSize := modeler.Vec3{X: size.X, Y: size.Y, Z: -size.Z}
		if _, err := r.mod.DrawBoxCenter(ctx, waferCenter, waferSize,
			modeler.WithName(chipName),
			modeler.WithMaterial(chip.Material),
			modeler.WithColor(waferColor[0], waferColor[1], waferColor[2]),
			modeler.WithTransparency(waferTransparency)); err != nil {
			return err
		}
	}
	return nil
}

// subtractFromGround subtracts, per chip, all accumulated negative shapes
// from the chip's ground plane.
func (r *Renderer) subtractFromGround(ctx context.Context) error {
	chips := make([]string, 0, len(r.chipSubtract))
	for name := range r.chipSubtract {
		chips = append(chips, name)
	}
	sort.Strings(chips)

	for _, chipName := range chips {
		shapes := r.chipSubtract[chipName]
		if len(shapes) == 0 {
			continue
		}
		if err := r.mod.Subtract(ctx, chipName+"_plane", sortedNames(shapes)); err != nil {
			return err
		}
	}
	return nil
}

// metallize assigns the perfect-E boundary to every accumulated surface.
func (r *Renderer) metallize(ctx context.Context) error {
	if len(r.perfE) == 0 {
		return nil
	}
	r.logger.Debug("assigning perfect-E", "surfaces", len(r.perfE))
	return r.mod.AssignPerfectE(ctx, r.perfE)
}
