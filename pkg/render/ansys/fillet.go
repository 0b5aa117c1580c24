package ansys

import (
	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/geometry"
	"github.com/qweave/metalize/pkg/units"
)

// FilletVertices returns the fillet radius and the eligible vertex indices
// for one element, exactly as a render pass would apply them. A zero radius
// means the element is not filleted.
func FilletVertices(d *design.Design, e design.Element) (float64, []int) {
	fradius := units.Round(e.Fillet, filletDigits)
	if fradius <= 0 {
		return 0, nil
	}

	switch e.Kind {
	case design.KindPoly:
		ring := dropClosingRepeat(e.Exterior)
		return fradius, geometry.GoodFilletIndexes(ring, fradius, d.Precision, true)
	default:
		return fradius, geometry.GoodFilletIndexes(e.Points, fradius, d.Precision, false)
	}
}

// FilletSkipped returns the vertex indices a render pass would leave sharp on
// a filleted element: the complement of [FilletVertices] over the element's
// vertex range. The endpoints of open shapes are never fillet candidates and
// are not reported.
func FilletSkipped(d *design.Design, e design.Element) []int {
	fradius, good := FilletVertices(d, e)
	if fradius <= 0 {
		return nil
	}

	ring := e.Points
	closed := false
	if e.Kind == design.KindPoly {
		ring = dropClosingRepeat(e.Exterior)
		closed = true
	}

	eligible := make(map[int]struct{}, len(good))
	for _, i := range good {
		eligible[i] = struct{}{}
	}
	var skipped []int
	for i := range ring {
		if !closed && (i == 0 || i == len(ring)-1) {
			continue
		}
		if _, ok := eligible[i]; !ok {
			skipped = append(skipped, i)
		}
	}
	return skipped
}
