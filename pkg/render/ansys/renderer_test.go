package ansys

import (
	"context"
	"reflect"
	"testing"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/geometry"
	"github.com/qweave/metalize/pkg/modeler/record"
)

func chipDesign() *design.Design {
	return &design.Design{
		Name:      "fixture",
		Precision: geometry.DefaultPrecision,
		Chips: map[string]design.Chip{
			"main": {
				Material:           "silicon",
				Size:               geometry.Vec3{X: 9, Y: 6, Z: -0.75},
				SampleHolderTop:    1.2,
				SampleHolderBottom: 1.2,
			},
		},
		Elements: []design.Element{
			{
				Component: 1, Name: "pad", Kind: design.KindPoly, Chip: "main",
				Exterior: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
			},
			{
				Component: 1, Name: "cut", Kind: design.KindPoly, Chip: "main", Subtract: true,
				Exterior: []geometry.Point{{X: -0.2, Y: -0.2}, {X: 1.2, Y: -0.2}, {X: 1.2, Y: 1.2}, {X: -0.2, Y: 1.2}},
			},
			{
				// L-shaped polygon: not a rectangle, fillet applies to all corners.
				Component: 2, Name: "res", Kind: design.KindPoly, Chip: "main", Fillet: 0.01,
				Exterior: []geometry.Point{
					{X: 2, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 2}, {X: 2.5, Y: 2}, {X: 2.5, Y: 1}, {X: 2, Y: 1},
				},
			},
			{
				Component: 2, Name: "feed", Kind: design.KindPath, Chip: "main",
				Width: 0.01, Fillet: 0.09,
				Points: []geometry.Point{{X: -2, Y: 0}, {X: -0.5, Y: 0}, {X: -0.5, Y: 1}},
			},
			{
				Component: 3, Name: "guide", Kind: design.KindPoly, Chip: "main", Helper: true,
				Exterior: []geometry.Point{{X: 4, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 1}, {X: 4, Y: 1}},
			},
		},
	}
}

func kinds(ops []record.Op) []record.OpKind {
	out := make([]record.OpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

func find(ops []record.Op, kind record.OpKind) []record.Op {
	var out []record.Op
	for _, op := range ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func TestRenderDesignFullPass(t *testing.T) {
	rec := record.New()
	r := New(chipDesign(), rec, nil)

	if err := r.RenderDesign(context.Background(), nil); err != nil {
		t.Fatalf("RenderDesign: %v", err)
	}
	ops := rec.Ops()

	if len(ops) == 0 || ops[0].Kind != record.OpMessage {
		t.Fatal("render should start with an informational message")
	}

	// Rectangle fast path: pad drawn as rect and renamed.
	rects := find(ops, record.OpRectCorner)
	if len(rects) != 3 {
		t.Fatalf("rect_corner ops = %d, want 3 (pad, cut, guide)", len(rects))
	}
	if !rec.HasObject("Q1_pad") || !rec.HasObject("Q3_guide") {
		t.Error("renamed rectangle objects missing")
	}

	// The L-shape went through the polyline branch and got a fillet on all
	// six corners.
	fillets := find(ops, record.OpFillet)
	var resFillet *record.Op
	for i := range fillets {
		if fillets[i].Object == "Q2_res" {
			resFillet = &fillets[i]
		}
	}
	if resFillet == nil {
		t.Fatal("no fillet recorded for Q2_res")
	}
	if want := []int{0, 1, 2, 3, 4, 5}; !reflect.DeepEqual(resFillet.Indices, want) {
		t.Errorf("Q2_res fillet indices = %v, want %v", resFillet.Indices, want)
	}

	// The path fillet skips the endpoints.
	var feedFillet *record.Op
	for i := range fillets {
		if fillets[i].Object == "Q2_feed" {
			feedFillet = &fillets[i]
		}
	}
	if feedFillet == nil {
		t.Fatal("no fillet recorded for Q2_feed")
	}
	if want := []int{1}; !reflect.DeepEqual(feedFillet.Indices, want) {
		t.Errorf("Q2_feed fillet indices = %v, want %v", feedFillet.Indices, want)
	}

	// Width sweep: one sweep op along the feed line.
	sweeps := find(ops, record.OpSweep)
	if len(sweeps) != 1 || sweeps[0].Object != "Q2_feed" {
		t.Errorf("sweep ops = %+v, want one along Q2_feed", sweeps)
	}

	// Chips: sample holder, ground plane, wafer box.
	boxes := find(ops, record.OpBoxCenter)
	if len(boxes) != 2 {
		t.Fatalf("box ops = %d, want 2 (sample holder + wafer)", len(boxes))
	}
	if boxes[0].Object != "sample_holder" {
		t.Errorf("first box = %q, want sample_holder", boxes[0].Object)
	}
	if boxes[1].Object != "main" || boxes[1].Attrs == nil || boxes[1].Attrs.Material != "silicon" {
		t.Errorf("wafer box = %+v", boxes[1])
	}
	if boxes[1].Size.Z != 0.75 {
		t.Errorf("wafer height = %v, want 0.75", boxes[1].Size.Z)
	}

	// Ground subtraction consumes the cut shape.
	subs := find(ops, record.OpSubtract)
	var groundSub *record.Op
	for i := range subs {
		if subs[i].Object == "main_plane" {
			groundSub = &subs[i]
		}
	}
	if groundSub == nil {
		t.Fatal("no ground-plane subtraction recorded")
	}
	if want := []string{"Q1_cut"}; !reflect.DeepEqual(groundSub.Targets, want) {
		t.Errorf("ground subtraction targets = %v, want %v", groundSub.Targets, want)
	}

	// Metallization: positive shapes plus the ground plane, in pass order.
	// The subtract row and the helper row stay out.
	perfE := find(ops, record.OpPerfectE)
	if len(perfE) != 1 {
		t.Fatalf("perfect_e ops = %d, want 1", len(perfE))
	}
	want := []string{"Q1_pad", "Q2_res", "Q2_feed", "main_plane"}
	if !reflect.DeepEqual(perfE[0].Targets, want) {
		t.Errorf("perfect-E surfaces = %v, want %v", perfE[0].Targets, want)
	}
}

func TestRenderDesignSelection(t *testing.T) {
	rec := record.New()
	r := New(chipDesign(), rec, nil)

	if err := r.RenderDesign(context.Background(), []int{2}); err != nil {
		t.Fatalf("RenderDesign: %v", err)
	}

	if rec.HasObject("Q1_pad") {
		t.Error("component 1 should be filtered out")
	}
	if !rec.HasObject("Q2_res") || !rec.HasObject("Q2_feed") {
		t.Error("component 2 should be rendered")
	}

	// No subtract rows selected: the plane keeps nothing to subtract and
	// stays off the perfect-E list.
	perfE := find(rec.Ops(), record.OpPerfectE)
	if len(perfE) != 1 {
		t.Fatalf("perfect_e ops = %d, want 1", len(perfE))
	}
	for _, name := range perfE[0].Targets {
		if name == "main_plane" {
			t.Error("plane should not be metallized without subtract geometry")
		}
	}
}

func TestRenderRectangleFillet(t *testing.T) {
	d := chipDesign()
	d.Elements = []design.Element{{
		Component: 4, Name: "pad", Kind: design.KindPoly, Chip: "main", Fillet: 0.05,
		Exterior: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
	}}

	rec := record.New()
	if err := New(d, rec, nil).RenderDesign(context.Background(), nil); err != nil {
		t.Fatalf("RenderDesign: %v", err)
	}
	ops := rec.Ops()

	// The rectangle primitive still rounds its corners.
	if len(find(ops, record.OpRectCorner)) != 1 {
		t.Fatal("pad should go through the rectangle fast path")
	}
	fillets := find(ops, record.OpFillet)
	if len(fillets) != 1 || fillets[0].Object != "Q4_pad" {
		t.Fatalf("fillet ops = %+v, want one on Q4_pad", fillets)
	}
	if want := []int{0, 1, 2, 3}; !reflect.DeepEqual(fillets[0].Indices, want) {
		t.Errorf("rectangle fillet indices = %v, want %v", fillets[0].Indices, want)
	}
	if fillets[0].Radius != 0.05 {
		t.Errorf("fillet radius = %v, want 0.05", fillets[0].Radius)
	}
}

func TestFilletVerticesRectangle(t *testing.T) {
	d := chipDesign()
	e := design.Element{
		Component: 4, Name: "pad", Kind: design.KindPoly, Chip: "main", Fillet: 0.05,
		Exterior: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
	}

	radius, good := FilletVertices(d, e)
	if radius != 0.05 {
		t.Errorf("radius = %v, want 0.05", radius)
	}
	if want := []int{0, 1, 2, 3}; !reflect.DeepEqual(good, want) {
		t.Errorf("eligible vertices = %v, want %v", good, want)
	}
	if skipped := FilletSkipped(d, e); len(skipped) != 0 {
		t.Errorf("skipped vertices = %v, want none", skipped)
	}

	// A radius wider than half the edges excludes every corner.
	e.Fillet = 0.6
	if _, good := FilletVertices(d, e); len(good) != 0 {
		t.Errorf("oversized radius eligible vertices = %v, want none", good)
	}
}

func TestRenderElementPolyInteriors(t *testing.T) {
	d := chipDesign()
	d.Elements = []design.Element{{
		Component: 7, Name: "washer", Kind: design.KindPoly, Chip: "main",
		Exterior: []geometry.Point{
			{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 1, Y: 3}, {X: 0, Y: 2},
		},
		Interiors: [][]geometry.Point{
			{{X: 0.5, Y: 0.5}, {X: 1.5, Y: 0.5}, {X: 1.5, Y: 1.5}, {X: 0.5, Y: 1.5}},
		},
	}}

	rec := record.New()
	if err := New(d, rec, nil).RenderDesign(context.Background(), nil); err != nil {
		t.Fatalf("RenderDesign: %v", err)
	}

	subs := find(rec.Ops(), record.OpSubtract)
	if len(subs) != 1 || subs[0].Object != "Q7_washer" || len(subs[0].Targets) != 1 {
		t.Errorf("interior subtraction = %+v", subs)
	}
}

func TestRenderDesignInvalid(t *testing.T) {
	d := chipDesign()
	d.Elements[0].Chip = "nowhere"
	if err := New(d, record.New(), nil).RenderDesign(context.Background(), nil); err == nil {
		t.Error("render of invalid design should fail")
	}
}

func TestRenderDesignCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(chipDesign(), record.New(), nil).RenderDesign(ctx, nil)
	if err == nil {
		t.Error("canceled context should abort the pass")
	}
}

func TestDropClosingRepeat(t *testing.T) {
	ring := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}}
	if got := dropClosingRepeat(ring); len(got) != 3 {
		t.Errorf("dropClosingRepeat = %d vertices, want 3", len(got))
	}
	open := ring[:3]
	if got := dropClosingRepeat(open); len(got) != 3 {
		t.Errorf("dropClosingRepeat on open ring = %d vertices, want 3", len(got))
	}
}
