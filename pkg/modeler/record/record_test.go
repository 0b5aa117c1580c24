package record

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/modeler"
)

func TestRecorderTracksObjects(t *testing.T) {
	ctx := context.Background()
	r := New()

	name, err := r.DrawPolyline(ctx, []modeler.Vec3{{X: 0}, {X: 1}}, false, modeler.WithName("line"))
	if err != nil {
		t.Fatalf("DrawPolyline: %v", err)
	}
	if name != "line" || !r.HasObject("line") {
		t.Errorf("object not tracked: %q", name)
	}

	renamed, err := r.Rename(ctx, "line", "Q1_line")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if renamed != "Q1_line" || r.HasObject("line") || !r.HasObject("Q1_line") {
		t.Error("rename did not move the object")
	}
}

func TestRecorderAutoNames(t *testing.T) {
	ctx := context.Background()
	r := New()

	a, _ := r.DrawPolyline(ctx, []modeler.Vec3{{X: 0}, {X: 1}}, false)
	b, _ := r.DrawPolyline(ctx, []modeler.Vec3{{X: 0}, {X: 2}}, false)
	if a == b || a == "" {
		t.Errorf("auto names should be distinct, got %q and %q", a, b)
	}
}

func TestRecorderDuplicateName(t *testing.T) {
	ctx := context.Background()
	r := New()

	if _, err := r.DrawBoxCenter(ctx, modeler.Vec3{}, modeler.Vec3{X: 1, Y: 1, Z: 1}, modeler.WithName("chip")); err != nil {
		t.Fatalf("DrawBoxCenter: %v", err)
	}
	_, err := r.DrawRectCenter(ctx, modeler.Vec3{}, 1, 1, modeler.WithName("chip"))
	if !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("duplicate name error = %v", err)
	}
}

func TestRecorderSubtractConsumesTools(t *testing.T) {
	ctx := context.Background()
	r := New()

	blank, _ := r.DrawRectCenter(ctx, modeler.Vec3{}, 4, 4, modeler.WithName("plane"))
	tool, _ := r.DrawRectCenter(ctx, modeler.Vec3{}, 1, 1, modeler.WithName("hole"))

	if err := r.Subtract(ctx, blank, []string{tool}); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if r.HasObject("hole") {
		t.Error("tool object should be consumed by subtraction")
	}
	if !r.HasObject("plane") {
		t.Error("blank object should survive subtraction")
	}

	err := r.Subtract(ctx, blank, []string{"hole"})
	if !errors.Is(err, errors.ErrCodeUnknownObject) {
		t.Errorf("subtract of consumed tool = %v, want unknown object", err)
	}
}

func TestRecorderFilletValidation(t *testing.T) {
	ctx := context.Background()
	r := New()

	if err := r.Fillet(ctx, 0.1, []int{1}, "ghost"); !errors.Is(err, errors.ErrCodeUnknownObject) {
		t.Errorf("fillet on missing object = %v", err)
	}

	name, _ := r.DrawPolyline(ctx, []modeler.Vec3{{X: 0}, {X: 1}, {X: 2}}, false)
	if err := r.Fillet(ctx, -1, []int{1}, name); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("negative fillet radius = %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	ctx := context.Background()
	r := New()
	_, _ = r.DrawRectCenter(ctx, modeler.Vec3{X: 1}, 2, 3, modeler.WithName("p"))
	_ = r.AddMessage(ctx, "hello", modeler.SeverityWarning)

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var ops []Op
	if err := json.Unmarshal(buf.Bytes(), &ops); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if len(ops) != 2 || ops[0].Kind != OpRectCenter || ops[1].Level != "warning" {
		t.Errorf("decoded ops = %+v", ops)
	}
}
