package script

import (
	"context"
	"strings"
	"testing"

	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/modeler"
)

func TestPreamble(t *testing.T) {
	s := string(New().Bytes())
	for _, want := range []string{"import pyEPR as epr", "pinfo = epr.ProjectInfo()", "modeler = pinfo.design.modeler"} {
		if !strings.Contains(s, want) {
			t.Errorf("preamble missing %q", want)
		}
	}
}

func TestDrawCallsEmitPython(t *testing.T) {
	ctx := context.Background()
	w := New()

	name, err := w.DrawPolyline(ctx,
		[]modeler.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}},
		true, modeler.WithName("Q1_pad"))
	if err != nil {
		t.Fatalf("DrawPolyline: %v", err)
	}
	if err := w.Fillet(ctx, 0.05, []int{0, 2}, name); err != nil {
		t.Fatalf("Fillet: %v", err)
	}

	s := string(w.Bytes())
	if !strings.Contains(s, "modeler.draw_polyline([[0, 0, 0], [1, 0, 0], [1, 1, 0]], closed=True, name='Q1_pad'") {
		t.Errorf("polyline call missing or malformed:\n%s", s)
	}
	if !strings.Contains(s, "modeler._fillet(0.05, [0, 2], obj1)") {
		t.Errorf("fillet call missing:\n%s", s)
	}
}

func TestRenameRebindsVariable(t *testing.T) {
	ctx := context.Background()
	w := New()

	name, _ := w.DrawRectCenter(ctx, modeler.Vec3{}, 2, 2, modeler.WithName("tmp"))
	if _, err := w.Rename(ctx, name, "main_plane"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := w.Subtract(ctx, "main_plane", nil); err != nil {
		t.Fatalf("Subtract after rename: %v", err)
	}
	if _, err := w.Rename(ctx, "tmp", "x"); !errors.Is(err, errors.ErrCodeUnknownObject) {
		t.Errorf("rename of stale name = %v", err)
	}

	s := string(w.Bytes())
	if !strings.Contains(s, ".rename('main_plane')") {
		t.Errorf("rename call missing:\n%s", s)
	}
}

func TestSweepConsumesSection(t *testing.T) {
	ctx := context.Background()
	w := New()

	path, _ := w.DrawPolyline(ctx, []modeler.Vec3{{X: 0}, {X: 1}}, false, modeler.WithName("line"))
	section, _ := w.DrawPolyline(ctx, []modeler.Vec3{{Y: -0.1}, {Y: 0.1}}, false)

	if err := w.SweepAlongPath(ctx, section, path); err != nil {
		t.Fatalf("SweepAlongPath: %v", err)
	}
	if err := w.SweepAlongPath(ctx, section, path); !errors.Is(err, errors.ErrCodeUnknownObject) {
		t.Errorf("second sweep with consumed section = %v", err)
	}
}

func TestAssignPerfectE(t *testing.T) {
	ctx := context.Background()
	w := New()

	_, _ = w.DrawRectCenter(ctx, modeler.Vec3{}, 1, 1, modeler.WithName("a"))
	_, _ = w.DrawRectCenter(ctx, modeler.Vec3{}, 1, 1, modeler.WithName("b"))

	if err := w.AssignPerfectE(ctx, []string{"a", "b"}); err != nil {
		t.Fatalf("AssignPerfectE: %v", err)
	}
	if !strings.Contains(string(w.Bytes()), "modeler.assign_perfect_E(['a', 'b'])") {
		t.Error("perfect-E call missing")
	}

	if err := w.AssignPerfectE(ctx, nil); err != nil {
		t.Errorf("empty assignment should be a no-op, got %v", err)
	}
}

func TestMessageSeverity(t *testing.T) {
	w := New()
	_ = w.AddMessage(context.Background(), "it's done", modeler.SeverityError)
	if !strings.Contains(string(w.Bytes()), `pinfo.design.add_message('it\'s done', 2)`) {
		t.Errorf("message call missing:\n%s", string(w.Bytes()))
	}
}
