// Package script implements a modeler backend that emits a Python
// automation script against the pyEPR HFSS modeler API.
//
// The generated script assumes a live pyEPR session:
//
//	import pyEPR as epr
//	pinfo = epr.ProjectInfo()
//	modeler = pinfo.design.modeler
//
// and then issues one modeler call per draw call received from the
// renderer. Running the script inside that session reproduces the design in
// Ansys. Object identity is tracked on the Go side so renames and boolean
// operations reference the right Python variables.
package script

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/modeler"
)

// Writer is a modeler backend that appends Python statements to a buffer.
// Call Bytes (or WriteTo) after the render pass to obtain the script.
type Writer struct {
	buf     strings.Builder
	objects map[string]string // object name -> python variable
	varID   int
	autoID  int
	calls   int
}

// New creates a script writer with the session preamble already emitted.
func New() *Writer {
	w := &Writer{objects: make(map[string]string)}
	w.line("# Generated by metalize. Requires a live pyEPR session.")
	w.line("import pyEPR as epr")
	w.line("")
	w.line("pinfo = epr.ProjectInfo()")
	w.line("modeler = pinfo.design.modeler")
	w.line("")
	return w
}

// Bytes returns the script accumulated so far.
func (w *Writer) Bytes() []byte { return []byte(w.buf.String()) }

// CallCount returns the number of modeler calls emitted so far.
func (w *Writer) CallCount() int { return w.calls }

// WriteTo writes the script to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	n, err := io.WriteString(out, w.buf.String())
	return int64(n), err
}

func (w *Writer) line(format string, args ...any) {
	fmt.Fprintf(&w.buf, format+"\n", args...)
}

// call emits one modeler statement and counts it.
func (w *Writer) call(format string, args ...any) {
	w.calls++
	w.line(format, args...)
}

func (w *Writer) newVar() string {
	w.varID++
	return "obj" + strconv.Itoa(w.varID)
}

func (w *Writer) register(a modeler.Attributes, prefix string) (name, pyvar string, err error) {
	name = a.Name
	if name == "" {
		w.autoID++
		name = prefix + strconv.Itoa(w.autoID)
	}
	if _, dup := w.objects[name]; dup {
		return "", "", errors.New(errors.ErrCodeDuplicateName, "object %q already exists", name)
	}
	pyvar = w.newVar()
	w.objects[name] = pyvar
	return name, pyvar, nil
}

func (w *Writer) lookup(name string) (string, error) {
	pyvar, ok := w.objects[name]
	if !ok {
		return "", errors.New(errors.ErrCodeUnknownObject, "no object %q", name)
	}
	return pyvar, nil
}

// kwargs renders the attribute keyword arguments accepted by the pyEPR draw
// helpers. The name is always passed so the Ansys object matches the Go-side
// identity.
func kwargs(name string, a modeler.Attributes) string {
	parts := []string{fmt.Sprintf("name=%s", pyStr(name))}
	if a.Material != "" {
		parts = append(parts, fmt.Sprintf("material=%s", pyStr(a.Material)))
	}
	if a.Color != nil {
		parts = append(parts, fmt.Sprintf("color=(%d, %d, %d)", a.Color.R, a.Color.G, a.Color.B))
	}
	parts = append(parts, fmt.Sprintf("transparency=%s", pyFloat(a.Transparency)))
	if a.Wireframe {
		parts = append(parts, "wireframe=True")
	}
	return strings.Join(parts, ", ")
}

func pyStr(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

func pyFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func pyVec(v modeler.Vec3) string {
	return fmt.Sprintf("[%s, %s, %s]", pyFloat(v.X), pyFloat(v.Y), pyFloat(v.Z))
}

func pyPoints(pts []modeler.Vec3) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = pyVec(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pyInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pyStrs(xs []string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = pyStr(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DrawRectCorner emits modeler.draw_rect_corner.
func (w *Writer) DrawRectCorner(ctx context.Context, corner modeler.Vec3, dx, dy, z float64, opts ...modeler.Option) (string, error) {
	a := modeler.ApplyOptions(opts)
	name, pyvar, err := w.register(a, "rect")
	if err != nil {
		return "", err
	}
	w.call("%s = modeler.draw_rect_corner(%s, %s, %s, %s, %s)",
		pyvar, pyVec(corner), pyFloat(dx), pyFloat(dy), pyFloat(z), kwargs(name, a))
	return name, nil
}

// DrawRectCenter emits modeler.draw_rect_center.
func (w *Writer) DrawRectCenter(ctx context.Context, center modeler.Vec3, dx, dy float64, opts ...modeler.Option) (string, error) {
	a := modeler.ApplyOptions(opts)
	name, pyvar, err := w.register(a, "rect")
	if err != nil {
		return "", err
	}
	w.call("%s = modeler.draw_rect_center(%s, x_size=%s, y_size=%s, %s)",
		pyvar, pyVec(center), pyFloat(dx), pyFloat(dy), kwargs(name, a))
	return name, nil
}

// DrawPolyline emits modeler.draw_polyline.
func (w *Writer) DrawPolyline(ctx context.Context, pts []modeler.Vec3, closed bool, opts ...modeler.Option) (string, error) {
	if len(pts) < 2 {
		return "", errors.New(errors.ErrCodeInvalidGeometry, "polyline needs at least 2 points, got %d", len(pts))
	}
	a := modeler.ApplyOptions(opts)
	name, pyvar, err := w.register(a, "poly")
	if err != nil {
		return "", err
	}
	pyClosed := "False"
	if closed {
		pyClosed = "True"
	}
	w.call("%s = modeler.draw_polyline(%s, closed=%s, %s)",
		pyvar, pyPoints(pts), pyClosed, kwargs(name, a))
	return name, nil
}

// DrawBoxCenter emits modeler.draw_box_center.
func (w *Writer) DrawBoxCenter(ctx context.Context, center, size modeler.Vec3, opts ...modeler.Option) (string, error) {
	a := modeler.ApplyOptions(opts)
	name, pyvar, err := w.register(a, "box")
	if err != nil {
		return "", err
	}
	w.call("%s = modeler.draw_box_center(%s, %s, %s)",
		pyvar, pyVec(center), pyVec(size), kwargs(name, a))
	return name, nil
}

// Rename emits a rename call and rebinds the tracked variable.
func (w *Writer) Rename(ctx context.Context, oldName, newName string) (string, error) {
	pyvar, err := w.lookup(oldName)
	if err != nil {
		return "", err
	}
	if oldName == newName {
		return newName, nil
	}
	if _, dup := w.objects[newName]; dup {
		return "", errors.New(errors.ErrCodeDuplicateName, "object %q already exists", newName)
	}
	delete(w.objects, oldName)
	w.objects[newName] = pyvar
	w.call("%s = %s.rename(%s)", pyvar, pyvar, pyStr(newName))
	return newName, nil
}

// Fillet emits modeler._fillet.
func (w *Writer) Fillet(ctx context.Context, radius float64, vertices []int, object string) error {
	pyvar, err := w.lookup(object)
	if err != nil {
		return err
	}
	if radius <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "fillet radius must be positive, got %g", radius)
	}
	w.call("modeler._fillet(%s, %s, %s)", pyFloat(radius), pyInts(vertices), pyvar)
	return nil
}

// Subtract emits modeler.subtract; tool objects are consumed.
func (w *Writer) Subtract(ctx context.Context, blank string, tools []string) error {
	if _, err := w.lookup(blank); err != nil {
		return err
	}
	for _, tool := range tools {
		if _, err := w.lookup(tool); err != nil {
			return err
		}
	}
	for _, tool := range tools {
		delete(w.objects, tool)
	}
	w.call("modeler.subtract(%s, %s)", pyStr(blank), pyStrs(tools))
	return nil
}

// SweepAlongPath emits modeler._sweep_along_path; the section is consumed.
func (w *Writer) SweepAlongPath(ctx context.Context, section, path string) error {
	sectionVar, err := w.lookup(section)
	if err != nil {
		return err
	}
	pathVar, err := w.lookup(path)
	if err != nil {
		return err
	}
	delete(w.objects, section)
	w.call("modeler._sweep_along_path(%s, %s)", sectionVar, pathVar)
	return nil
}

// AssignPerfectE emits modeler.assign_perfect_E.
func (w *Writer) AssignPerfectE(ctx context.Context, objects []string) error {
	if len(objects) == 0 {
		return nil
	}
	for _, obj := range objects {
		if _, err := w.lookup(obj); err != nil {
			return err
		}
	}
	w.call("modeler.assign_perfect_E(%s)", pyStrs(objects))
	return nil
}

// AddMessage emits pinfo.design.add_message.
func (w *Writer) AddMessage(ctx context.Context, msg string, severity modeler.Severity) error {
	w.call("pinfo.design.add_message(%s, %d)", pyStr(msg), int(severity))
	return nil
}

// Ensure Writer implements Modeler.
var _ modeler.Modeler = (*Writer)(nil)
