// Package record implements an in-memory modeler backend.
//
// Every draw call is appended to an operation log that can be inspected by
// tests, exported as JSON by the HTTP bridge, or replayed against another
// backend. The recorder also tracks object names so renames and duplicate
// names behave like a real modeler session.
package record

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/modeler"
)

// OpKind names a recorded operation.
type OpKind string

// Recorded operation kinds.
const (
	OpRectCorner OpKind = "rect_corner"
	OpRectCenter OpKind = "rect_center"
	OpPolyline   OpKind = "polyline"
	OpBoxCenter  OpKind = "box_center"
	OpRename     OpKind = "rename"
	OpFillet     OpKind = "fillet"
	OpSubtract   OpKind = "subtract"
	OpSweep      OpKind = "sweep"
	OpPerfectE   OpKind = "perfect_e"
	OpMessage    OpKind = "message"
)

// Op is one recorded modeler call.
type Op struct {
	Kind    OpKind              `json:"kind"`
	Object  string              `json:"object,omitempty"`
	Points  []modeler.Vec3      `json:"points,omitempty"`
	Closed  bool                `json:"closed,omitempty"`
	Center  *modeler.Vec3       `json:"center,omitempty"`
	Size    *modeler.Vec3       `json:"size,omitempty"`
	DX      float64             `json:"dx,omitempty"`
	DY      float64             `json:"dy,omitempty"`
	Z       float64             `json:"z,omitempty"`
	Radius  float64             `json:"radius,omitempty"`
	Indices []int               `json:"indices,omitempty"`
	Targets []string            `json:"targets,omitempty"`
	From    string              `json:"from,omitempty"`
	Attrs   *modeler.Attributes `json:"attrs,omitempty"`
	Message string              `json:"message,omitempty"`
	Level   string              `json:"level,omitempty"`
}

// Recorder is a modeler backend that captures calls instead of drawing.
// Not safe for concurrent use; a render pass runs on one goroutine.
type Recorder struct {
	ops     []Op
	objects map[string]struct{}
	autoID  int
}

// New creates an empty recorder.
func New() *Recorder {
	return &Recorder{objects: make(map[string]struct{})}
}

// Ops returns the recorded operations in call order.
func (r *Recorder) Ops() []Op { return r.ops }

// HasObject reports whether an object with the given name exists.
func (r *Recorder) HasObject(name string) bool {
	_, ok := r.objects[name]
	return ok
}

// WriteJSON writes the operation log as indented JSON.
func (r *Recorder) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.ops); err != nil {
		return fmt.Errorf("encode ops: %w", err)
	}
	return nil
}

func (r *Recorder) register(a modeler.Attributes, prefix string) (string, error) {
	name := a.Name
	if name == "" {
		r.autoID++
		name = prefix + strconv.Itoa(r.autoID)
	}
	if _, dup := r.objects[name]; dup {
		return "", errors.New(errors.ErrCodeDuplicateName, "object %q already exists", name)
	}
	r.objects[name] = struct{}{}
	return name, nil
}

func (r *Recorder) require(names ...string) error {
	for _, name := range names {
		if _, ok := r.objects[name]; !ok {
			return errors.New(errors.ErrCodeUnknownObject, "no object %q", name)
		}
	}
	return nil
}

func attrsOrNil(a modeler.Attributes) *modeler.Attributes {
	if a == (modeler.Attributes{}) {
		return nil
	}
	return &a
}

// DrawRectCorner records a corner-anchored rectangle.
func (r *Recorder) DrawRectCorner(ctx context.Context, corner modeler.Vec3, dx, dy, z float64, opts ...modeler.Option) (string, error) {
	a := modeler.ApplyOptions(opts)
	name, err := r.register(a, "rect")
	if err != nil {
		return "", err
	}
	c := corner
	r.ops = append(r.ops, Op{Kind: OpRectCorner, Object: name, Center: &c, DX: dx, DY: dy, Z: z, Attrs: attrsOrNil(a)})
	return name, nil
}

// DrawRectCenter records a center-anchored rectangle.
func (r *Recorder) DrawRectCenter(ctx context.Context, center modeler.Vec3, dx, dy float64, opts ...modeler.Option) (string, error) {
	a := modeler.ApplyOptions(opts)
	name, err := r.register(a, "rect")
	if err != nil {
		return "", err
	}
	c := center
	r.ops = append(r.ops, Op{Kind: OpRectCenter, Object: name, Center: &c, DX: dx, DY: dy, Attrs: attrsOrNil(a)})
	return name, nil
}

// DrawPolyline records a polyline.
func (r *Recorder) DrawPolyline(ctx context.Context, pts []modeler.Vec3, closed bool, opts ...modeler.Option) (string, error) {
	if len(pts) < 2 {
		return "", errors.New(errors.ErrCodeInvalidGeometry, "polyline needs at least 2 points, got %d", len(pts))
	}
	a := modeler.ApplyOptions(opts)
	name, err := r.register(a, "poly")
	if err != nil {
		return "", err
	}
	r.ops = append(r.ops, Op{Kind: OpPolyline, Object: name, Points: pts, Closed: closed, Attrs: attrsOrNil(a)})
	return name, nil
}

// DrawBoxCenter records a box.
func (r *Recorder) DrawBoxCenter(ctx context.Context, center, size modeler.Vec3, opts ...modeler.Option) (string, error) {
	a := modeler.ApplyOptions(opts)
	name, err := r.register(a, "box")
	if err != nil {
		return "", err
	}
	c, s := center, size
	r.ops = append(r.ops, Op{Kind: OpBoxCenter, Object: name, Center: &c, Size: &s, Attrs: attrsOrNil(a)})
	return name, nil
}

// Rename records a rename and updates the object table.
func (r *Recorder) Rename(ctx context.Context, oldName, newName string) (string, error) {
	if err := r.require(oldName); err != nil {
		return "", err
	}
	if oldName == newName {
		return newName, nil
	}
	if _, dup := r.objects[newName]; dup {
		return "", errors.New(errors.ErrCodeDuplicateName, "object %q already exists", newName)
	}
	delete(r.objects, oldName)
	r.objects[newName] = struct{}{}
	r.ops = append(r.ops, Op{Kind: OpRename, From: oldName, Object: newName})
	return newName, nil
}

// Fillet records a fillet call.
func (r *Recorder) Fillet(ctx context.Context, radius float64, vertices []int, object string) error {
	if err := r.require(object); err != nil {
		return err
	}
	if radius <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "fillet radius must be positive, got %g", radius)
	}
	r.ops = append(r.ops, Op{Kind: OpFillet, Object: object, Radius: radius, Indices: vertices})
	return nil
}

// Subtract records a boolean subtraction.
func (r *Recorder) Subtract(ctx context.Context, blank string, tools []string) error {
	if err := r.require(append([]string{blank}, tools...)...); err != nil {
		return err
	}
	// Tool objects are consumed by the subtraction.
	for _, tool := range tools {
		delete(r.objects, tool)
	}
	r.ops = append(r.ops, Op{Kind: OpSubtract, Object: blank, Targets: tools})
	return nil
}

// SweepAlongPath records a sweep; the section object is consumed.
func (r *Recorder) SweepAlongPath(ctx context.Context, section, path string) error {
	if err := r.require(section, path); err != nil {
		return err
	}
	delete(r.objects, section)
	r.ops = append(r.ops, Op{Kind: OpSweep, Object: path, From: section})
	return nil
}

// AssignPerfectE records a perfect-E boundary assignment.
func (r *Recorder) AssignPerfectE(ctx context.Context, objects []string) error {
	if len(objects) == 0 {
		return nil
	}
	if err := r.require(objects...); err != nil {
		return err
	}
	r.ops = append(r.ops, Op{Kind: OpPerfectE, Targets: objects})
	return nil
}

// AddMessage records an informational message.
func (r *Recorder) AddMessage(ctx context.Context, msg string, severity modeler.Severity) error {
	r.ops = append(r.ops, Op{Kind: OpMessage, Message: msg, Level: severity.String()})
	return nil
}

// Ensure Recorder implements Modeler.
var _ modeler.Modeler = (*Recorder)(nil)
