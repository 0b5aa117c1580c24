// Package preview renders a structural diagram of a design: chips, the
// components placed on them, and the per-element draw targets, with subtract
// shapes pointing at the ground plane they will be cut from.
//
// The diagram is a quick sanity check before launching a full render pass
// against a CAD session, not a geometric plot.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/qweave/metalize/pkg/design"
)

// ToDOT converts a design to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Chips are drawn as grey boxes, elements as rounded boxes grouped per
// component. Subtract shapes get a dashed edge to their chip's ground plane.
func ToDOT(d *design.Design) string {
	var buf bytes.Buffer
	buf.WriteString("digraph design {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	chips := make([]string, 0, len(d.Chips))
	for name := range d.Chips {
		chips = append(chips, name)
	}
	sort.Strings(chips)

	for _, chip := range chips {
		c := d.Chips[chip]
		label := fmt.Sprintf("%s\n%s %gx%g mm", chip, c.Material, c.Size.X, c.Size.Y)
		fmt.Fprintf(&buf, "  %q [label=%q, shape=box3d, style=filled, fillcolor=lightgrey];\n", chipNode(chip), label)
	}

	buf.WriteString("\n")
	for _, comp := range d.Components() {
		fmt.Fprintf(&buf, "  subgraph \"cluster_Q%d\" {\n", comp)
		fmt.Fprintf(&buf, "    label=\"component %d\";\n", comp)
		for _, e := range d.Elements {
			if e.Component != comp {
				continue
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", e.ObjectName(), strings.Join(elementAttrs(e), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range d.Elements {
		if e.Subtract {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, label=\"subtract\"];\n", e.ObjectName(), chipNode(e.Chip))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.ObjectName(), chipNode(e.Chip))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// chipNode namespaces chip nodes so a chip and an element can share a name.
func chipNode(chip string) string {
	return "chip:" + chip
}

func elementAttrs(e design.Element) []string {
	label := fmt.Sprintf("%s\n%s", e.ObjectName(), e.Kind)
	if e.Fillet > 0 {
		label += fmt.Sprintf("\nfillet %g mm", e.Fillet)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case e.Helper:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=white")
	case e.Kind == design.KindJunction:
		attrs = append(attrs, "fillcolor=lightyellow")
	case e.Subtract:
		attrs = append(attrs, "fillcolor=mistyrose")
	default:
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders a DOT diagram to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT diagram to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
