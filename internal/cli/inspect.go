package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/render/preview"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	output string // output file for the diagram
	format string // diagram format: dot, svg, png
	graph  bool   // emit a structure diagram instead of the text summary
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <design.toml>",
		Short: "Summarize a design, optionally as a Graphviz diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], &opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.graph, "graph", "g", false, "emit a structure diagram")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "dot", "diagram format: dot (default), svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "diagram output file (default: derived from the design file)")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, input string, opts *inspectOpts) error {
	d, err := design.Load(input)
	if err != nil {
		return err
	}

	if opts.graph {
		return c.inspectGraph(cmd, d, input, opts)
	}

	printKeyValue("design", d.Name)
	printKeyValue("precision", fmt.Sprintf("%d digits", d.Precision))
	printNewline()

	for _, chip := range sortedChipNames(d) {
		ch := d.Chips[chip]
		printKeyValue("chip", chip)
		printDetail("material %s, %g x %g x %g mm", ch.Material, ch.Size.X, ch.Size.Y, ch.Size.Z)
	}
	printNewline()

	for _, comp := range d.Components() {
		printKeyValue("component", fmt.Sprintf("%d", comp))
		for _, e := range d.Elements {
			if e.Component != comp {
				continue
			}
			detail := fmt.Sprintf("%s %s on %s", e.Kind, e.ObjectName(), e.Chip)
			var marks []string
			if e.Subtract {
				marks = append(marks, "subtract")
			}
			if e.Helper {
				marks = append(marks, "helper")
			}
			if e.Fillet > 0 {
				marks = append(marks, fmt.Sprintf("fillet %g mm", e.Fillet))
			}
			if len(marks) > 0 {
				detail += " (" + strings.Join(marks, ", ") + ")"
			}
			printDetail("%s", detail)
		}
	}
	return nil
}

// inspectGraph renders the structure diagram in the requested format.
func (c *CLI) inspectGraph(cmd *cobra.Command, d *design.Design, input string, opts *inspectOpts) error {
	prog := newProgress(loggerFromContext(cmd.Context()))
	dot := preview.ToDOT(d)

	var data []byte
	var err error
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = preview.RenderSVG(cmd.Context(), dot)
	case "png":
		data, err = preview.RenderPNG(cmd.Context(), dot)
	default:
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", opts.format)
	}
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}

	prog.done("Generated " + opts.format + " diagram")
	printFile(path)
	return nil
}

// sortedChipNames returns the design's chip names in sorted order.
func sortedChipNames(d *design.Design) []string {
	names := make([]string, 0, len(d.Chips))
	for name := range d.Chips {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
