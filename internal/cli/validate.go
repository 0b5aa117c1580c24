package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/render/ansys"
)

// validateCommand creates the validate command.
// It checks a design file for structural problems and reports which fillet
// vertices a render pass would skip.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <design.toml>",
		Short: "Check a design file and report fillet eligibility",
		Long: `Validate loads a design, checks its structural consistency (chips,
geometry, junction constraints), and reports every vertex that is too close
to a neighbor to take its element's fillet radius. With --strict, skipped
fillet vertices fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any fillet vertex is skipped")
	return cmd
}

func (c *CLI) runValidate(path string, strict bool) error {
	d, err := design.Load(path)
	if err != nil {
		printError("Load failed: %s", errors.UserMessage(err))
		return err
	}

	if err := d.Validate(); err != nil {
		printError("Invalid design: %s", errors.UserMessage(err))
		return err
	}

	printSuccess("Design %s is valid", d.Name)
	printDetail("%d chips, %d components, %d elements",
		len(d.Chips), len(d.Components()), len(d.Elements))
	for _, kind := range design.Kinds {
		if rows := d.Table(kind); len(rows) > 0 {
			printDetail("%s table: %d rows", kind, len(rows))
		}
	}

	skippedTotal := 0
	for _, e := range d.Elements {
		if e.Fillet <= 0 {
			continue
		}
		skipped := ansys.FilletSkipped(d, e)
		if len(skipped) == 0 {
			continue
		}
		skippedTotal += len(skipped)
		printWarning("%s: fillet %g mm skips vertices %v (segments shorter than twice the radius)",
			e.ObjectName(), e.Fillet, skipped)
	}

	if skippedTotal == 0 {
		return nil
	}
	printInfo("%d fillet vertices will stay sharp", skippedTotal)
	if strict {
		return fmt.Errorf("%d fillet vertices skipped", skippedTotal)
	}
	return nil
}
