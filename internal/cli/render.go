package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output file path, derived from the input when empty
	backend   string // artifact backend: "script" or "ops"
	selection string // comma-separated component ids, empty renders all
	name      string // render a stored design instead of a file
	refresh   bool   // bypass the artifact cache
	noCache   bool   // disable the artifact cache entirely
	store     storeFlags
}

// renderCommand creates the render command for generating artifacts.
//
// Default settings:
//   - backend: script (pyEPR automation script)
//   - all components rendered
//   - artifact cache enabled
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [design.toml]",
		Short: "Render a design into CAD modeler draw calls",
		Long: `Render reads a design and emits the full draw-call sequence for it:
component geometry, chip bodies, ground-plane subtraction, and metal
boundary assignment. The artifact is a pyEPR automation script (backend
"script") or a JSON operation log (backend "ops").`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.name == "" {
				return errors.New(errors.ErrCodeInvalidInput, "a design file or --name is required")
			}
			if len(args) == 1 && opts.name != "" {
				return errors.New(errors.ErrCodeInvalidInput, "a design file and --name are mutually exclusive")
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd, input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: derived from the design name)")
	cmd.Flags().StringVarP(&opts.backend, "backend", "b", pipeline.BackendScript, "artifact backend: script (default), ops")
	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "component ids to render (comma-separated, default all)")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "render a stored design by name")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if a cached artifact exists")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	opts.store.register(cmd)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := withLogger(cmd.Context(), c.Logger)

	selection, err := parseSelection(opts.selection)
	if err != nil {
		return err
	}
	if err := pipeline.ValidateBackend(opts.backend); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		DesignPath: input,
		DesignName: opts.name,
		Backend:    opts.backend,
		Selection:  selection,
		Refresh:    opts.refresh,
		Logger:     c.Logger,
	}
	if opts.name != "" {
		designs, err := opts.store.open(ctx)
		if err != nil {
			return err
		}
		defer designs.Close()
		pipeOpts.Store = designs
	}

	spinner := newSpinnerWithContext(ctx, "Rendering design...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeOpts)
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return ctx.Err()
		}
		printError("Render failed: %s", errors.UserMessage(err))
		return err
	}

	path := outputPath(opts.output, input, result.Design.Name, opts.backend)
	if err := os.WriteFile(path, result.Artifact, 0644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	printSuccess("Rendered %s", result.Design.Name)
	printStats(result.Stats.ElementCount, result.Stats.OpCount, result.CacheInfo.RenderHit)
	printFile(path)
	if opts.backend == pipeline.BackendScript {
		printNextStep("Run inside a pyEPR session", "python "+path)
	}
	return nil
}

// artifactExt returns the file extension for a backend's artifact.
func artifactExt(backend string) string {
	if backend == pipeline.BackendOps {
		return ".json"
	}
	return ".py"
}

// outputPath derives the artifact path from the flags.
// Falls back to <input without extension> or the design name in the
// current directory.
func outputPath(output, input, designName, backend string) string {
	if output != "" {
		return output
	}
	if input != "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + artifactExt(backend)
	}
	return designName + artifactExt(backend)
}
