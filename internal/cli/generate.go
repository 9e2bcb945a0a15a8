package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
	"github.com/matzehuels/meshsurgery/pkg/pipeline"
)

// meshFlags holds the build flags shared by generate, collapse and inspect.
type meshFlags struct {
	resolution int     // grid cells per side, fan triangles, or marching cubes cells
	radius     float64 // SDF shapes only
	input      string  // polygon soup JSON to start from
	refresh    bool    // rebuild even when cached
	noCache    bool    // disable the mesh cache
}

func (f *meshFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.resolution, "resolution", "r", 0, "shape resolution (grid cells, fan triangles, or SDF cells)")
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "radius of the sphere, box and cylinder")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "read a polygon soup JSON file instead of generating a shape")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass the cache and rebuild the mesh")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options turns the flags and the optional shape argument into pipeline
// options, filling unset values from the config.
func (f *meshFlags) options(cfg Config, args []string) pipeline.Options {
	opts := pipeline.Options{
		Resolution: f.resolution,
		Radius:     f.radius,
		Input:      f.input,
		Refresh:    f.refresh,
	}
	if len(args) > 0 {
		opts.Shape = args[0]
	}
	cfg.applyMesh(&opts)
	return opts
}

// shapeArgs completes the shape argument.
func shapeArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return pipeline.Shapes, cobra.ShellCompDirectiveNoFileComp
}

const shapeHelp = `Shapes: tetrahedron, octahedron, icosahedron, grid, fan (generated exactly)
and sphere, box, cylinder (polygonized by marching cubes).`

// generateCommand creates the generate command for building mesh snapshots.
func (c *CLI) generateCommand() *cobra.Command {
	var flags meshFlags
	var output string

	cmd := &cobra.Command{
		Use:   "generate [shape]",
		Short: "Generate a mesh and write it as polygon soup JSON",
		Long: `Generate a half-edge mesh and write it as polygon soup JSON.

` + shapeHelp,
		Example: `  meshsurgery generate sphere -r 32 -o sphere.json
  meshsurgery generate grid -r 10`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: shapeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(c.Config, args)
			return c.runGenerate(cmd, opts, flags.noCache, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <shape>.json)")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, opts pipeline.Options, noCache bool, output string) error {
	ctx := cmd.Context()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	m, hit, err := c.build(ctx, cmd.ErrOrStderr(), runner, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s", opts.String()), "vertices", m.NumVertices(), "faces", m.NumFaces(), "cached", hit)

	if output == "" {
		output = opts.Shape + ".json"
	}
	if err := writeMesh(m, output); err != nil {
		return err
	}
	if output == "-" {
		return nil
	}

	printSuccess("Generated %s", opts.String())
	printStats(m.Counts(), hit)
	printFile(output)
	printNextStep("Collapse edges", fmt.Sprintf("%s collapse -i %s -n 10", appName, output))
	return nil
}

// build runs the build stage, with a spinner on w for the slow SDF shapes.
func (c *CLI) build(ctx context.Context, w io.Writer, runner *pipeline.Runner, opts pipeline.Options) (*mesh.Mesh, bool, error) {
	if !pipeline.IsSDF(opts.Shape) || c.verbose {
		return runner.BuildWithCacheInfo(ctx, opts)
	}
	spin := newSpinner(ctx, w, "Polygonizing "+opts.String())
	spin.Start()
	defer spin.Stop()
	return runner.BuildWithCacheInfo(ctx, opts)
}

// writeMesh writes m as soup JSON to path, or to stdout for "-".
func writeMesh(m *mesh.Mesh, path string) error {
	if path == "-" {
		return m.WriteSoup(os.Stdout)
	}
	if filepath.Ext(path) != ".json" {
		return errors.New(errors.ErrCodeUnsupported, "output %s: only polygon soup .json files are supported", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := m.WriteSoup(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
