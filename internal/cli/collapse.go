package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/meshsurgery/pkg/mesh/collapse"
	"github.com/matzehuels/meshsurgery/pkg/pipeline"
)

// collapseOpts holds the command-line flags for the collapse command.
type collapseOpts struct {
	mesh      meshFlags
	edges     []int  // explicit half-edge IDs, collapsed in order
	collapses int    // number of random collapses
	seed      uint64 // random seed, 0 means the config seed
	validate  bool   // full invariant check afterwards
	output    string // optional soup JSON output
}

// collapseCommand creates the collapse command.
//
// Explicit half-edges (--edges) are collapsed in order and the first one
// that cannot be collapsed fails the command. Otherwise --collapses random
// edges passing the link condition are collapsed.
func (c *CLI) collapseCommand() *cobra.Command {
	opts := collapseOpts{validate: true}

	cmd := &cobra.Command{
		Use:   "collapse [shape]",
		Short: "Collapse edges of a mesh",
		Long: `Build a mesh, collapse edges and report the topology classes involved.

Half-edge IDs are the ones shown by "meshsurgery inspect" for the same mesh.

` + shapeHelp,
		Example: `  meshsurgery collapse octahedron --edges 17
  meshsurgery collapse sphere -r 32 -n 500 -o decimated.json
  meshsurgery collapse -i mesh.json -n 10 --seed 7`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: shapeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := opts.mesh.options(c.Config, args)
			popts.Edges = opts.edges
			popts.Collapses = opts.collapses
			if opts.seed != 0 {
				popts.Seed = opts.seed
			}
			popts.Validate = opts.validate
			return c.runCollapse(cmd, popts, opts)
		},
	}

	opts.mesh.register(cmd)
	cmd.Flags().IntSliceVarP(&opts.edges, "edges", "e", nil, "half-edge IDs to collapse, in order")
	cmd.Flags().IntVarP(&opts.collapses, "collapses", "n", 1, "number of random collapses (ignored with --edges)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().BoolVar(&opts.validate, "validate", true, "check every mesh invariant afterwards")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the resulting mesh as soup JSON")

	return cmd
}

func (c *CLI) runCollapse(cmd *cobra.Command, popts pipeline.Options, opts collapseOpts) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, opts.mesh.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Collapsed %d edges", result.Collapsed), "run", result.RunID, "rejected", result.Rejected)

	if opts.output != "" {
		if err := writeMesh(result.Mesh, opts.output); err != nil {
			return err
		}
		if opts.output == "-" {
			return nil
		}
	}

	if result.Collapsed == 0 {
		printWarning("No edge was collapsed")
	} else {
		printSuccess("Collapsed %s edges", StyleNumber.Render(strconv.Itoa(result.Collapsed)))
	}
	printTransition(result.Before, result.After, result.CacheHit)
	if result.Rejected > 0 {
		printDetail("%d distinct candidates were refused", result.Rejected)
	}
	if popts.Validate {
		printDetail("all invariants hold")
	}
	if len(result.Classes) > 0 {
		fmt.Println(classTable(result.Classes))
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

// classTable renders the per-class collapse counts in class order.
func classTable(counts map[string]int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	var rows [][]string
	for _, cl := range collapse.Classes {
		n := counts[cl.String()]
		if n == 0 {
			continue
		}
		top, bottom := cl.Actions()
		rows = append(rows, []string{cl.String(), top.String(), bottom.String(), strconv.Itoa(n)})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Class", "Top", "Bottom", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 {
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}
