package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command, an interactive browser over
// the half-edges of a mesh.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags meshFlags
	var output string

	cmd := &cobra.Command{
		Use:   "inspect [shape]",
		Short: "Browse the edges of a mesh and collapse them interactively",
		Long: `Browse every half-edge of a mesh with its collapse class and link
condition. Collapses can be undone until the browser is closed; with
--output the final mesh is written as polygon soup JSON.

` + shapeHelp,
		Example: `  meshsurgery inspect octahedron
  meshsurgery inspect -i mesh.json -o edited.json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: shapeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := flags.options(c.Config, args)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			m, _, err := c.build(ctx, cmd.ErrOrStderr(), runner, opts)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewEdgeListModel(m), tea.WithContext(ctx))
			finalModel, err := p.Run()
			if err != nil {
				return err
			}
			fm, ok := finalModel.(EdgeListModel)
			if !ok {
				return fmt.Errorf("unexpected model %T", finalModel)
			}
			fm.Finish()

			if fm.Collapsed == 0 {
				printDetail("No collapses made")
				return nil
			}
			printSuccess("Collapsed %d edges", fm.Collapsed)
			printStats(m.Counts(), false)
			if err := m.Validate(); err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			if output != "" {
				if err := writeMesh(m, output); err != nil {
					return err
				}
				printFile(output)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the edited mesh as soup JSON")

	return cmd
}
