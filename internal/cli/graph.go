package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"issuegraph/internal/graph"
	"issuegraph/internal/render"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the issue dependency graph as a Mermaid diagram",
	Long: `Fetch all issues and their blocked-by relationships, compute each
issue's topological depth, and write a Mermaid flowchart to stdout. Node
color encodes depth, border style encodes open/closed state.

Examples:
  issuegraph graph --repo myorg/myapp
  issuegraph graph --repo myorg/myapp > docs/dependencies.mmd`,
	Args: cobra.NoArgs,
	RunE: runGraphCommand,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraphCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.client.GetRepository(ctx, rt.repo); err != nil {
		return err
	}

	rt.logInfo("Loading dependency graph for %s", rt.repo)
	g, err := graph.Load(ctx, rt.client, rt.repo, rt.logWarning)
	if err != nil {
		return err
	}

	depths, err := graph.ComputeDepths(g)
	if err != nil {
		return err
	}

	summary, err := render.Mermaid(os.Stdout, g, depths)
	if err != nil {
		return err
	}

	rt.logInfo("Rendered %d issues, max depth %d", summary.Issues, summary.MaxDepth)
	return nil
}
