package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"issuegraph/internal/graph"
)

var unblockedFormat string

var unblockedCmd = &cobra.Command{
	Use:   "unblocked <issue-number>",
	Short: "Report issues unblocked by closing the given issue",
	Long: `Given an issue that was just closed, determine which open issues it
was blocking now have all their blockers closed. Each candidate's full
blocker set is re-checked against current state, so the answer stays correct
when several blockers closed around the same time.

The default text output is one issue number per line followed by a count
line. Candidates whose blocker fetch fails are skipped with a warning rather
than failing the whole run.

Examples:
  issuegraph unblocked 42 --repo myorg/myapp
  issuegraph unblocked 42 --repo myorg/myapp --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runUnblockedCommand,
}

func init() {
	rootCmd.AddCommand(unblockedCmd)

	unblockedCmd.Flags().StringVar(&unblockedFormat, "format", "text", "output format: text, json, or yaml")
}

// unblockedReport is the structured form of the result for json/yaml output.
type unblockedReport struct {
	ClosedIssue int   `json:"closed_issue" yaml:"closed_issue"`
	Unblocked   []int `json:"unblocked" yaml:"unblocked"`
	Count       int   `json:"count" yaml:"count"`
	Skipped     int   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func runUnblockedCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	closedNumber, err := strconv.Atoi(args[0])
	if err != nil || closedNumber <= 0 {
		return fmt.Errorf("invalid issue number %q", args[0])
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.client.GetRepository(ctx, rt.repo); err != nil {
		return err
	}

	rt.logInfo("Checking issues unblocked by closing #%d in %s", closedNumber, rt.repo)
	result, err := graph.DetectUnblocked(ctx, rt.client, rt.repo, closedNumber, rt.logWarning)
	if err != nil {
		return err
	}

	if result.Skipped > 0 {
		rt.logWarning("%d candidate(s) skipped due to fetch failures; results may be incomplete", result.Skipped)
	}
	rt.logInfo("%d of %d open candidate(s) newly unblocked", len(result.Unblocked), result.Candidates)

	report := unblockedReport{
		ClosedIssue: closedNumber,
		Unblocked:   result.Unblocked,
		Count:       len(result.Unblocked),
		Skipped:     result.Skipped,
	}

	switch unblockedFormat {
	case "text":
		for _, number := range report.Unblocked {
			fmt.Println(number)
		}
		fmt.Printf("count: %d\n", report.Count)
		return nil
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(report)
	default:
		return fmt.Errorf("unknown format %q (must be text, json, or yaml)", unblockedFormat)
	}
}
