package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"issuegraph/internal/github"
)

var (
	triggerName  string
	triggerBody  string
	triggerForce bool
)

var triggerCmd = &cobra.Command{
	Use:   "trigger <issue-number>",
	Short: "Post an automation-trigger comment on an issue",
	Long: `Post a trigger comment that downstream automation reacts to. The
comment carries an invisible HTML marker; if a comment with the same marker
already exists on the issue, nothing is posted, so triggers are idempotent
across reruns.

Examples:
  issuegraph trigger 42 --repo myorg/myapp --name triage
  issuegraph trigger 42 --repo myorg/myapp --name rebuild --body "Rebuild requested." --force`,
	Args: cobra.ExactArgs(1),
	RunE: runTriggerCommand,
}

func init() {
	rootCmd.AddCommand(triggerCmd)

	triggerCmd.Flags().StringVar(&triggerName, "name", "triage", "trigger name used in the dedup marker")
	triggerCmd.Flags().StringVar(&triggerBody, "body", "", "comment body (default derived from the trigger name)")
	triggerCmd.Flags().BoolVar(&triggerForce, "force", false, "post even if a comment with this marker exists")
}

func runTriggerCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	number, err := strconv.Atoi(args[0])
	if err != nil || number <= 0 {
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

	marker := github.Marker(triggerName)

	if !triggerForce {
		exists, err := rt.client.HasMarkedComment(ctx, rt.repo, number, marker)
		if err != nil {
			return err
		}
		if exists {
			rt.logInfo("Trigger %q already posted on #%d, skipping", triggerName, number)
			return nil
		}
	}

	body := triggerBody
	if body == "" {
		body = fmt.Sprintf("Automation trigger: %s", triggerName)
	}

	if err := rt.client.PostComment(ctx, rt.repo, number, body, marker, rt.runID); err != nil {
		return err
	}

	rt.logInfo("Posted trigger %q on #%d", triggerName, number)
	return nil
}
