package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Marker returns the HTML comment marker identifying an automation trigger.
// The marker is invisible when rendered and is what the dedup scan looks for.
func Marker(name string) string {
	return fmt.Sprintf("<!-- issuegraph:trigger:%s -->", name)
}

// signature tags a posted comment with the run that produced it, for
// debugging. Separate from the trigger marker so reruns stay deduplicated.
func signature(runID string) string {
	return fmt.Sprintf("<!-- issuegraph:run:%s -->", runID)
}

type issueComment struct {
	Body   string `json:"body"`
	Author struct {
		Login string `json:"login"`
	} `json:"author"`
}

// HasMarkedComment scans the issue's existing comments for the marker.
// Used to make trigger posting idempotent across invocations.
func (c *Client) HasMarkedComment(ctx context.Context, repo Repo, number int, marker string) (bool, error) {
	const op = "scan issue comments"

	cmd := c.runner(ctx, c.ghPath, "issue", "view", strconv.Itoa(number),
		"--repo", repo.String(),
		"--json", "comments",
	)
	cmd.Env = c.commandEnv()

	output, err := cmd.Output()
	if err != nil {
		return false, &QueryError{Op: op, Detail: fmt.Sprintf("gh issue view #%d failed", number), Err: err}
	}

	var resp struct {
		Comments []issueComment `json:"comments"`
	}
	if err := json.Unmarshal(output, &resp); err != nil {
		return false, &QueryError{Op: op, Detail: "unparseable comment list", Err: err}
	}

	for _, comment := range resp.Comments {
		if strings.Contains(comment.Body, marker) {
			return true, nil
		}
	}
	return false, nil
}

// PostComment posts a comment on the issue with the marker and a run
// signature appended as invisible HTML comments.
func (c *Client) PostComment(ctx context.Context, repo Repo, number int, body, marker, runID string) error {
	full := fmt.Sprintf("%s\n\n%s\n%s", body, marker, signature(runID))

	cmd := c.runner(ctx, c.ghPath, "issue", "comment", strconv.Itoa(number),
		"--repo", repo.String(),
		"--body", full,
	)
	cmd.Env = c.commandEnv()

	if output, err := cmd.CombinedOutput(); err != nil {
		return &QueryError{
			Op:     "post issue comment",
			Detail: fmt.Sprintf("gh issue comment #%d failed (output: %s)", number, strings.TrimSpace(string(output))),
			Err:    err,
		}
	}
	return nil
}
