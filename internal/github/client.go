// Package github talks to the GitHub API for one repository by shelling out
// to the gh CLI. All queries are read-only GraphQL except comment posting.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
)

// relationPageSize caps every relation query (issue listing, blocked-by and
// blocking edges). Results past this window are not accumulated; callers get
// a truncation signal instead.
const relationPageSize = 100

// Client runs gh commands against one authentication context.
type Client struct {
	ghPath string
	runner func(ctx context.Context, name string, args ...string) *exec.Cmd
	env    []string // extra entries appended to os.Environ(), e.g. GH_TOKEN
	logger *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithGHPath overrides the gh binary path.
func WithGHPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.ghPath = path
		}
	}
}

// WithToken makes every gh invocation authenticate with the given token
// instead of the ambient gh login.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		if token != "" {
			c.env = append(c.env, "GH_TOKEN="+token)
		}
	}
}

// WithRunner injects a command constructor. Tests use this to substitute
// canned process output for real gh calls.
func WithRunner(runner func(ctx context.Context, name string, args ...string) *exec.Cmd) ClientOption {
	return func(c *Client) {
		c.runner = runner
	}
}

// WithLogger sets the diagnostic logger. Diagnostics never go to stdout.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a gh-backed client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		ghPath: "gh",
		runner: exec.CommandContext,
		logger: log.New(os.Stderr, "[github] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) commandEnv() []string {
	return append(os.Environ(), c.env...)
}

// graphQLError is one entry of the errors array in a GraphQL response.
// GitHub sets Type to a stable machine-readable code (NOT_FOUND,
// RATE_LIMITED, ...); classification uses that field, never the message text.
type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// graphql runs one query through gh api graphql and returns the data payload
// plus any structured errors. gh exits non-zero when the response carries
// errors, but still prints the full envelope on stdout, so the output is
// parsed regardless of the exit status.
func (c *Client) graphql(ctx context.Context, op, query string) (json.RawMessage, []graphQLError, error) {
	cmd := c.runner(ctx, c.ghPath, "api", "graphql", "-f", "query="+query)
	cmd.Env = c.commandEnv()

	output, runErr := cmd.Output()
	if len(output) == 0 {
		return nil, nil, &QueryError{Op: op, Detail: "gh produced no output", Err: runErr}
	}

	var envelope graphQLEnvelope
	if err := json.Unmarshal(output, &envelope); err != nil {
		return nil, nil, &QueryError{Op: op, Detail: "unparseable GraphQL response", Err: err}
	}
	if runErr != nil {
		c.logger.Printf("gh exited non-zero during %s, response parsed anyway: %v", op, runErr)
	}

	for _, gqlErr := range envelope.Errors {
		if gqlErr.Type == "RATE_LIMITED" {
			return nil, nil, &RateLimitError{}
		}
	}
	return envelope.Data, envelope.Errors, nil
}

// hasNotFound reports whether the error list contains a NOT_FOUND entry.
func hasNotFound(errs []graphQLError) bool {
	for _, e := range errs {
		if e.Type == "NOT_FOUND" {
			return true
		}
	}
	return false
}

// queryErrorFrom turns leftover GraphQL errors into a QueryError.
func queryErrorFrom(op string, errs []graphQLError) error {
	details := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Type != "" {
			details = append(details, e.Type+": "+e.Message)
		} else {
			details = append(details, e.Message)
		}
	}
	return &QueryError{Op: op, Detail: strings.Join(details, "; ")}
}

func parseState(op, raw string) (State, error) {
	switch strings.ToUpper(raw) {
	case "OPEN":
		return StateOpen, nil
	case "CLOSED":
		return StateClosed, nil
	default:
		return "", &QueryError{Op: op, Detail: fmt.Sprintf("unknown issue state %q", raw)}
	}
}

// GetRepository checks that the repository resolves under the current
// authentication context. It returns nil when it exists, a
// RepositoryNotFoundError when it does not.
func (c *Client) GetRepository(ctx context.Context, repo Repo) error {
	const op = "get repository"

	query := fmt.Sprintf(`{ repository(owner: %q, name: %q) { nameWithOwner } }`,
		repo.Owner, repo.Name)

	data, errs, err := c.graphql(ctx, op, query)
	if err != nil {
		return err
	}
	if hasNotFound(errs) {
		return &RepositoryNotFoundError{Repo: repo}
	}
	if len(errs) > 0 {
		return queryErrorFrom(op, errs)
	}

	var resp struct {
		Repository *struct {
			NameWithOwner string `json:"nameWithOwner"`
		} `json:"repository"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return &QueryError{Op: op, Detail: "unexpected response shape", Err: err}
	}
	if resp.Repository == nil {
		return &RepositoryNotFoundError{Repo: repo}
	}
	return nil
}

type listIssuesResponse struct {
	Repository *struct {
		Issues struct {
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Nodes []struct {
				Number    int    `json:"number"`
				State     string `json:"state"`
				Title     string `json:"title"`
				BlockedBy struct {
					PageInfo struct {
						HasNextPage bool `json:"hasNextPage"`
					} `json:"pageInfo"`
					Nodes []struct {
						Number int `json:"number"`
					} `json:"nodes"`
				} `json:"blockedBy"`
			} `json:"nodes"`
		} `json:"issues"`
	} `json:"repository"`
}

// ListIssues fetches every issue (open and closed) with its blocked-by edge
// set, in the tracker's native listing order. The boolean is true when the
// issue list or any edge list hit the page-size window, meaning the snapshot
// is incomplete; callers surface that as an explicit warning rather than
// working silently on a truncated graph.
func (c *Client) ListIssues(ctx context.Context, repo Repo) ([]Issue, bool, error) {
	const op = "list issues"

	query := fmt.Sprintf(`{ repository(owner: %q, name: %q) { issues(first: %d, states: [OPEN, CLOSED]) { pageInfo { hasNextPage } nodes { number state title blockedBy(first: %d) { pageInfo { hasNextPage } nodes { number } } } } } }`,
		repo.Owner, repo.Name, relationPageSize, relationPageSize)

	data, errs, err := c.graphql(ctx, op, query)
	if err != nil {
		return nil, false, err
	}
	if hasNotFound(errs) {
		return nil, false, &RepositoryNotFoundError{Repo: repo}
	}
	if len(errs) > 0 {
		return nil, false, queryErrorFrom(op, errs)
	}

	var resp listIssuesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, &QueryError{Op: op, Detail: "unexpected response shape", Err: err}
	}
	if resp.Repository == nil {
		return nil, false, &RepositoryNotFoundError{Repo: repo}
	}

	truncated := resp.Repository.Issues.PageInfo.HasNextPage
	issues := make([]Issue, 0, len(resp.Repository.Issues.Nodes))
	for _, node := range resp.Repository.Issues.Nodes {
		state, err := parseState(op, node.State)
		if err != nil {
			return nil, false, err
		}
		if node.BlockedBy.PageInfo.HasNextPage {
			truncated = true
		}
		blockedBy := make([]int, 0, len(node.BlockedBy.Nodes))
		for _, b := range node.BlockedBy.Nodes {
			blockedBy = append(blockedBy, b.Number)
		}
		issues = append(issues, Issue{
			Number:    node.Number,
			State:     state,
			Title:     node.Title,
			BlockedBy: blockedBy,
		})
	}
	return issues, truncated, nil
}

type relationNodes struct {
	Nodes []struct {
		Number int    `json:"number"`
		State  string `json:"state"`
	} `json:"nodes"`
}

// issueRelation fetches one direction of an issue's blocking edges. The
// field argument is the GraphQL relation name (blocking or blockedBy).
func (c *Client) issueRelation(ctx context.Context, op string, repo Repo, number int, field string) ([]IssueRef, error) {
	query := fmt.Sprintf(`{ repository(owner: %q, name: %q) { issue(number: %d) { %s(first: %d) { nodes { number state } } } } }`,
		repo.Owner, repo.Name, number, field, relationPageSize)

	data, errs, err := c.graphql(ctx, op, query)
	if err != nil {
		return nil, err
	}
	if hasNotFound(errs) {
		return nil, &IssueNotFoundError{Repo: repo, Number: number}
	}
	if len(errs) > 0 {
		return nil, queryErrorFrom(op, errs)
	}

	var resp struct {
		Repository *struct {
			Issue *struct {
				Blocking  *relationNodes `json:"blocking"`
				BlockedBy *relationNodes `json:"blockedBy"`
			} `json:"issue"`
		} `json:"repository"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &QueryError{Op: op, Detail: "unexpected response shape", Err: err}
	}
	if resp.Repository == nil || resp.Repository.Issue == nil {
		return nil, &IssueNotFoundError{Repo: repo, Number: number}
	}
	relation := resp.Repository.Issue.Blocking
	if field == "blockedBy" {
		relation = resp.Repository.Issue.BlockedBy
	}
	if relation == nil {
		return nil, &QueryError{Op: op, Detail: fmt.Sprintf("response missing %s relation", field)}
	}

	refs := make([]IssueRef, 0, len(relation.Nodes))
	for _, node := range relation.Nodes {
		state, err := parseState(op, node.State)
		if err != nil {
			return nil, err
		}
		refs = append(refs, IssueRef{Number: node.Number, State: state})
	}
	return refs, nil
}

// GetIssueBlocking returns the issues the given issue directly blocks
// (out-edges in the blocks relation).
func (c *Client) GetIssueBlocking(ctx context.Context, repo Repo, number int) ([]IssueRef, error) {
	return c.issueRelation(ctx, "get blocking issues", repo, number, "blocking")
}

// GetIssueBlockedBy returns the issues that directly block the given issue
// (in-edges in the blocks relation).
func (c *Client) GetIssueBlockedBy(ctx context.Context, repo Repo, number int) ([]IssueRef, error) {
	return c.issueRelation(ctx, "get blocking issues for candidate", repo, number, "blockedBy")
}
