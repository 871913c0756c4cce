package github

import "fmt"

// RepositoryNotFoundError indicates the owner/name pair does not resolve on
// the tracker (or the token cannot see it, which GitHub reports identically).
type RepositoryNotFoundError struct {
	Repo Repo
}

func (e *RepositoryNotFoundError) Error() string {
	return fmt.Sprintf("repository %s does not exist", e.Repo)
}

// IssueNotFoundError indicates an issue number that does not resolve in the
// repository.
type IssueNotFoundError struct {
	Repo   Repo
	Number int
}

func (e *IssueNotFoundError) Error() string {
	return fmt.Sprintf("issue #%d does not exist in %s", e.Number, e.Repo)
}

// RateLimitError indicates the tracker reported quota exhaustion. It is
// fatal: quota cannot be worked around locally, so callers abort the whole
// run rather than retrying.
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "rate limited by the GitHub API"
}

// QueryError indicates a malformed or otherwise unusable response from the
// tracker: unparseable JSON, an unexpected GraphQL error type, or a failed
// gh invocation that produced no classifiable output.
type QueryError struct {
	Op     string
	Detail string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
