// Package graph holds the dependency-graph engine: an in-memory snapshot of
// a repository's issues and blocked-by edges, topological depth computation,
// and detection of issues unblocked by a closure event. Snapshots are built
// fresh per invocation and never persisted.
package graph

import (
	"context"
	"fmt"

	"issuegraph/internal/github"
)

// Graph is one repository's issues plus their blocked-by edges at a single
// point in time. Issue order is the tracker's native listing order.
type Graph struct {
	Issues   []github.Issue
	byNumber map[int]*github.Issue
}

// New builds a graph over the given issues.
func New(issues []github.Issue) *Graph {
	g := &Graph{
		Issues:   issues,
		byNumber: make(map[int]*github.Issue, len(issues)),
	}
	for i := range g.Issues {
		g.byNumber[g.Issues[i].Number] = &g.Issues[i]
	}
	return g
}

// Issue looks up an issue by number. The second return is false for numbers
// referenced by an edge but absent from the snapshot.
func (g *Graph) Issue(number int) (*github.Issue, bool) {
	issue, ok := g.byNumber[number]
	return issue, ok
}

// Lister is the slice of the tracker client the loader needs.
type Lister interface {
	ListIssues(ctx context.Context, repo github.Repo) ([]github.Issue, bool, error)
}

// Load fetches a fresh snapshot of the repository's dependency graph. When
// the tracker reports more issues or edges than one page window, warnf is
// called so the truncation is visible instead of silent.
func Load(ctx context.Context, lister Lister, repo github.Repo, warnf func(format string, args ...interface{})) (*Graph, error) {
	issues, truncated, err := lister.ListIssues(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("cannot load dependency graph for %s: %w", repo, err)
	}
	if truncated && warnf != nil {
		warnf("issue or edge listing for %s exceeded one page; the graph is incomplete", repo)
	}
	return New(issues), nil
}
