package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"issuegraph/internal/github"
)

// unblockFetchLimit bounds concurrent per-candidate blocker fetches. The
// candidates are independent, so they are fetched in parallel and the result
// is sorted afterwards to stay deterministic regardless of completion order.
const unblockFetchLimit = 4

// BlockFetcher is the slice of the tracker client the detector needs.
type BlockFetcher interface {
	GetIssueBlocking(ctx context.Context, repo github.Repo, number int) ([]github.IssueRef, error)
	GetIssueBlockedBy(ctx context.Context, repo github.Repo, number int) ([]github.IssueRef, error)
}

// UnblockResult is the outcome of one closure-event evaluation.
type UnblockResult struct {
	// Unblocked holds the numbers of open issues whose blockers are now all
	// closed, in ascending order.
	Unblocked []int
	// Candidates is how many open issues the closed issue was blocking.
	Candidates int
	// Skipped is how many candidates could not be evaluated because their
	// blocker fetch failed. Partial results are preferable to total failure.
	Skipped int
}

// DetectUnblocked determines which open issues became unblocked when the
// given issue closed. A candidate counts as newly unblocked only when none
// of its current blockers are open, so the answer stays correct even when
// several blockers closed concurrently. Per-candidate fetch failures are
// reported through warnf and skipped. Fatal failures (the closed issue not
// resolving, rate limiting) abort with an error.
func DetectUnblocked(ctx context.Context, fetcher BlockFetcher, repo github.Repo, closedNumber int, warnf func(format string, args ...interface{})) (*UnblockResult, error) {
	blocking, err := fetcher.GetIssueBlocking(ctx, repo, closedNumber)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch issues blocked by #%d: %w", closedNumber, err)
	}

	candidates := make([]int, 0, len(blocking))
	for _, ref := range blocking {
		if ref.State == github.StateOpen {
			candidates = append(candidates, ref.Number)
		}
	}

	result := &UnblockResult{Candidates: len(candidates)}
	if len(candidates) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(unblockFetchLimit)

	for _, candidate := range candidates {
		candidate := candidate
		eg.Go(func() error {
			blockers, err := fetcher.GetIssueBlockedBy(egCtx, repo, candidate)
			if err != nil {
				if isFatal(err) {
					return err
				}
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				if warnf != nil {
					warnf("skipping candidate #%d: %v", candidate, err)
				}
				return nil
			}

			for _, blocker := range blockers {
				if blocker.State == github.StateOpen {
					return nil // still blocked
				}
			}

			mu.Lock()
			result.Unblocked = append(result.Unblocked, candidate)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Ints(result.Unblocked)
	return result, nil
}

// isFatal reports whether a per-candidate failure must abort the whole
// batch. Rate limiting cannot be worked around locally, so it always does.
func isFatal(err error) bool {
	var rateLimited *github.RateLimitError
	return errors.As(err, &rateLimited)
}
