package main

import (
	"errors"
	"fmt"
	"os"

	"issuegraph/internal/cli"
	"issuegraph/internal/github"
)

// Exit codes. Rate limiting gets its own code so schedulers can tell quota
// exhaustion apart from ordinary failures.
const (
	exitFailure     = 1
	exitRateLimited = 2
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var rateLimited *github.RateLimitError
		if errors.As(err, &rateLimited) {
			os.Exit(exitRateLimited)
		}
		os.Exit(exitFailure)
	}
}
