package github

// State is the lifecycle state of an issue as reported by the tracker.
type State string

const (
	StateOpen   State = "OPEN"
	StateClosed State = "CLOSED"
)

// Issue is one tracked unit of work plus its blocked-by in-edges.
// BlockedBy holds issue numbers that must close before this issue is
// considered unblocked. Numbers may reference issues outside the fetched
// window; callers must tolerate that.
type Issue struct {
	Number    int
	State     State
	Title     string
	BlockedBy []int
}

// IssueRef is a narrow view of an issue used by the per-issue relation
// queries (blocking / blocked-by), where only number and state matter.
type IssueRef struct {
	Number int
	State  State
}

// Repo identifies one repository on the tracker.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}
