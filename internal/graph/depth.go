package graph

import "fmt"

// CycleError reports a blocking cycle discovered during depth computation.
// Number is an issue on the cycle.
type CycleError struct {
	Number int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("blocking relation contains a cycle through issue #%d", e.Number)
}

// Depths maps every issue number in a snapshot to its topological depth:
// 0 for issues with no blockers, else 1 + the maximum depth among blockers.
// Max is the largest depth observed, for palette sizing downstream.
type Depths struct {
	ByNumber map[int]int
	Max      int
}

// Depth returns the depth for an issue, or -1 when the number is unknown.
func (d *Depths) Depth(number int) int {
	if depth, ok := d.ByNumber[number]; ok {
		return depth
	}
	return -1
}

// depthWalker carries the per-run scratch state of one computation. Nothing
// here outlives a single ComputeDepths call.
type depthWalker struct {
	graph   *Graph
	depths  map[int]int
	walking map[int]bool
}

// ComputeDepths computes the depth of every issue in the graph. Blocker
// numbers absent from the snapshot count as depth-0 leaves. A cycle in the
// blocking relation fails with a CycleError naming an issue on the cycle.
func ComputeDepths(g *Graph) (*Depths, error) {
	w := &depthWalker{
		graph:   g,
		depths:  make(map[int]int, len(g.Issues)),
		walking: make(map[int]bool),
	}

	max := 0
	for i := range g.Issues {
		depth, err := w.visit(g.Issues[i].Number)
		if err != nil {
			return nil, err
		}
		if depth > max {
			max = depth
		}
	}
	return &Depths{ByNumber: w.depths, Max: max}, nil
}

// visit resolves one issue's depth by depth-first recursion, memoizing
// results so shared ancestors are walked once. The walking set marks nodes
// on the current recursion path; reaching one again means a cycle.
func (w *depthWalker) visit(number int) (int, error) {
	if depth, ok := w.depths[number]; ok {
		return depth, nil
	}
	if w.walking[number] {
		return 0, &CycleError{Number: number}
	}

	issue, ok := w.graph.Issue(number)
	if !ok {
		// Stale cross-reference: the tracker mentioned an issue outside
		// the fetched window. Treat it as a blocker-free leaf.
		return 0, nil
	}

	w.walking[number] = true
	defer delete(w.walking, number)

	depth := 0
	for _, blocker := range issue.BlockedBy {
		blockerDepth, err := w.visit(blocker)
		if err != nil {
			return 0, err
		}
		if blockerDepth+1 > depth {
			depth = blockerDepth + 1
		}
	}

	w.depths[number] = depth
	return depth, nil
}
