// Package render turns a dependency graph plus computed depths into a
// Mermaid flowchart. Pure transformation: no network, no mutation.
package render

import (
	"fmt"
	"io"
	"strings"

	"issuegraph/internal/github"
	"issuegraph/internal/graph"
)

// Palette holds the ten node fill colors, indexed by depth mod 10. The
// colors are spaced for contrast between adjacent depths; depths ten apart
// intentionally reuse the same color.
var Palette = [10]string{
	"#ffcdd2", "#c5e1a5", "#bbdefb", "#ffe082", "#ce93d8",
	"#80deea", "#ffab91", "#a5d6a7", "#9fa8da", "#fff59d",
}

// FallbackColor is used when an issue has no computed depth.
const FallbackColor = "#e0e0e0"

// ColorForDepth maps a depth to its palette color. Negative depths (unknown)
// get the fallback color; depths past the palette wrap around.
func ColorForDepth(depth int) string {
	if depth < 0 {
		return FallbackColor
	}
	return Palette[depth%10]
}

// Summary is the trailer emitted after the diagram: how many issues were
// rendered and the deepest layer seen.
type Summary struct {
	Issues   int
	MaxDepth int
}

// Mermaid writes the graph as a Mermaid flowchart. Node fill encodes depth,
// border style encodes state (closed issues get a dashed heavy border), and
// each edge points from blocker to blocked. The trailer is written as
// Mermaid comments so the output stays one parseable document.
func Mermaid(w io.Writer, g *graph.Graph, depths *graph.Depths) (Summary, error) {
	if _, err := fmt.Fprintln(w, "graph TD"); err != nil {
		return Summary{}, err
	}

	for i := range g.Issues {
		issue := &g.Issues[i]
		label := fmt.Sprintf("#%d %s", issue.Number, escapeLabel(issue.Title))
		if _, err := fmt.Fprintf(w, "    i%d[\"%s\"]\n", issue.Number, label); err != nil {
			return Summary{}, err
		}
		if _, err := fmt.Fprintf(w, "    style i%d %s\n", issue.Number, nodeStyle(issue, depths)); err != nil {
			return Summary{}, err
		}
	}

	for i := range g.Issues {
		issue := &g.Issues[i]
		for _, blocker := range issue.BlockedBy {
			if _, ok := g.Issue(blocker); !ok {
				continue // edge into an issue outside the snapshot
			}
			if _, err := fmt.Fprintf(w, "    i%d --> i%d\n", blocker, issue.Number); err != nil {
				return Summary{}, err
			}
		}
	}

	summary := Summary{Issues: len(g.Issues), MaxDepth: depths.Max}
	if _, err := fmt.Fprintf(w, "%%%% issues: %d\n%%%% max depth: %d\n", summary.Issues, summary.MaxDepth); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// nodeStyle builds the style directive for one issue: fill from the depth
// palette, border from the issue state.
func nodeStyle(issue *github.Issue, depths *graph.Depths) string {
	fill := ColorForDepth(depths.Depth(issue.Number))
	if issue.State == github.StateClosed {
		return fmt.Sprintf("fill:%s,stroke:#616161,stroke-width:2px,stroke-dasharray:5 5", fill)
	}
	return fmt.Sprintf("fill:%s,stroke:#333", fill)
}

// escapeLabel makes a free-form title safe inside a quoted Mermaid label.
var labelEscaper = strings.NewReplacer(
	"\"", "#quot;",
	"<", "#lt;",
	">", "#gt;",
	"\n", " ",
	"\r", " ",
)

func escapeLabel(title string) string {
	return labelEscaper.Replace(title)
}
