package render

import (
	"strings"
	"testing"

	"issuegraph/internal/github"
	"issuegraph/internal/graph"
)

func TestColorForDepth(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		want  string
	}{
		{"depth zero", 0, "#ffcdd2"},
		{"depth three", 3, "#ffe082"},
		{"depth nine", 9, "#fff59d"},
		{"depth ten wraps to zero", 10, "#ffcdd2"},
		{"depth thirteen matches depth three", 13, "#ffe082"},
		{"unknown depth gets fallback", -1, "#e0e0e0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColorForDepth(tt.depth); got != tt.want {
				t.Errorf("ColorForDepth(%d) = %q, want %q", tt.depth, got, tt.want)
			}
		})
	}
}

func TestMermaidSmallGraph(t *testing.T) {
	g := graph.New([]github.Issue{
		{Number: 1, State: github.StateOpen, Title: "foundation"},
		{Number: 2, State: github.StateOpen, Title: "middle", BlockedBy: []int{1}},
		{Number: 3, State: github.StateClosed, Title: "top", BlockedBy: []int{2}},
	})
	depths, err := graph.ComputeDepths(g)
	if err != nil {
		t.Fatalf("ComputeDepths returned error: %v", err)
	}

	var out strings.Builder
	summary, err := Mermaid(&out, g, depths)
	if err != nil {
		t.Fatalf("Mermaid returned error: %v", err)
	}

	if summary.Issues != 3 {
		t.Errorf("summary.Issues = %d, want 3", summary.Issues)
	}
	if summary.MaxDepth != 2 {
		t.Errorf("summary.MaxDepth = %d, want 2", summary.MaxDepth)
	}

	rendered := out.String()

	for _, want := range []string{
		"graph TD",
		`i1["#1 foundation"]`,
		`i2["#2 middle"]`,
		`i3["#3 top"]`,
		"i1 --> i2",
		"i2 --> i3",
		"%% issues: 3",
		"%% max depth: 2",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("output missing %q:\n%s", want, rendered)
		}
	}

	// Depth-indexed fills: 0, 1, 2.
	for _, want := range []string{
		"style i1 fill:#ffcdd2",
		"style i2 fill:#c5e1a5",
		"style i3 fill:#bbdefb",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("output missing style %q:\n%s", want, rendered)
		}
	}

	// Closed issue gets the dashed border, open issues keep solid strokes.
	if !strings.Contains(rendered, "style i3 fill:#bbdefb,stroke:#616161,stroke-width:2px,stroke-dasharray:5 5") {
		t.Errorf("closed issue #3 missing dashed border:\n%s", rendered)
	}
	if strings.Contains(rendered, "style i1 fill:#ffcdd2,stroke:#616161") {
		t.Errorf("open issue #1 unexpectedly styled as closed:\n%s", rendered)
	}
}

func TestMermaidEscapesTitles(t *testing.T) {
	g := graph.New([]github.Issue{
		{Number: 1, State: github.StateOpen, Title: `fix "quoted" <thing>` + "\nsecond line"},
	})
	depths, err := graph.ComputeDepths(g)
	if err != nil {
		t.Fatalf("ComputeDepths returned error: %v", err)
	}

	var out strings.Builder
	if _, err := Mermaid(&out, g, depths); err != nil {
		t.Fatalf("Mermaid returned error: %v", err)
	}

	rendered := out.String()
	if !strings.Contains(rendered, `i1["#1 fix #quot;quoted#quot; #lt;thing#gt; second line"]`) {
		t.Errorf("title not escaped:\n%s", rendered)
	}
}

func TestMermaidSkipsEdgesOutsideSnapshot(t *testing.T) {
	g := graph.New([]github.Issue{
		{Number: 1, State: github.StateOpen, Title: "depends on stale ref", BlockedBy: []int{999}},
	})
	depths, err := graph.ComputeDepths(g)
	if err != nil {
		t.Fatalf("ComputeDepths returned error: %v", err)
	}

	var out strings.Builder
	summary, err := Mermaid(&out, g, depths)
	if err != nil {
		t.Fatalf("Mermaid returned error: %v", err)
	}

	if strings.Contains(out.String(), "i999") {
		t.Errorf("edge to missing issue rendered:\n%s", out.String())
	}
	// The stale blocker still counts for depth.
	if summary.MaxDepth != 1 {
		t.Errorf("summary.MaxDepth = %d, want 1", summary.MaxDepth)
	}
}

func TestMermaidDepthWrapReusesColor(t *testing.T) {
	// A 14-issue chain: depth 13 must get the same fill as depth 3.
	issues := make([]github.Issue, 0, 14)
	for n := 1; n <= 14; n++ {
		issue := github.Issue{Number: n, State: github.StateOpen, Title: "step"}
		if n > 1 {
			issue.BlockedBy = []int{n - 1}
		}
		issues = append(issues, issue)
	}
	g := graph.New(issues)
	depths, err := graph.ComputeDepths(g)
	if err != nil {
		t.Fatalf("ComputeDepths returned error: %v", err)
	}

	var out strings.Builder
	if _, err := Mermaid(&out, g, depths); err != nil {
		t.Fatalf("Mermaid returned error: %v", err)
	}

	rendered := out.String()
	if !strings.Contains(rendered, "style i4 fill:#ffe082") {
		t.Errorf("depth-3 issue missing expected fill:\n%s", rendered)
	}
	if !strings.Contains(rendered, "style i14 fill:#ffe082") {
		t.Errorf("depth-13 issue should reuse the depth-3 fill:\n%s", rendered)
	}
}
