package github

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestHasMarkedComment(t *testing.T) {
	marker := Marker("triage")

	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{
			name:     "marker present",
			response: `{"comments": [{"body": "Automation trigger: triage\n\n` + marker + `", "author": {"login": "issuegraph-bot"}}]}`,
			want:     true,
		},
		{
			name:     "other comments only",
			response: `{"comments": [{"body": "looks good to me", "author": {"login": "reviewer"}}]}`,
			want:     false,
		},
		{
			name:     "different trigger name",
			response: `{"comments": [{"body": "` + Marker("rebuild") + `", "author": {"login": "issuegraph-bot"}}]}`,
			want:     false,
		},
		{
			name:     "no comments",
			response: `{"comments": []}`,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newFakeClient(t, tt.response, false)
			got, err := client.HasMarkedComment(context.Background(), testRepo, 7, marker)
			if err != nil {
				t.Fatalf("HasMarkedComment returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasMarkedComment = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasMarkedCommentFetchFailure(t *testing.T) {
	client, _ := newFakeClient(t, "", true)

	_, err := client.HasMarkedComment(context.Background(), testRepo, 7, Marker("triage"))
	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error = %v, want QueryError", err)
	}
}

func TestPostComment(t *testing.T) {
	client, runner := newFakeClient(t, "", false)

	marker := Marker("triage")
	err := client.PostComment(context.Background(), testRepo, 42, "Automation trigger: triage", marker, "issuegraph-abc123")
	if err != nil {
		t.Fatalf("PostComment returned error: %v", err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("got %d gh calls, want 1", len(runner.calls))
	}
	call := runner.calls[0]
	joined := strings.Join(call, " ")
	if !strings.Contains(joined, "issue comment 42") {
		t.Errorf("expected gh issue comment invocation, got: %s", joined)
	}

	body := call[len(call)-1]
	if !strings.Contains(body, marker) {
		t.Errorf("posted body missing dedup marker: %q", body)
	}
	if !strings.Contains(body, "issuegraph:run:issuegraph-abc123") {
		t.Errorf("posted body missing run signature: %q", body)
	}
}
