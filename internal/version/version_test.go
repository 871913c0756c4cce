package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestShort(t *testing.T) {
	if result := Short(); result != Version {
		t.Errorf("Short() = %q, want %q", result, Version)
	}
}

func TestInfo(t *testing.T) {
	result := Info()

	if !strings.Contains(result, "issuegraph") {
		t.Errorf("Info() should contain 'issuegraph', got %q", result)
	}
	if !strings.Contains(result, Version) {
		t.Errorf("Info() should contain version %q, got %q", Version, result)
	}
	if !strings.Contains(result, "commit:") {
		t.Errorf("Info() should contain 'commit:', got %q", result)
	}
	if !strings.Contains(result, runtime.Version()) {
		t.Errorf("Info() should contain Go version %q, got %q", runtime.Version(), result)
	}
}

func TestInfoCommitTruncation(t *testing.T) {
	originalCommit := Commit
	defer func() { Commit = originalCommit }()

	Commit = "abc123456789abcdef"
	result := Info()

	if !strings.Contains(result, "abc1234") {
		t.Errorf("Info() should contain truncated commit 'abc1234', got %q", result)
	}
	if strings.Contains(result, "abc123456789abcdef") {
		t.Errorf("Info() should NOT contain full commit, got %q", result)
	}
}

func TestFull(t *testing.T) {
	result := Full()

	for _, want := range []string{"issuegraph", Version, "Commit:", "Built:", "Go version:", "OS/Arch:", runtime.GOOS, runtime.GOARCH} {
		if !strings.Contains(result, want) {
			t.Errorf("Full() should contain %q, got %q", want, result)
		}
	}

	if lines := strings.Split(result, "\n"); len(lines) < 5 {
		t.Errorf("Full() should have at least 5 lines, got %d: %q", len(lines), result)
	}
}
