// Package security provides helpers for keeping credentials out of
// diagnostic output.
package security

import "regexp"

// Diagnostics frequently include raw gh output and HTTP error bodies.
// Both can carry live credentials, so everything headed for a log sink
// passes through Redact first.
var redactPatterns = []*regexp.Regexp{
	// GitHub tokens: classic PATs, fine-grained PATs, app installation
	// and OAuth tokens all share the gh*_ prefix scheme.
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{16,255}`),
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,255}`),
	// Bearer tokens in Authorization headers.
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`),
	// Signed JWTs (three base64url segments).
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
	// PEM-encoded private keys.
	regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`),
	// Credentials embedded in URLs.
	regexp.MustCompile(`://[^/\s:]+:[^/\s@]+@`),
}

// Redact replaces credential material in s with [REDACTED] markers.
// The original string is never modified.
func Redact(s string) string {
	for _, re := range redactPatterns {
		s = re.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}
