package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testPrivateKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("cannot generate test key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

func testCredentials(t *testing.T) AppCredentials {
	t.Helper()
	return AppCredentials{
		AppID:          "12345",
		InstallationID: 67890,
		PrivateKeyPEM:  testPrivateKeyPEM(t),
	}
}

func TestNewTokenSourceValidation(t *testing.T) {
	keyPEM := testPrivateKeyPEM(t)

	tests := []struct {
		name  string
		creds AppCredentials
	}{
		{"empty app ID", AppCredentials{InstallationID: 1, PrivateKeyPEM: keyPEM}},
		{"zero installation ID", AppCredentials{AppID: "1", PrivateKeyPEM: keyPEM}},
		{"garbage key", AppCredentials{AppID: "1", InstallationID: 1, PrivateKeyPEM: []byte("not a key")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenSource(tt.creds); err == nil {
				t.Error("NewTokenSource accepted invalid credentials")
			}
		})
	}
}

func TestTokenSourceExchange(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/app/installations/67890/access_tokens" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("missing bearer JWT, got Authorization: %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"token": "ghs_testtoken", "expires_at": %q}`,
			time.Now().Add(time.Hour).Format(time.RFC3339))
	}))
	defer server.Close()

	source, err := NewTokenSource(testCredentials(t), WithAPIBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewTokenSource returned error: %v", err)
	}

	token, err := source.Token(context.Background())
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "ghs_testtoken" {
		t.Errorf("token = %q, want %q", token, "ghs_testtoken")
	}

	// A second call within the validity window must hit the cache.
	if _, err := source.Token(context.Background()); err != nil {
		t.Fatalf("cached Token returned error: %v", err)
	}
	if requests != 1 {
		t.Errorf("exchange requests = %d, want 1 (second call should be cached)", requests)
	}
}

func TestTokenSourceRefreshesNearExpiry(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"token": "ghs_token%d", "expires_at": %q}`,
			requests, time.Now().Add(time.Hour).Format(time.RFC3339))
	}))
	defer server.Close()

	now := time.Now()
	clock := func() time.Time { return now }

	source, err := NewTokenSource(testCredentials(t), WithAPIBaseURL(server.URL), WithClock(clock))
	if err != nil {
		t.Fatalf("NewTokenSource returned error: %v", err)
	}

	if _, err := source.Token(context.Background()); err != nil {
		t.Fatalf("first Token returned error: %v", err)
	}

	// Advance past the refresh buffer: next call must mint a new token.
	now = now.Add(56 * time.Minute)
	token, err := source.Token(context.Background())
	if err != nil {
		t.Fatalf("second Token returned error: %v", err)
	}
	if requests != 2 {
		t.Errorf("exchange requests = %d, want 2 after expiry", requests)
	}
	if token != "ghs_token2" {
		t.Errorf("token = %q, want refreshed token", token)
	}
}

func TestTokenSourceExchangeErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message": "bad credentials"}`, "check App ID"},
		{"forbidden", http.StatusForbidden, `{"message": "denied"}`, "check App permissions"},
		{"not found", http.StatusNotFound, `{"message": "unknown installation"}`, "check installation ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			source, err := NewTokenSource(testCredentials(t), WithAPIBaseURL(server.URL))
			if err != nil {
				t.Fatalf("NewTokenSource returned error: %v", err)
			}

			_, err = source.Token(context.Background())
			if err == nil {
				t.Fatal("Token succeeded, want exchange error")
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q missing %q", err.Error(), tt.wantText)
			}
		})
	}
}

func TestParsePrivateKeyPKCS8(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("cannot generate test key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("cannot marshal PKCS8 key: %v", err)
	}
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	if _, err := parsePrivateKey(pemData); err != nil {
		t.Errorf("parsePrivateKey rejected PKCS8 key: %v", err)
	}
}
