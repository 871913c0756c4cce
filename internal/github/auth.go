package github

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// appJWTLifetime is how long minted App JWTs stay valid. GitHub rejects
// anything above ten minutes.
const appJWTLifetime = 10 * time.Minute

// tokenRefreshBuffer is how long before expiry a cached installation token
// is considered stale. Installation tokens live one hour.
const tokenRefreshBuffer = 5 * time.Minute

// AppCredentials identifies a GitHub App installation.
type AppCredentials struct {
	AppID          string
	InstallationID int64
	PrivateKeyPEM  []byte
}

// TokenSource mints GitHub App installation tokens on demand and caches
// them until shortly before expiry. Safe for concurrent use.
type TokenSource struct {
	creds      AppCredentials
	privateKey *rsa.PrivateKey
	httpClient *http.Client
	baseURL    string
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// TokenSourceOption configures a TokenSource.
type TokenSourceOption func(*TokenSource)

// WithAPIBaseURL points the token exchange at a different API endpoint
// (tests, GitHub Enterprise).
func WithAPIBaseURL(url string) TokenSourceOption {
	return func(s *TokenSource) {
		s.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client used for the token exchange.
func WithHTTPClient(client *http.Client) TokenSourceOption {
	return func(s *TokenSource) {
		s.httpClient = client
	}
}

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) TokenSourceOption {
	return func(s *TokenSource) {
		s.now = now
	}
}

// NewTokenSource validates the credentials and parses the private key.
func NewTokenSource(creds AppCredentials, opts ...TokenSourceOption) (*TokenSource, error) {
	if creds.AppID == "" {
		return nil, fmt.Errorf("app ID cannot be empty")
	}
	if creds.InstallationID <= 0 {
		return nil, fmt.Errorf("installation ID must be positive")
	}

	key, err := parsePrivateKey(creds.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("cannot parse App private key: %w", err)
	}

	s := &TokenSource{
		creds:      creds,
		privateKey: key,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.github.com",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Token returns a valid installation token, minting a fresh one when the
// cached token is missing or within the refresh buffer of expiry.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.expiresAt.After(s.now().Add(tokenRefreshBuffer)) {
		return s.token, nil
	}

	appJWT, err := s.mintJWT()
	if err != nil {
		return "", fmt.Errorf("cannot mint App JWT: %w", err)
	}

	token, expiresAt, err := s.exchange(ctx, appJWT)
	if err != nil {
		return "", fmt.Errorf("cannot exchange App JWT for installation token: %w", err)
	}

	s.token = token
	s.expiresAt = expiresAt
	return s.token, nil
}

// mintJWT signs a short-lived RS256 JWT identifying the App.
func (s *TokenSource) mintJWT() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.creds.AppID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
}

// exchange trades an App JWT for an installation access token.
func (s *TokenSource) exchange(ctx context.Context, appJWT string) (string, time.Time, error) {
	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", s.baseURL, s.creds.InstallationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, err
	}

	if resp.StatusCode != http.StatusCreated {
		return "", time.Time{}, exchangeError(resp.StatusCode, body)
	}

	var payload struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", time.Time{}, fmt.Errorf("unparseable token response: %w", err)
	}
	return payload.Token, payload.ExpiresAt, nil
}

// exchangeError maps token-exchange failures to actionable messages.
func exchangeError(statusCode int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("token exchange failed (status %d): %s", statusCode, string(body))
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("unauthorized: %s (check App ID and private key)", payload.Message)
	case http.StatusForbidden:
		return fmt.Errorf("forbidden: %s (check App permissions)", payload.Message)
	case http.StatusNotFound:
		return fmt.Errorf("not found: %s (check installation ID)", payload.Message)
	default:
		return fmt.Errorf("token exchange failed (status %d): %s", statusCode, payload.Message)
	}
}

// parsePrivateKey accepts PKCS#1 (RSA PRIVATE KEY) and PKCS#8 (PRIVATE KEY)
// PEM blocks, the two formats GitHub hands out.
func parsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}
	return rsaKey, nil
}
