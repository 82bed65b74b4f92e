package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingConfig means the deployment provides no usable credential.
	ErrMissingConfig = errors.New("credentials: missing configuration")
	// ErrSigningFailed means the service-account key could not be used.
	ErrSigningFailed = errors.New("credentials: assertion signing failed")
	// ErrExchangeFailed means the token endpoint rejected the assertion.
	ErrExchangeFailed = errors.New("credentials: token exchange failed")
)

const (
	datastoreScope = "https://www.googleapis.com/auth/datastore"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL   = time.Hour
)

// Source supplies short-lived bearer tokens for the document store.
// Implementations must be safe for concurrent use.
type Source interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticSource returns a pre-issued access token from configuration.
type StaticSource struct {
	token string
}

// NewStaticSource creates a StaticSource. An empty token is allowed at
// construction and reported on first use.
func NewStaticSource(token string) *StaticSource {
	return &StaticSource{token: token}
}

func (s *StaticSource) AccessToken(_ context.Context) (string, error) {
	if s.token == "" {
		return "", ErrMissingConfig
	}
	return s.token, nil
}

// ServiceAccountSource mints a signed assertion from a service-account key
// and exchanges it for an access token via the OAuth2 JWT-bearer grant.
type ServiceAccountSource struct {
	email         string
	privateKeyPEM string
	tokenEndpoint string
	client        *http.Client
}

// NewServiceAccountSource creates a ServiceAccountSource. The key is kept as
// PEM and parsed on use so that a malformed key surfaces as a credential
// error, not a startup crash.
func NewServiceAccountSource(email, privateKeyPEM, tokenEndpoint string) *ServiceAccountSource {
	return &ServiceAccountSource{
		email:         email,
		privateKeyPEM: privateKeyPEM,
		tokenEndpoint: tokenEndpoint,
		client:        &http.Client{Timeout: 5 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (s *ServiceAccountSource) AccessToken(ctx context.Context) (string, error) {
	if s.email == "" || s.privateKeyPEM == "" {
		return "", ErrMissingConfig
	}

	assertion, err := s.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("credentials: building exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("credentials: token exchange request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The upstream body may describe our key material; summarize instead
		// of propagating it.
		return "", fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("credentials: reading exchange response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("credentials: decoding exchange response: %w", err)
	}

	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrExchangeFailed)
	}

	return tr.AccessToken, nil
}

func (s *ServiceAccountSource) signAssertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(s.privateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.email,
		"scope": datastoreScope,
		"aud":   s.tokenEndpoint,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	return assertion, nil
}

// CachedSource wraps a Source and reuses its token until close to expiry.
// Tokens from the store are valid for up to an hour; re-minting per request
// is wasteful.
type CachedSource struct {
	source Source

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewCachedSource wraps src with an expiry-aware cache.
func NewCachedSource(src Source) *CachedSource {
	return &CachedSource{source: src}
}

// cacheTTL stays under the one-hour token validity so in-flight lookups
// never carry an expired credential.
const cacheTTL = 55 * time.Minute

func (c *CachedSource) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expires) {
		return c.token, nil
	}

	token, err := c.source.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expires = time.Now().Add(cacheTTL)
	return token, nil
}
