// Package store provides a client for the identity/entitlement/vector store.
//
// FILES:
//   - client.go: API client and HTTP helpers
//   - types.go:  Row and identity types
//
// The store speaks a Supabase-compatible REST surface: GoTrue token
// resolution under /auth/v1, PostgREST row reads under /rest/v1, and
// PostgREST RPC for vector similarity search.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/sjson"
)

// Client is the store API client. It is stateless and safe for concurrent
// use; one instance is shared by all requests.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = timeout
	}
}

// NewClient creates a new store client. serviceKey may be empty, in which
// case privileged reads fall back to the anon key.
func NewClient(baseURL, anonKey, serviceKey string, opts ...ClientOption) *Client {
	if serviceKey == "" {
		serviceKey = anonKey
	}

	c := &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// =============================================================================
// IDENTITY
// =============================================================================

// ResolveUser validates a bearer token against the identity store and returns
// the user it belongs to. Any failure (malformed token, expired token,
// transport error) is returned as an error; callers treat them uniformly.
func (c *Client) ResolveUser(ctx context.Context, token string) (*UserIdentity, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity store returned status %d", resp.StatusCode)
	}

	var user UserIdentity
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("parsing identity response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("identity response missing user id")
	}

	return &user, nil
}

// =============================================================================
// ENTITLEMENT
// =============================================================================

// GetProfile fetches the entitlement row for a user id. A missing row is an
// error; callers fail closed either way.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("empty user id")
	}

	url := c.baseURL + "/rest/v1/profiles?id=eq." + userID + "&select=id,is_pro"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setServiceHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entitlement lookup failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entitlement store returned status %d", resp.StatusCode)
	}

	var rows []Profile
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing profile rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no profile row for user")
	}

	return &rows[0], nil
}

// =============================================================================
// VECTOR SEARCH RPC
// =============================================================================

// MatchExercises runs the similarity-search RPC with a query embedding and
// fixed threshold/count parameters. The store's ordering is preserved; no
// re-ranking happens here.
func (c *Client) MatchExercises(ctx context.Context, embedding []float64, threshold float64, count int) ([]Exercise, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}

	payload, err := buildMatchPayload(embedding, threshold, count)
	if err != nil {
		return nil, fmt.Errorf("building rpc payload: %w", err)
	}

	url := c.baseURL + "/rest/v1/rpc/match_exercises"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setServiceHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector search returned status %d", resp.StatusCode)
	}

	var rows []Exercise
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing exercise rows: %w", err)
	}

	return rows, nil
}

// buildMatchPayload assembles the RPC body without an intermediate struct.
func buildMatchPayload(embedding []float64, threshold float64, count int) ([]byte, error) {
	payload := []byte(`{}`)
	payload, err := sjson.SetBytes(payload, "query_embedding", embedding)
	if err != nil {
		return nil, err
	}
	payload, err = sjson.SetBytes(payload, "match_threshold", threshold)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(payload, "match_count", count)
}

// setServiceHeaders attaches the privileged key for server-side reads.
func (c *Client) setServiceHeaders(req *http.Request) {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Accept", "application/json")
}
