// Package genai - client.go calls the generative-model provider.
//
// DESIGN: One upstream call per gateway request, no retries. The provider is
// the single point of variable (seconds-scale) latency; a failure here is
// surfaced to the caller, never masked. The API key is attached via the
// x-goog-api-key header and never appears in URLs or logs.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/train-anywhere/coach-gateway/internal/config"
	"github.com/train-anywhere/coach-gateway/internal/utils"
)

// Client is the model provider client. Stateless; one instance is shared by
// all requests.
type Client struct {
	baseURL       string
	apiKey        string
	generateModel string
	embedModel    string
	httpClient    *http.Client
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

// NewClient creates a new model provider client.
func NewClient(baseURL, apiKey, generateModel, embedModel string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		generateModel: generateModel,
		embedModel:    embedModel,
		httpClient: &http.Client{
			Timeout: config.DefaultUpstreamTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GenerateContent sends a generateContent request and returns the first
// candidate's text.
func (c *Client) GenerateContent(ctx context.Context, req GenerateContentRequest) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.generateModel)

	raw, err := c.post(ctx, url, req)
	if err != nil {
		return "", err
	}

	text := gjson.GetBytes(raw, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", fmt.Errorf("model response contained no candidate text")
	}
	return text, nil
}

// EmbedText returns the embedding vector for a text query.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float64, error) {
	url := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, c.embedModel)

	req := EmbedContentRequest{
		Content: Content{Parts: []Part{{Text: text}}},
	}
	raw, err := c.post(ctx, url, req)
	if err != nil {
		return nil, err
	}

	values := gjson.GetBytes(raw, "embedding.values")
	if !values.Exists() || !values.IsArray() {
		return nil, fmt.Errorf("model response contained no embedding values")
	}

	arr := values.Array()
	embedding := make([]float64, len(arr))
	for i, v := range arr {
		embedding[i] = v.Float()
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("model returned an empty embedding")
	}
	return embedding, nil
}

// post sends a JSON request to the provider and returns the raw response body.
func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading model response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Debug().
			Int("status", resp.StatusCode).
			Str("body", utils.Truncate(string(respBody), config.MaxErrorBodyLogLen)).
			Msg("model provider returned an error")
		return nil, fmt.Errorf("model provider returned status %d", resp.StatusCode)
	}

	return respBody, nil
}
