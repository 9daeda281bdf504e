package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

const revealPath = "/get-secret"

// Client implements ports.SecretsService against the platform's edge-function
// secrets endpoint. The endpoint reveals a named secret to any caller holding
// a valid session access token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the secrets endpoint rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ ports.SecretsService = (*Client)(nil)

type revealRequest struct {
	Name string `json:"name"`
}

type revealResponse struct {
	Value string `json:"value"`
}

// Reveal fetches the named secret using the session's access token.
func (c *Client) Reveal(ctx context.Context, name string, accessToken string) (domain.Credential, error) {
	payload, err := json.Marshal(revealRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("encoding reveal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+revealPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building reveal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling secrets service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return "", fmt.Errorf("secrets service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var reveal revealResponse
	if err := json.NewDecoder(resp.Body).Decode(&reveal); err != nil {
		return "", fmt.Errorf("decoding reveal response: %w", err)
	}
	if reveal.Value == "" {
		return "", fmt.Errorf("secret %q: %w", name, domain.ErrCredentialUnavailable)
	}

	return domain.Credential(reveal.Value), nil
}
