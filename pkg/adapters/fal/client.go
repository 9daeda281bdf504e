package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

const (
	defaultQueueURL     = "https://queue.fal.run"
	defaultSyncURL      = "https://fal.run"
	defaultApp          = "fal-ai/any-llm"
	defaultPollInterval = 500 * time.Millisecond
)

// Client implements ports.InferenceClient against the fal queue API:
// submit the request, poll its status (relaying log lines), then fetch the
// response once the queue reports completion.
type Client struct {
	queueURL     string
	syncURL      string
	app          string
	httpClient   *http.Client
	pollInterval time.Duration
	syncMode     bool
	logger       *slog.Logger

	mu         sync.RWMutex
	credential domain.Credential
}

type Option func(*Client)

// WithBaseURL overrides both the queue and sync endpoints, for tests and
// self-hosted gateways.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		url = strings.TrimRight(url, "/")
		c.queueURL = url
		c.syncURL = url
	}
}

// WithApp selects the gateway application handling the requests.
func WithApp(app string) Option {
	return func(c *Client) {
		c.app = strings.Trim(app, "/")
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPollInterval sets the pause between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithSyncMode makes Generate issue a single blocking call instead of the
// queue round trip. No log lines are relayed in this mode.
func WithSyncMode() Option {
	return func(c *Client) {
		c.syncMode = true
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates an unconfigured client. Configure must install a credential
// before Generate is called.
func New(opts ...Option) *Client {
	c := &Client{
		queueURL:     defaultQueueURL,
		syncURL:      defaultSyncURL,
		app:          defaultApp,
		httpClient:   &http.Client{}, // no client-side timeout; the remote owns deadlines
		pollInterval: defaultPollInterval,
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ ports.InferenceClient = (*Client)(nil)

// Configure installs the credential used on subsequent calls.
func (c *Client) Configure(credential domain.Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = credential
}

func (c *Client) authorization() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return "Key " + string(c.credential)
}

type generatePayload struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type queueSubmission struct {
	RequestID string `json:"request_id"`
}

type queueStatus struct {
	Status string     `json:"status"`
	Logs   []queueLog `json:"logs"`
}

type queueLog struct {
	Message   string `json:"message"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
}

type generateResponse struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// Generate submits the request and blocks until the gateway settles it.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest, logf ports.LogFunc) (domain.GenerationResult, error) {
	if c.syncMode {
		return c.generateSync(ctx, req)
	}

	submission, err := c.submit(ctx, req)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	c.logger.DebugContext(ctx, "request queued", "request_id", submission.RequestID, "model", req.Model)

	if err := c.awaitCompletion(ctx, submission.RequestID, logf); err != nil {
		return domain.GenerationResult{}, err
	}

	return c.fetchResponse(ctx, submission.RequestID)
}

func (c *Client) submit(ctx context.Context, req domain.GenerationRequest) (queueSubmission, error) {
	url := fmt.Sprintf("%s/%s", c.queueURL, c.app)

	var submission queueSubmission
	if err := c.call(ctx, http.MethodPost, url, generatePayload{Model: string(req.Model), Prompt: req.Prompt}, &submission); err != nil {
		return queueSubmission{}, fmt.Errorf("submitting request: %w", err)
	}
	if submission.RequestID == "" {
		return queueSubmission{}, &domain.RemoteError{Err: fmt.Errorf("queue answered without a request id")}
	}
	return submission, nil
}

func (c *Client) awaitCompletion(ctx context.Context, requestID string, logf ports.LogFunc) error {
	url := fmt.Sprintf("%s/%s/requests/%s/status?logs=1", c.queueURL, c.app, requestID)

	seenLogs := 0
	for {
		var status queueStatus
		if err := c.call(ctx, http.MethodGet, url, nil, &status); err != nil {
			return fmt.Errorf("polling status: %w", err)
		}

		// The queue resends the full log history on every poll.
		if logf != nil {
			for _, entry := range status.Logs[min(seenLogs, len(status.Logs)):] {
				logf(toLogEntry(entry))
			}
		}
		if len(status.Logs) > seenLogs {
			seenLogs = len(status.Logs)
		}

		if status.Status == "COMPLETED" {
			return nil
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) fetchResponse(ctx context.Context, requestID string) (domain.GenerationResult, error) {
	url := fmt.Sprintf("%s/%s/requests/%s", c.queueURL, c.app, requestID)

	var resp generateResponse
	if err := c.call(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return domain.GenerationResult{}, fmt.Errorf("fetching response: %w", err)
	}
	if resp.Error != "" {
		return domain.GenerationResult{}, &domain.RemoteError{Detail: resp.Error}
	}

	return domain.GenerationResult{Output: resp.Output}, nil
}

func (c *Client) generateSync(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	url := fmt.Sprintf("%s/%s", c.syncURL, c.app)

	var resp generateResponse
	if err := c.call(ctx, http.MethodPost, url, generatePayload{Model: string(req.Model), Prompt: req.Prompt}, &resp); err != nil {
		return domain.GenerationResult{}, err
	}
	if resp.Error != "" {
		return domain.GenerationResult{}, &domain.RemoteError{Detail: resp.Error}
	}

	return domain.GenerationResult{Output: resp.Output}, nil
}

// call performs one authorized round trip and decodes a 2xx JSON body into out.
// Non-2xx answers become *domain.RemoteError carrying the status and any detail
// line the error body offers.
func (c *Client) call(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", c.authorization())
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &domain.RemoteError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.RemoteError{
			Status: resp.StatusCode,
			Detail: errorDetail(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.RemoteError{Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

func toLogEntry(entry queueLog) domain.LogEntry {
	ts, _ := time.Parse(time.RFC3339, entry.Timestamp)
	return domain.LogEntry{
		Message:   entry.Message,
		Level:     entry.Level,
		Timestamp: ts,
	}
}

// errorDetail pulls the human-readable detail line out of a gateway error
// body. The gateway answers either {"detail": "..."} or, for validation
// failures, {"detail": [{"msg": "..."}, ...]}.
func errorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil {
		return ""
	}

	var plain struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &plain); err == nil && plain.Detail != "" {
		return plain.Detail
	}

	var structured struct {
		Detail []struct {
			Msg string `json:"msg"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(data, &structured); err == nil && len(structured.Detail) > 0 {
		msgs := make([]string, 0, len(structured.Detail))
		for _, d := range structured.Detail {
			if d.Msg != "" {
				msgs = append(msgs, d.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
