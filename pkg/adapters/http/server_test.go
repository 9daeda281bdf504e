package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratitude5dee/tendril"
	"github.com/gratitude5dee/tendril/internal/logging"
	"github.com/gratitude5dee/tendril/internal/testutils"
	adapter "github.com/gratitude5dee/tendril/pkg/adapters/http"
	"github.com/gratitude5dee/tendril/pkg/domain"
)

func newTestHandler(t *testing.T, client *testutils.FakeInferenceClient) (http.Handler, *tendril.Node) {
	t.Helper()

	node, err := tendril.New(tendril.WithInferenceClient(client))
	require.NoError(t, err)

	return adapter.NewHandler(node, logging.NewNop()), node
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GenerateSucceeds(t *testing.T) {
	client := &testutils.FakeInferenceClient{
		Result: domain.GenerationResult{Output: "generated"},
	}
	handler, node := newTestHandler(t, client)
	require.NoError(t, node.SetCredential(context.Background(), "sk-1"))

	rec := postJSON(t, handler, "/generate", map[string]string{"prompt": "hello"})

	require.Equal(t, http.StatusOK, rec.Code)

	var state domain.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, domain.PhaseSucceeded, state.Phase)
	assert.Equal(t, "generated", state.Output)
}

func TestHandler_GenerateSettledFailureIsOK(t *testing.T) {
	// No credential stored: the request settles as failed, which is still 200.
	handler, _ := newTestHandler(t, &testutils.FakeInferenceClient{})

	rec := postJSON(t, handler, "/generate", map[string]string{"prompt": "hello"})

	require.Equal(t, http.StatusOK, rec.Code)

	var state domain.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, domain.PhaseFailed, state.Phase)
	assert.Contains(t, state.Error, "not found")
}

func TestHandler_GenerateBlankPrompt(t *testing.T) {
	handler, _ := newTestHandler(t, &testutils.FakeInferenceClient{})

	rec := postJSON(t, handler, "/generate", map[string]string{"prompt": "   "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "blank")
}

func TestHandler_GenerateWhileBusy(t *testing.T) {
	client := &testutils.FakeInferenceClient{
		Result:  domain.GenerationResult{Output: "slow"},
		Entered: make(chan struct{}, 1),
		Release: make(chan struct{}),
	}
	handler, node := newTestHandler(t, client)
	require.NoError(t, node.SetCredential(context.Background(), "sk-1"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		postJSON(t, handler, "/generate", map[string]string{"prompt": "first"})
	}()
	<-client.Entered

	rec := postJSON(t, handler, "/generate", map[string]string{"prompt": "second"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(client.Release)
	<-done
}

func TestHandler_InitializeUnauthorized(t *testing.T) {
	handler, _ := newTestHandler(t, &testutils.FakeInferenceClient{})

	req := httptest.NewRequest(http.MethodPost, "/initialize", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_ModelEndpoints(t *testing.T) {
	handler, _ := newTestHandler(t, &testutils.FakeInferenceClient{})

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var models adapter.ModelsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &models))
	assert.Len(t, models.Models, 11)
	assert.Equal(t, domain.DefaultModel(), models.Default)
	assert.Equal(t, models.Models[0], models.Default)

	// Switch to a catalog model.
	payload, _ := json.Marshal(map[string]string{"model": "openai/gpt-4o-mini"})
	req = httptest.NewRequest(http.MethodPut, "/model", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var state domain.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, domain.Model("openai/gpt-4o-mini"), state.Model)

	// Unknown model is rejected.
	payload, _ = json.Marshal(map[string]string{"model": "acme/unreleased"})
	req = httptest.NewRequest(http.MethodPut, "/model", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CredentialLifecycle(t *testing.T) {
	handler, _ := newTestHandler(t, &testutils.FakeInferenceClient{})

	get := func() adapter.CredentialStatus {
		req := httptest.NewRequest(http.MethodGet, "/credential", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var status adapter.CredentialStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		return status
	}

	assert.False(t, get().Present)

	payload, _ := json.Marshal(map[string]string{"credential": "sk-manual"})
	req := httptest.NewRequest(http.MethodPut, "/credential", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.True(t, get().Present)

	// The raw value never appears in any response.
	req = httptest.NewRequest(http.MethodGet, "/credential", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotContains(t, rec.Body.String(), "sk-manual")

	req = httptest.NewRequest(http.MethodDelete, "/credential", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.False(t, get().Present)

	// Blank writes are rejected.
	payload, _ = json.Marshal(map[string]string{"credential": ""})
	req = httptest.NewRequest(http.MethodPut, "/credential", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Health(t *testing.T) {
	handler, _ := newTestHandler(t, &testutils.FakeInferenceClient{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandler_CORSPreflight(t *testing.T) {
	handler, _ := newTestHandler(t, &testutils.FakeInferenceClient{})

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_EventsStream(t *testing.T) {
	client := &testutils.FakeInferenceClient{
		Logs:   []domain.LogEntry{{Message: "running"}},
		Result: domain.GenerationResult{Output: "done"},
	}
	handler, node := newTestHandler(t, client)
	require.NoError(t, node.SetCredential(context.Background(), "sk-1"))

	ts := httptest.NewServer(handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)

	// Greeting arrives once the subscription is live.
	requireEventLine(t, scanner, "event: ping")

	post, err := http.Post(ts.URL+"/generate", "application/json",
		strings.NewReader(`{"prompt":"hello"}`))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusOK, post.StatusCode)

	var kinds []string
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "event: ") {
			continue
		}
		kinds = append(kinds, strings.TrimPrefix(line, "event: "))
		if strings.HasSuffix(line, "succeeded") || strings.HasSuffix(line, "failed") {
			break
		}
	}

	assert.Equal(t, []string{"started", "log", "succeeded"}, kinds)
}

func requireEventLine(t *testing.T, scanner *bufio.Scanner, want string) {
	t.Helper()
	for scanner.Scan() {
		if scanner.Text() == want {
			return
		}
	}
	t.Fatalf("did not receive %q before stream ended", want)
}
