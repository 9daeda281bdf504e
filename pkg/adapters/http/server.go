// Package http exposes a text-generation node over a small JSON API plus an
// SSE progress stream, the surface an editor panel talks to.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gratitude5dee/tendril"
	"github.com/gratitude5dee/tendril/internal/dto"
	"github.com/gratitude5dee/tendril/pkg/domain"
)

// maxBodyBytes caps request bodies; prompts are small.
const maxBodyBytes = 1 << 20

// Node defines the interface for the node core driven by this server.
type Node interface {
	Initialize(ctx context.Context) error
	Generate(ctx context.Context, prompt string) (domain.State, error)
	State() domain.State
	SelectModel(model domain.Model) error
	Models() []domain.Model
	Subscribe() (<-chan domain.ProgressEvent, func())
	SetCredential(ctx context.Context, credential domain.Credential) error
	ClearCredential(ctx context.Context) error
	HasCredential(ctx context.Context) (bool, error)
}

// ModelsResponse lists the catalog for clients.
type ModelsResponse struct {
	Models  []domain.Model `json:"models"`
	Default domain.Model   `json:"default"`
}

// CredentialStatus reports presence only; the value never leaves the server.
type CredentialStatus struct {
	Present bool `json:"present"`
}

// Server routes editor requests to a node.
type Server struct {
	Node   Node
	Logger *slog.Logger
}

// NewHandler creates the HTTP handler for the node.
func NewHandler(node Node, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	server := &Server{
		Node:   node,
		Logger: logger,
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Post("/initialize", server.Initialize)
	r.Post("/generate", server.Generate)
	r.Get("/state", server.GetState)
	r.Put("/model", server.PutModel)
	r.Get("/models", server.GetModels)
	r.Put("/credential", server.PutCredential)
	r.Delete("/credential", server.DeleteCredential)
	r.Get("/credential", server.GetCredential)
	r.Get("/events", server.SubscribeEvents)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Initialize handles the POST /initialize request.
func (s *Server) Initialize(w http.ResponseWriter, r *http.Request) {
	err := s.Node.Initialize(r.Context())
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrSessionExpired):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrCredentialUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
		s.Logger.Error("Initialize failed", "error", err)
	default:
		http.Error(w, fmt.Sprintf("Initialize error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Initialize failed", "error", err)
	}
}

// Generate handles the POST /generate request. A settled failure is still a
// 200: the outcome lives in the returned state.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var body dto.GenerateArgs
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Generate: Invalid request body", "error", err)
		return
	}

	state, err := s.Node.Generate(r.Context(), body.Prompt)
	switch {
	case errors.Is(err, domain.ErrPromptEmpty):
		http.Error(w, "prompt must not be blank", http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrBusy):
		http.Error(w, "generation already in flight", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, fmt.Sprintf("Generate error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Generate failed", "error", err)
		return
	}

	s.writeJSON(w, state)
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Node.State())
}

// PutModel handles the PUT /model request.
func (s *Server) PutModel(w http.ResponseWriter, r *http.Request) {
	var body dto.SelectModelArgs
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("PutModel: Invalid request body", "error", err)
		return
	}

	if err := s.Node.SelectModel(domain.Model(body.Model)); err != nil {
		if errors.Is(err, domain.ErrModelUnknown) {
			http.Error(w, fmt.Sprintf("unknown model %q", body.Model), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("SelectModel error: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, s.Node.State())
}

// GetModels handles the GET /models request.
func (s *Server) GetModels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, ModelsResponse{
		Models:  s.Node.Models(),
		Default: domain.DefaultModel(),
	})
}

// PutCredential handles the PUT /credential request.
func (s *Server) PutCredential(w http.ResponseWriter, r *http.Request) {
	var body dto.CredentialArgs
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("PutCredential: Invalid request body", "error", err)
		return
	}

	err := s.Node.SetCredential(r.Context(), domain.Credential(body.Credential))
	switch {
	case errors.Is(err, domain.ErrCredentialEmpty):
		http.Error(w, "credential must not be blank", http.StatusBadRequest)
	case err != nil:
		http.Error(w, fmt.Sprintf("SetCredential error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("SetCredential failed", "error", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteCredential handles the DELETE /credential request.
func (s *Server) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.Node.ClearCredential(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("ClearCredential error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("ClearCredential failed", "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCredential handles the GET /credential request. Presence only; the
// stored value is never returned.
func (s *Server) GetCredential(w http.ResponseWriter, r *http.Request) {
	present, err := s.Node.HasCredential(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Credential error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("HasCredential failed", "error", err)
		return
	}
	s.writeJSON(w, CredentialStatus{Present: present})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"app":     "tendril-http",
		"version": tendril.Version,
	})
}

// SubscribeEvents handles the GET /events request (SSE). Each progress event
// is sent as a named SSE event with a JSON payload.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := s.Node.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				s.Logger.Error("SSE: event encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
