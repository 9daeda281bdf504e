// Package mcp exposes a text-generation node as an MCP server, so agent
// hosts can drive it over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gratitude5dee/tendril"
	"github.com/gratitude5dee/tendril/internal/dto"
	"github.com/gratitude5dee/tendril/pkg/domain"
)

// ModelsResponse is the structured result of the list_models tool.
type ModelsResponse struct {
	Models  []domain.Model `json:"models" jsonschema_description:"Selectable models in presentation order"`
	Default domain.Model   `json:"default" jsonschema_description:"Model preselected on a fresh node"`
}

// Node defines the interface required by the MCP server to drive generation.
type Node interface {
	Generate(ctx context.Context, prompt string) (domain.State, error)
	SelectModel(model domain.Model) error
	State() domain.State
	Models() []domain.Model
}

// Server wraps a tendril Node and exposes it as an MCP Server.
type Server struct {
	node      Node
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(node Node) *Server {
	s := &Server{
		node:      node,
		mcpServer: server.NewMCPServer("tendril-mcp", tendril.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: generate_text
	generateTool := mcp.NewTool("generate_text",
		mcp.WithDescription("Submit a prompt to the selected model and wait for the settled result."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Prompt to submit; must not be blank")),
		mcp.WithOutputSchema[domain.State](),
	)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))

	// TOOL: select_model
	selectTool := mcp.NewTool("select_model",
		mcp.WithDescription("Switch the model used for future generations."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Catalog model ID, e.g. google/gemini-flash-1.5")),
		mcp.WithOutputSchema[domain.State](),
	)
	s.mcpServer.AddTool(selectTool, mcp.NewStructuredToolHandler(s.handleSelectModel))

	// TOOL: get_state
	stateTool := mcp.NewTool("get_state",
		mcp.WithDescription("Read the node state: phase, selected model and the last outcome."),
		mcp.WithOutputSchema[domain.State](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(
		func(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.State, error) {
			return s.node.State(), nil
		}))

	// TOOL: list_models
	modelsTool := mcp.NewTool("list_models",
		mcp.WithDescription("List the selectable models in presentation order."),
		mcp.WithOutputSchema[ModelsResponse](),
	)
	s.mcpServer.AddTool(modelsTool, mcp.NewStructuredToolHandler(
		func(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ModelsResponse, error) {
			return ModelsResponse{
				Models:  s.node.Models(),
				Default: domain.DefaultModel(),
			}, nil
		}))
}

// Handler methods for structured tools

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.State, error) {
	decoded, err := dto.DecodeGenerateArgs(args)
	if err != nil {
		return domain.State{}, err
	}

	state, err := s.node.Generate(ctx, decoded.Prompt)
	switch {
	case errors.Is(err, domain.ErrPromptEmpty):
		return domain.State{}, fmt.Errorf("prompt must not be blank")
	case errors.Is(err, domain.ErrBusy):
		return domain.State{}, fmt.Errorf("a generation is already in flight; try again once it settles")
	case err != nil:
		return domain.State{}, fmt.Errorf("generate failed: %w", err)
	}

	return state, nil
}

func (s *Server) handleSelectModel(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.State, error) {
	decoded, err := dto.DecodeSelectModelArgs(args)
	if err != nil {
		return domain.State{}, err
	}

	if err := s.node.SelectModel(domain.Model(decoded.Model)); err != nil {
		if errors.Is(err, domain.ErrModelUnknown) {
			return domain.State{}, fmt.Errorf("unknown model %q; call list_models for the catalog", decoded.Model)
		}
		return domain.State{}, err
	}

	return s.node.State(), nil
}

func (s *Server) registerResources() {
	// EXPOSE: tendril://state
	s.mcpServer.AddResource(mcp.NewResource("tendril://state", "Current Node State",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.node.State())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal state: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "tendril://state",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: tendril://models
	s.mcpServer.AddResource(mcp.NewResource("tendril://models", "Model Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(ModelsResponse{
			Models:  s.node.Models(),
			Default: domain.DefaultModel(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal models: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "tendril://models",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
