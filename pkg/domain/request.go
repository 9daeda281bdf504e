package domain

import "time"

// EmptyOutputText is stored as the output when the remote succeeds but returns
// no text at all.
const EmptyOutputText = "No output received."

// GenerationRequest is an accepted unit of work. It is built when a prompt
// passes the entry guard and is immutable afterwards; in particular it keeps
// the model selected at acceptance time, so later selection changes cannot
// affect a request that is already in flight.
type GenerationRequest struct {
	// ID correlates the request with its progress events and final state.
	ID string

	// Prompt is the user text, already trimmed and known to be non-empty.
	Prompt string

	// Model is the catalog entry captured when the request was accepted.
	Model Model
}

// GenerationResult carries the remote outcome of a request.
type GenerationResult struct {
	// Output is the generated text. May be empty; the controller substitutes
	// EmptyOutputText before exposing it.
	Output string
}

// LogEntry is one progress line reported by the remote endpoint while a
// request is queued or running.
type LogEntry struct {
	Message   string    `json:"message"`
	Level     string    `json:"level,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
