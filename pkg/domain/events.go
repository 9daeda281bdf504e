package domain

import (
	"context"
	"time"
)

// EventKind defines the category of a progress event.
type EventKind string

const (
	EventStarted   EventKind = "started"   // Request accepted and handed to the remote
	EventLog       EventKind = "log"       // Progress line relayed from the remote queue
	EventSucceeded EventKind = "succeeded" // Terminal: output recorded
	EventFailed    EventKind = "failed"    // Terminal: failure recorded
)

// Terminal reports whether the kind closes a request's event sequence.
func (k EventKind) Terminal() bool {
	return k == EventSucceeded || k == EventFailed
}

// ProgressEvent narrates one step of a generation request. Sequences are
// finite: every accepted request emits exactly one started event, zero or
// more log events, and exactly one terminal event. Events are observability
// only; the State snapshot is the source of truth.
type ProgressEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	RequestID string    `json:"request_id"`
	Model     Model     `json:"model"`
	Message   string    `json:"message,omitempty"`
}

// LifecycleHooks defines callbacks for node observability. All fields are
// optional and invoked synchronously on the generation path; keep them fast.
type LifecycleHooks struct {
	OnGenerateStart func(context.Context, *ProgressEvent)
	OnProgress      func(context.Context, *ProgressEvent)
	OnGenerateEnd   func(context.Context, *ProgressEvent)
}

// Severity grades a Notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a short, fire-and-forget message for the user. Emitting one never
// fails and never blocks the operation that raised it.
type Notice struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Severity    Severity `json:"severity"`
}
