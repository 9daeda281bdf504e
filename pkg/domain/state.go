package domain

// Phase defines the current mode of the generation state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"       // No request outstanding and no outcome recorded
	PhaseInFlight  Phase = "in_flight"  // A generation request has been issued and not yet settled
	PhaseSucceeded Phase = "succeeded"  // Terminal: Output holds the result
	PhaseFailed    Phase = "failed"     // Terminal: Error holds the presentable message
)

// Settled reports whether the phase is a terminal outcome.
func (p Phase) Settled() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// State represents the current snapshot of the node.
type State struct {
	// Phase indicates whether the node is idle, waiting on the remote, or settled.
	Phase Phase `json:"phase"`

	// Model is the currently selected model. Changing it never touches a
	// request that is already in flight.
	Model Model `json:"model"`

	// Output holds the generated text. Only meaningful when Phase == PhaseSucceeded.
	Output string `json:"output,omitempty"`

	// Error holds the user-presentable failure message. Only meaningful when
	// Phase == PhaseFailed.
	Error string `json:"error,omitempty"`

	// RequestID identifies the request that produced (or is producing) the
	// current outcome.
	RequestID string `json:"request_id,omitempty"`
}

// NewState creates a clean idle state with the default model selected.
func NewState() State {
	return State{
		Phase: PhaseIdle,
		Model: DefaultModel(),
	}
}

// Begin moves the state in flight for the given request, discarding any
// previous outcome.
func (s *State) Begin(requestID string) {
	s.Phase = PhaseInFlight
	s.Output = ""
	s.Error = ""
	s.RequestID = requestID
}

// Succeed settles the state with the generated output. Output and Error are
// mutually exclusive, so any previous error is cleared.
func (s *State) Succeed(output string) {
	s.Phase = PhaseSucceeded
	s.Output = output
	s.Error = ""
}

// Fail settles the state with a presentable message, clearing any previous
// output.
func (s *State) Fail(message string) {
	s.Phase = PhaseFailed
	s.Error = message
	s.Output = ""
}
