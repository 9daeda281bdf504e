package runtime

import (
	"io"
	"log/slog"
	"sync"

	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

// DefaultSecretName is the platform secret holding the inference credential.
const DefaultSecretName = "FAL_KEY"

// Node is the core state machine of a text-generation node. It owns the
// observable State, resolves the credential through the injected ports, and
// carries accepted requests to the inference client.
type Node struct {
	store      ports.CredentialStore
	secrets    ports.SecretsService
	client     ports.InferenceClient
	notifier   ports.Notifier
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	secretName string

	hub *hub

	stateMu sync.Mutex
	state   domain.State
}

// NodeOption configures the core node.
type NodeOption func(*Node)

// WithNotifier routes user notices to the given sink.
func WithNotifier(notifier ports.Notifier) NodeOption {
	return func(n *Node) {
		n.notifier = notifier
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) NodeOption {
	return func(n *Node) {
		n.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the node.
func WithLogger(logger *slog.Logger) NodeOption {
	return func(n *Node) {
		n.logger = logger
	}
}

// WithSecretName overrides the platform secret revealed during initialization.
func WithSecretName(name string) NodeOption {
	return func(n *Node) {
		if name != "" {
			n.secretName = name
		}
	}
}

// WithModel sets the initially selected model instead of the catalog default.
func WithModel(model domain.Model) NodeOption {
	return func(n *Node) {
		if model.Supported() {
			n.state.Model = model
		}
	}
}

// NewNode creates the core node with its required ports.
func NewNode(store ports.CredentialStore, secrets ports.SecretsService, client ports.InferenceClient, opts ...NodeOption) *Node {
	n := &Node{
		store:      store,
		secrets:    secrets,
		client:     client,
		notifier:   ports.NopNotifier(),
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		secretName: DefaultSecretName,
		state:      domain.NewState(),
	}

	for _, opt := range opts {
		opt(n)
	}

	n.hub = newHub(n.logger)

	return n
}

// State returns a snapshot of the observable node state.
func (n *Node) State() domain.State {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.state
}

// Model returns the currently selected model.
func (n *Node) Model() domain.Model {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.state.Model
}

// SelectModel switches the selected model for future requests. A request
// already in flight keeps the model it was accepted with.
func (n *Node) SelectModel(model domain.Model) error {
	if !model.Supported() {
		return domain.ErrModelUnknown
	}

	n.stateMu.Lock()
	n.state.Model = model
	n.stateMu.Unlock()

	n.logger.Debug("model selected", "model", model)
	return nil
}

// Subscribe returns a channel of progress events and a cancel function.
// Slow consumers lose events rather than stalling generation.
func (n *Node) Subscribe() (<-chan domain.ProgressEvent, func()) {
	return n.hub.subscribe()
}
