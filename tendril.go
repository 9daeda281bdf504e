package tendril

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gratitude5dee/tendril/internal/runtime"
	"github.com/gratitude5dee/tendril/pkg/adapters/fal"
	"github.com/gratitude5dee/tendril/pkg/adapters/memory"
	"github.com/gratitude5dee/tendril/pkg/adapters/session"
	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

// Version is the library version, overridable at build time via ldflags.
var Version = "0.1.0"

// Node is the high-level entry point for the Tendril library.
// It wraps the internal runtime and provides a simplified API for hosts.
type Node struct {
	core *runtime.Node

	store      ports.CredentialStore
	secrets    ports.SecretsService
	client     ports.InferenceClient
	sessions   ports.SessionSource
	notifier   ports.Notifier
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	secretName string
	model      domain.Model
	Name       string
}

// Option defines a functional option for configuring the Node.
type Option func(*Node)

// WithCredentialStore injects a custom credential store, bypassing the
// default in-memory slot.
func WithCredentialStore(store ports.CredentialStore) Option {
	return func(n *Node) {
		n.store = store
	}
}

// WithInferenceClient injects a custom inference client.
func WithInferenceClient(client ports.InferenceClient) Option {
	return func(n *Node) {
		n.client = client
	}
}

// WithSecretsService injects the platform secrets service used to reveal
// the credential during initialization.
func WithSecretsService(secrets ports.SecretsService) Option {
	return func(n *Node) {
		n.secrets = secrets
	}
}

// WithSessionSource injects the source of the editor session. Without one
// the node behaves as signed out.
func WithSessionSource(sessions ports.SessionSource) Option {
	return func(n *Node) {
		n.sessions = sessions
	}
}

// WithNotifier routes user-facing notices (toasts) to the given sink.
func WithNotifier(notifier ports.Notifier) Option {
	return func(n *Node) {
		n.notifier = notifier
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(n *Node) {
		n.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the node.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) {
		n.logger = logger
	}
}

// WithSecretName overrides the platform secret revealed during
// initialization (default "FAL_KEY").
func WithSecretName(name string) Option {
	return func(n *Node) {
		n.secretName = name
	}
}

// WithModel sets the initially selected model instead of the catalog default.
func WithModel(model domain.Model) Option {
	return func(n *Node) {
		n.model = model
	}
}

// WithName labels the node; the label is attached to every log record.
func WithName(name string) Option {
	return func(n *Node) {
		n.Name = name
	}
}

// noSecrets is the default secrets service: it refuses every reveal, so a
// node without platform wiring still initializes from its local store.
type noSecrets struct{}

func (noSecrets) Reveal(context.Context, string, string) (domain.Credential, error) {
	return "", fmt.Errorf("no secrets service configured: %w", domain.ErrCredentialUnavailable)
}

// New initializes a new Tendril Node.
// By default it keeps the credential in memory, talks to the fal queue API,
// and treats the editor as signed out until a session source is injected.
func New(opts ...Option) (*Node, error) {
	n := &Node{
		secretName: runtime.DefaultSecretName,
		Name:       "text-gen",
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.model != "" && !n.model.Supported() {
		return nil, fmt.Errorf("model %q: %w", n.model, domain.ErrModelUnknown)
	}

	if n.store == nil {
		n.store = memory.NewStore()
	}
	if n.client == nil {
		n.client = fal.New()
	}
	if n.sessions == nil {
		n.sessions = session.NewAnonymous()
	}
	if n.secrets == nil {
		n.secrets = noSecrets{}
	}
	if n.notifier == nil {
		n.notifier = ports.NopNotifier()
	}

	// Ensure logger is initialized (so we don't pass nil to the runtime,
	// which would overwrite its default).
	if n.logger == nil {
		n.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if n.Name != "" {
		n.logger = n.logger.With("node", n.Name)
	}

	coreOpts := []runtime.NodeOption{
		runtime.WithNotifier(n.notifier),
		runtime.WithLifecycleHooks(n.hooks),
		runtime.WithLogger(n.logger),
		runtime.WithSecretName(n.secretName),
	}
	if n.model != "" {
		coreOpts = append(coreOpts, runtime.WithModel(n.model))
	}

	n.core = runtime.NewNode(n.store, n.secrets, n.client, coreOpts...)

	return n, nil
}

// Initialize resolves the node's credential for the current session: local
// store first, then the platform secrets service. It must succeed once
// before Generate can reach the remote endpoint.
func (n *Node) Initialize(ctx context.Context) error {
	session, err := n.sessions.Current(ctx)
	if err != nil {
		return fmt.Errorf("resolving session: %w", err)
	}
	return n.core.Initialize(ctx, session)
}

// InitializeSession is Initialize with an explicit session, bypassing the
// configured session source.
func (n *Node) InitializeSession(ctx context.Context, session domain.Session) error {
	return n.core.Initialize(ctx, session)
}

// Generate submits the prompt and blocks until the request settles. The
// returned error is non-nil only for entry-guard rejections (ErrPromptEmpty,
// ErrBusy); remote failures settle into the returned State instead.
func (n *Node) Generate(ctx context.Context, prompt string) (domain.State, error) {
	return n.core.Generate(ctx, prompt)
}

// State returns a snapshot of the observable node state.
func (n *Node) State() domain.State {
	return n.core.State()
}

// Model returns the currently selected model.
func (n *Node) Model() domain.Model {
	return n.core.Model()
}

// SelectModel switches the selected model for future requests.
func (n *Node) SelectModel(model domain.Model) error {
	return n.core.SelectModel(model)
}

// Models returns the fixed model catalog in presentation order.
func (n *Node) Models() []domain.Model {
	return domain.Catalog()
}

// Subscribe returns a channel of progress events and a cancel function.
func (n *Node) Subscribe() (<-chan domain.ProgressEvent, func()) {
	return n.core.Subscribe()
}

// SetCredential stores a credential directly, bypassing the secrets
// service, and configures the inference client with it.
func (n *Node) SetCredential(ctx context.Context, credential domain.Credential) error {
	if credential.Empty() {
		return domain.ErrCredentialEmpty
	}
	if err := n.store.Set(ctx, credential); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}
	n.client.Configure(credential)
	return nil
}

// ClearCredential removes the stored credential.
func (n *Node) ClearCredential(ctx context.Context) error {
	if err := n.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}

// HasCredential reports whether a credential is currently stored, without
// revealing it.
func (n *Node) HasCredential(ctx context.Context) (bool, error) {
	_, err := n.store.Get(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrCredentialNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("reading credential store: %w", err)
	}
}

// Store returns the underlying credential store used by the node.
func (n *Node) Store() ports.CredentialStore {
	return n.store
}
