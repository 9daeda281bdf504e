package runtime

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// Generate submits the prompt to the configured inference client and returns
// the settled state. Only entry-guard rejections produce a non-nil error:
// ErrPromptEmpty for a blank prompt and ErrBusy while a request is in
// flight; neither mutates the state. Every accepted request settles, so
// remote failures surface in the returned State rather than as an error.
func (n *Node) Generate(ctx context.Context, prompt string) (domain.State, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return n.State(), domain.ErrPromptEmpty
	}

	n.stateMu.Lock()
	if n.state.Phase == domain.PhaseInFlight {
		state := n.state
		n.stateMu.Unlock()
		return state, domain.ErrBusy
	}
	req := domain.GenerationRequest{
		ID:     uuid.NewString(),
		Prompt: prompt,
		Model:  n.state.Model,
	}
	n.state.Begin(req.ID)
	n.stateMu.Unlock()

	return n.run(ctx, req)
}

// run carries an accepted request to a terminal state. The deferred recover
// guarantees the node never stays in flight, whatever the client does.
func (n *Node) run(ctx context.Context, req domain.GenerationRequest) (state domain.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.ErrorContext(ctx, "generation panicked", "request_id", req.ID, "panic", r)
			n.stateMu.Lock()
			n.state.Fail(domain.GenericFailureText)
			state = n.state
			n.stateMu.Unlock()
			func() {
				// A hook panicking here must not abort the recovery.
				defer func() { _ = recover() }()
				n.emitEnd(ctx, n.event(domain.EventFailed, req, domain.GenericFailureText))
			}()
			err = nil
		}
	}()

	n.logger.InfoContext(ctx, "generation started", "request_id", req.ID, "model", req.Model)
	n.emitStart(ctx, req)

	credential, err := n.store.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			n.logger.WarnContext(ctx, "generation without credential", "request_id", req.ID)
			n.notifier.Notify(domain.Notice{
				Title:       "Credential required",
				Description: "Add your FAL key in settings to generate text.",
				Severity:    domain.SeverityWarning,
			})
			return n.settle(ctx, req, domain.Failure{
				Class:   domain.FailureCredentialMissing,
				Message: domain.MissingCredentialText,
			})
		}

		n.logger.ErrorContext(ctx, "credential store read failed", "request_id", req.ID, "err", err)
		return n.settle(ctx, req, domain.Failure{
			Class:   domain.FailureCredentialFetchFailed,
			Message: domain.GenericFailureText,
		})
	}

	n.client.Configure(credential)

	result, genErr := n.client.Generate(ctx, req, func(entry domain.LogEntry) {
		n.emitLog(ctx, req, entry)
	})
	if genErr != nil {
		failure := domain.ClassifyRemote(genErr)
		if failure.Class == domain.FailureRemoteAuthRejected {
			n.logger.WarnContext(ctx, "credential rejected by remote", "request_id", req.ID)
			n.resetStore(ctx)
			n.notifier.Notify(domain.Notice{
				Title:       "Invalid credential",
				Description: "Your API credential was rejected. Add a new one in settings.",
				Severity:    domain.SeverityError,
			})
		}
		n.logger.ErrorContext(ctx, "generation failed",
			"request_id", req.ID,
			"class", failure.Class,
			"err", genErr,
		)
		return n.settle(ctx, req, failure)
	}

	output := result.Output
	if output == "" {
		output = domain.EmptyOutputText
	}

	n.logger.InfoContext(ctx, "generation succeeded", "request_id", req.ID, "model", req.Model)
	return n.succeed(ctx, req, output), nil
}

// settle records a failed outcome and emits the terminal event.
func (n *Node) settle(ctx context.Context, req domain.GenerationRequest, failure domain.Failure) (domain.State, error) {
	n.stateMu.Lock()
	n.state.Fail(failure.Message)
	state := n.state
	n.stateMu.Unlock()

	n.emitEnd(ctx, n.event(domain.EventFailed, req, failure.Message))
	return state, nil
}

// succeed records a successful outcome and emits the terminal event.
func (n *Node) succeed(ctx context.Context, req domain.GenerationRequest, output string) domain.State {
	n.stateMu.Lock()
	n.state.Succeed(output)
	state := n.state
	n.stateMu.Unlock()

	n.emitEnd(ctx, n.event(domain.EventSucceeded, req, output))
	return state
}

func (n *Node) event(kind domain.EventKind, req domain.GenerationRequest, message string) domain.ProgressEvent {
	return domain.ProgressEvent{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		RequestID: req.ID,
		Model:     req.Model,
		Message:   message,
	}
}

func (n *Node) emitStart(ctx context.Context, req domain.GenerationRequest) {
	event := n.event(domain.EventStarted, req, "")
	n.hub.publish(event)
	if n.hooks.OnGenerateStart != nil {
		n.hooks.OnGenerateStart(ctx, &event)
	}
}

func (n *Node) emitLog(ctx context.Context, req domain.GenerationRequest, entry domain.LogEntry) {
	n.logger.DebugContext(ctx, "generation progress", "request_id", req.ID, "message", entry.Message)
	event := n.event(domain.EventLog, req, entry.Message)
	n.hub.publish(event)
	if n.hooks.OnProgress != nil {
		n.hooks.OnProgress(ctx, &event)
	}
}

func (n *Node) emitEnd(ctx context.Context, event domain.ProgressEvent) {
	n.hub.publish(event)
	if n.hooks.OnGenerateEnd != nil {
		n.hooks.OnGenerateEnd(ctx, &event)
	}
}
