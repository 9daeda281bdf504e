package tendril_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratitude5dee/tendril"
	"github.com/gratitude5dee/tendril/internal/testutils"
	"github.com/gratitude5dee/tendril/pkg/adapters/session"
	"github.com/gratitude5dee/tendril/pkg/domain"
)

func TestNew_Defaults(t *testing.T) {
	node, err := tendril.New()
	require.NoError(t, err)

	state := node.State()
	assert.Equal(t, domain.PhaseIdle, state.Phase)
	assert.Equal(t, domain.DefaultModel(), state.Model)
	assert.Len(t, node.Models(), 11)
}

func TestNew_RejectsUnknownModel(t *testing.T) {
	_, err := tendril.New(tendril.WithModel("acme/unreleased"))
	require.ErrorIs(t, err, domain.ErrModelUnknown)
}

func TestNode_FullLifecycle(t *testing.T) {
	client := &testutils.FakeInferenceClient{
		Result: domain.GenerationResult{Output: "generated text"},
	}
	secrets := &testutils.FakeSecretsService{Credential: "sk-platform"}
	notifier := &testutils.RecordingNotifier{}

	node, err := tendril.New(
		tendril.WithInferenceClient(client),
		tendril.WithSecretsService(secrets),
		tendril.WithSessionSource(session.NewStatic(domain.Session{
			Authenticated: true,
			AccessToken:   "token-1",
		})),
		tendril.WithNotifier(notifier),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, node.Initialize(ctx))

	state, err := node.Generate(ctx, "write something")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSucceeded, state.Phase)
	assert.Equal(t, "generated text", state.Output)

	// The secrets service was hit once; the second initialize uses the store.
	require.NoError(t, node.Initialize(ctx))
	assert.Len(t, secrets.Calls(), 1)
	assert.Empty(t, notifier.Notices())
}

func TestNode_InitializeSignedOutByDefault(t *testing.T) {
	node, err := tendril.New()
	require.NoError(t, err)

	err = node.Initialize(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestNode_GenerateWithoutCredential(t *testing.T) {
	client := &testutils.FakeInferenceClient{}
	node, err := tendril.New(tendril.WithInferenceClient(client))
	require.NoError(t, err)

	state, err := node.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFailed, state.Phase)
	assert.Contains(t, state.Error, "not found")
	assert.Empty(t, client.Requests())
}

func TestNode_CredentialManagement(t *testing.T) {
	client := &testutils.FakeInferenceClient{}
	node, err := tendril.New(tendril.WithInferenceClient(client))
	require.NoError(t, err)

	ctx := context.Background()

	has, err := node.HasCredential(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.ErrorIs(t, node.SetCredential(ctx, ""), domain.ErrCredentialEmpty)

	require.NoError(t, node.SetCredential(ctx, "sk-manual"))
	has, err = node.HasCredential(ctx)
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, []domain.Credential{"sk-manual"}, client.Configured())

	require.NoError(t, node.ClearCredential(ctx))
	has, err = node.HasCredential(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRunner_PromptLoop(t *testing.T) {
	client := &testutils.FakeInferenceClient{
		Result: domain.GenerationResult{Output: "a short story"},
	}
	node, err := tendril.New(tendril.WithInferenceClient(client))
	require.NoError(t, err)
	require.NoError(t, node.SetCredential(context.Background(), "sk-1"))

	var out bytes.Buffer
	runner := tendril.NewRunner()
	runner.Input = strings.NewReader("tell me a story\nexit\n")
	runner.Output = &out

	require.NoError(t, runner.Run(context.Background(), node))

	assert.Contains(t, out.String(), "a short story")
	assert.Contains(t, out.String(), "Bye!")
	assert.Len(t, client.Requests(), 1)
}

func TestRunner_PrintsFailures(t *testing.T) {
	node, err := tendril.New(tendril.WithInferenceClient(&testutils.FakeInferenceClient{}))
	require.NoError(t, err)

	var out bytes.Buffer
	runner := tendril.NewRunner()
	runner.Headless = true
	runner.Input = strings.NewReader("hello\n")
	runner.Output = &out

	require.NoError(t, runner.Run(context.Background(), node))

	assert.Contains(t, out.String(), "Error: "+domain.MissingCredentialText)
}

func TestRunner_SkipsBlankLines(t *testing.T) {
	client := &testutils.FakeInferenceClient{
		Result: domain.GenerationResult{Output: "ok"},
	}
	node, err := tendril.New(tendril.WithInferenceClient(client))
	require.NoError(t, err)
	require.NoError(t, node.SetCredential(context.Background(), "sk-1"))

	var out bytes.Buffer
	runner := tendril.NewRunner()
	runner.Headless = true
	runner.Input = strings.NewReader("\n   \nreal prompt\n")
	runner.Output = &out

	require.NoError(t, runner.Run(context.Background(), node))

	assert.Len(t, client.Requests(), 1)
	assert.Equal(t, "real prompt", client.Requests()[0].Prompt)
}

func TestRunner_RendererApplied(t *testing.T) {
	client := &testutils.FakeInferenceClient{
		Result: domain.GenerationResult{Output: "plain"},
	}
	node, err := tendril.New(tendril.WithInferenceClient(client))
	require.NoError(t, err)
	require.NoError(t, node.SetCredential(context.Background(), "sk-1"))

	var out bytes.Buffer
	runner := tendril.NewRunner()
	runner.Headless = true
	runner.Input = strings.NewReader("hi\n")
	runner.Output = &out
	runner.Renderer = func(s string) (string, error) {
		return "[" + s + "]", nil
	}

	require.NoError(t, runner.Run(context.Background(), node))
	assert.Contains(t, out.String(), "[plain]")
}
