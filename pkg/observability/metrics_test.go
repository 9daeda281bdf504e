package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

func TestMetrics_GenerationLifecycle(t *testing.T) {
	m := NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	start := &domain.ProgressEvent{
		Kind:      domain.EventStarted,
		RequestID: "r1",
		Model:     domain.DefaultModel(),
	}
	hooks.OnGenerateStart(ctx, start)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))

	hooks.OnProgress(ctx, &domain.ProgressEvent{Kind: domain.EventLog, RequestID: "r1"})
	hooks.OnProgress(ctx, &domain.ProgressEvent{Kind: domain.EventLog, RequestID: "r1"})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.progress))

	hooks.OnGenerateEnd(ctx, &domain.ProgressEvent{
		Kind:      domain.EventSucceeded,
		RequestID: "r1",
		Model:     domain.DefaultModel(),
	})

	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.generations.WithLabelValues(domain.DefaultModel().String(), "succeeded"),
	))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration, "tendril_generation_duration_seconds"))
}

func TestMetrics_FailedOutcomeLabel(t *testing.T) {
	m := NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnGenerateStart(ctx, &domain.ProgressEvent{RequestID: "r2", Model: "openai/gpt-4o-mini"})
	hooks.OnGenerateEnd(ctx, &domain.ProgressEvent{
		Kind:      domain.EventFailed,
		RequestID: "r2",
		Model:     "openai/gpt-4o-mini",
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.generations.WithLabelValues("openai/gpt-4o-mini", "failed"),
	))
}

func TestMergeHooks_CallsAllInOrder(t *testing.T) {
	var order []string

	merged := MergeHooks(
		domain.LifecycleHooks{
			OnGenerateStart: func(ctx context.Context, e *domain.ProgressEvent) {
				order = append(order, "first")
			},
		},
		domain.LifecycleHooks{
			OnGenerateStart: func(ctx context.Context, e *domain.ProgressEvent) {
				order = append(order, "second")
			},
		},
	)

	merged.OnGenerateStart(context.Background(), &domain.ProgressEvent{})
	merged.OnProgress(context.Background(), &domain.ProgressEvent{})
	merged.OnGenerateEnd(context.Background(), &domain.ProgressEvent{})

	assert.Equal(t, []string{"first", "second"}, order)
}
