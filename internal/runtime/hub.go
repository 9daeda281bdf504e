package runtime

import (
	"log/slog"
	"sync"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// subscriberBuffer bounds how far a consumer may lag before events are dropped.
const subscriberBuffer = 16

// hub fans progress events out to subscribers. Delivery is best effort: a
// subscriber whose buffer is full misses events instead of blocking the
// generation path.
type hub struct {
	mu          sync.RWMutex
	subscribers map[chan domain.ProgressEvent]struct{}
	logger      *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		subscribers: make(map[chan domain.ProgressEvent]struct{}),
		logger:      logger,
	}
}

// subscribe registers a new consumer. The returned cancel function must be
// called to release the subscription; it closes the channel.
func (h *hub) subscribe() (<-chan domain.ProgressEvent, func()) {
	ch := make(chan domain.ProgressEvent, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}

	return ch, cancel
}

// publish delivers an event to every subscriber without blocking.
func (h *hub) publish(event domain.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.logger.Warn("subscriber buffer full, dropping event",
				"kind", event.Kind,
				"request_id", event.RequestID,
			)
		}
	}
}
