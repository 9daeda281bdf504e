package ports

import "github.com/gratitude5dee/tendril/pkg/domain"

// Notifier delivers fire-and-forget notices to the user. Notify must not
// block and has no way to fail; the core never inspects the outcome.
type Notifier interface {
	Notify(notice domain.Notice)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(domain.Notice)

func (f NotifierFunc) Notify(notice domain.Notice) {
	f(notice)
}

// NopNotifier returns a Notifier that drops every notice.
func NopNotifier() Notifier {
	return NotifierFunc(func(domain.Notice) {})
}
