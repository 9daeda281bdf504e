package middleware

import "github.com/gratitude5dee/tendril/pkg/ports"

// Middleware allows wrapping a CredentialStore to add behavior.
type Middleware func(ports.CredentialStore) ports.CredentialStore

// Chain applies middlewares to a store. The first middleware becomes the
// outermost wrapper.
func Chain(store ports.CredentialStore, middlewares ...Middleware) ports.CredentialStore {
	for i := len(middlewares) - 1; i >= 0; i-- {
		store = middlewares[i](store)
	}
	return store
}
