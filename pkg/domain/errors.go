package domain

import "errors"

// ErrNotAuthenticated is returned when an operation needs a signed-in session and none is present.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrSessionExpired is returned when a session is marked authenticated but carries no usable access token.
var ErrSessionExpired = errors.New("session expired")

// ErrCredentialNotFound is returned by credential stores when the slot is empty.
var ErrCredentialNotFound = errors.New("credential not found")

// ErrCredentialEmpty rejects an attempt to store a blank credential.
var ErrCredentialEmpty = errors.New("credential is empty")

// ErrCredentialUnavailable is returned when the remote secrets service cannot produce a credential.
var ErrCredentialUnavailable = errors.New("credential unavailable")

// ErrPromptEmpty rejects a generation attempt whose prompt is blank after trimming.
var ErrPromptEmpty = errors.New("prompt is empty")

// ErrBusy rejects a generation attempt while another request is still in flight.
var ErrBusy = errors.New("generation already in flight")

// ErrModelUnknown is returned when a model ID is not part of the catalog.
var ErrModelUnknown = errors.New("unknown model")
