// Package testutils provides scripted fakes for the node's ports, shared by
// tests across the module.
package testutils

import (
	"context"
	"sync"

	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

// FakeInferenceClient scripts the remote inference service.
//
// Set Result, Err, Logs or PanicWith before use. When Entered is non-nil,
// Generate sends on it once per call; when Release is non-nil, Generate then
// blocks until it is closed. Together they let tests hold a request in
// flight deterministically.
type FakeInferenceClient struct {
	Result    domain.GenerationResult
	Err       error
	Logs      []domain.LogEntry
	PanicWith any

	Entered chan struct{}
	Release chan struct{}

	mu         sync.Mutex
	configured []domain.Credential
	requests   []domain.GenerationRequest
}

func (f *FakeInferenceClient) Configure(credential domain.Credential) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configured = append(f.configured, credential)
}

func (f *FakeInferenceClient) Generate(ctx context.Context, req domain.GenerationRequest, logf ports.LogFunc) (domain.GenerationResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Entered != nil {
		f.Entered <- struct{}{}
	}
	if f.Release != nil {
		<-f.Release
	}
	if f.PanicWith != nil {
		panic(f.PanicWith)
	}

	if logf != nil {
		for _, entry := range f.Logs {
			logf(entry)
		}
	}

	return f.Result, f.Err
}

// Requests returns every request passed to Generate, in order.
func (f *FakeInferenceClient) Requests() []domain.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.GenerationRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// Configured returns every credential passed to Configure, in order.
func (f *FakeInferenceClient) Configured() []domain.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Credential, len(f.configured))
	copy(out, f.configured)
	return out
}

// RevealCall records one request made to a FakeSecretsService.
type RevealCall struct {
	Name        string
	AccessToken string
}

// FakeSecretsService scripts the platform secrets function.
type FakeSecretsService struct {
	Credential domain.Credential
	Err        error

	mu    sync.Mutex
	calls []RevealCall
}

func (f *FakeSecretsService) Reveal(ctx context.Context, name, accessToken string) (domain.Credential, error) {
	f.mu.Lock()
	f.calls = append(f.calls, RevealCall{Name: name, AccessToken: accessToken})
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	return f.Credential, nil
}

// Calls returns every reveal request made so far.
func (f *FakeSecretsService) Calls() []RevealCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RevealCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// RecordingNotifier collects notices for assertions.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (r *RecordingNotifier) Notify(notice domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

// Notices returns every notice seen so far.
func (r *RecordingNotifier) Notices() []domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Titles returns the notice titles in delivery order.
func (r *RecordingNotifier) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	titles := make([]string, len(r.notices))
	for i, notice := range r.notices {
		titles[i] = notice.Title
	}
	return titles
}

// FlakyStore wraps a credential store and injects failures per operation.
type FlakyStore struct {
	Inner ports.CredentialStore

	GetErr   error
	SetErr   error
	ClearErr error

	mu     sync.Mutex
	clears int
}

func (s *FlakyStore) Get(ctx context.Context) (domain.Credential, error) {
	if s.GetErr != nil {
		return "", s.GetErr
	}
	return s.Inner.Get(ctx)
}

func (s *FlakyStore) Set(ctx context.Context, credential domain.Credential) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	return s.Inner.Set(ctx, credential)
}

func (s *FlakyStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.clears++
	s.mu.Unlock()

	if s.ClearErr != nil {
		return s.ClearErr
	}
	return s.Inner.Clear(ctx)
}

// Clears reports how many times Clear was invoked.
func (s *FlakyStore) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}
