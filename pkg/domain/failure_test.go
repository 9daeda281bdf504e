package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyRemote(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Failure
	}{
		{
			name: "detail wins over underlying error",
			err:  &RemoteError{Status: 422, Detail: "prompt too long", Err: errors.New("unprocessable")},
			want: Failure{Class: FailureRemoteRejected, Message: "prompt too long"},
		},
		{
			name: "underlying error message when no detail",
			err:  &RemoteError{Status: 500, Err: errors.New("connection reset")},
			want: Failure{Class: FailureRemoteRejected, Message: "connection reset"},
		},
		{
			name: "generic literal when nothing usable",
			err:  &RemoteError{Status: 500},
			want: Failure{Class: FailureRemoteRejected, Message: GenericFailureText},
		},
		{
			name: "401 is an auth rejection",
			err:  &RemoteError{Status: 401, Detail: "invalid key"},
			want: Failure{Class: FailureRemoteAuthRejected, Message: "invalid key"},
		},
		{
			name: "401 without detail keeps the auth class",
			err:  &RemoteError{Status: 401},
			want: Failure{Class: FailureRemoteAuthRejected, Message: GenericFailureText},
		},
		{
			name: "403 is a plain rejection, not auth",
			err:  &RemoteError{Status: 403, Detail: "quota exceeded"},
			want: Failure{Class: FailureRemoteRejected, Message: "quota exceeded"},
		},
		{
			name: "wrapped remote error is still recognized",
			err:  fmt.Errorf("calling gateway: %w", &RemoteError{Status: 401, Detail: "bad key"}),
			want: Failure{Class: FailureRemoteAuthRejected, Message: "bad key"},
		},
		{
			name: "plain error falls back to its message",
			err:  errors.New("dial tcp: no route to host"),
			want: Failure{Class: FailureRemoteRejected, Message: "dial tcp: no route to host"},
		},
		{
			name: "nil error yields the generic literal",
			err:  nil,
			want: Failure{Class: FailureRemoteRejected, Message: GenericFailureText},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyRemote(tt.err)
			if got != tt.want {
				t.Errorf("ClassifyRemote() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRemoteErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *RemoteError
		want string
	}{
		{
			name: "status and detail",
			err:  &RemoteError{Status: 422, Detail: "prompt too long"},
			want: "remote endpoint returned status 422: prompt too long",
		},
		{
			name: "no status means the call never completed",
			err:  &RemoteError{Err: errors.New("dial timeout")},
			want: "remote call failed: dial timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoteErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("request: %w", &RemoteError{Status: 500, Err: inner})

	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to reach the inner error through RemoteError")
	}
}
