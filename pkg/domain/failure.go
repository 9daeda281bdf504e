package domain

import (
	"errors"
	"fmt"
)

// GenericFailureText is shown when a remote failure carries no usable detail.
const GenericFailureText = "Failed to generate text. Please try again."

// MissingCredentialText is shown when a generation is attempted while the
// credential slot is empty. The settings surface is where the user can add one.
const MissingCredentialText = "credential not found - add it in settings"

// FailureClass buckets everything that can go wrong on the way to an output.
type FailureClass string

const (
	FailureAuthRequired          FailureClass = "auth_required"           // No signed-in session
	FailureCredentialMissing     FailureClass = "credential_missing"      // Store empty at point of use
	FailureCredentialFetchFailed FailureClass = "credential_fetch_failed" // Secrets service failed or returned nothing
	FailureRemoteRejected        FailureClass = "remote_rejected"         // Inference endpoint reported an error
	FailureRemoteAuthRejected    FailureClass = "remote_auth_rejected"    // Inference endpoint refused the credential
)

// Failure is a classified, user-presentable generation failure.
type Failure struct {
	Class   FailureClass
	Message string
}

// RemoteError describes a rejected call to a remote endpoint.
type RemoteError struct {
	// Status is the HTTP status code, or 0 when the call never completed.
	Status int

	// Detail is the server-provided detail line, if the error body carried one.
	Detail string

	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *RemoteError) Error() string {
	msg := "remote call failed"
	if e.Status != 0 {
		msg = fmt.Sprintf("remote endpoint returned status %d", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// AuthRejected reports whether the remote refused the credential itself, as
// opposed to failing for any other reason.
func (e *RemoteError) AuthRejected() bool {
	return e.Status == 401
}

// ClassifyRemote maps an inference-call error onto the failure taxonomy.
// The message preference order is fixed: the server's detail line, then the
// underlying error's own message, then GenericFailureText.
func ClassifyRemote(err error) Failure {
	if err == nil {
		return Failure{Class: FailureRemoteRejected, Message: GenericFailureText}
	}

	var re *RemoteError
	if errors.As(err, &re) {
		class := FailureRemoteRejected
		if re.AuthRejected() {
			class = FailureRemoteAuthRejected
		}
		switch {
		case re.Detail != "":
			return Failure{Class: class, Message: re.Detail}
		case re.Err != nil && re.Err.Error() != "":
			return Failure{Class: class, Message: re.Err.Error()}
		default:
			return Failure{Class: class, Message: GenericFailureText}
		}
	}

	if msg := err.Error(); msg != "" {
		return Failure{Class: FailureRemoteRejected, Message: msg}
	}
	return Failure{Class: FailureRemoteRejected, Message: GenericFailureText}
}
