/*
Package domain contains the core domain models for the tendril node.

It defines the observable state machine of a text-generation node, the fixed
model catalog, the session and credential value types, and the failure
taxonomy. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - State: the observable snapshot of the node (phase, model, output, error).
  - Model: a vendor-qualified model ID from the fixed catalog.
  - Session: the signed-in user as observed from the external auth subsystem.
  - Credential: the secret API key; always redacted in structured logs.
  - Failure: a classified, user-presentable generation failure.
  - ProgressEvent: one step in the finite narration of a generation request.
*/
package domain
