/*
Package tendril implements an interactive text-generation node: a single unit
of a visual editor graph that submits prompts to a remote LLM inference
endpoint and exposes its lifecycle as observable state.

It follows a Hexagonal Architecture: the core state machine is decoupled from
adapters (credential storage, secrets service, inference transport, session
source), so the node can be embedded in any host: CLI, HTTP server, or an MCP
agent surface.

# Concept

A node moves through four phases: idle, in flight, succeeded, failed. A
prompt is accepted only when it is non-blank and no request is already in
flight; an accepted request always settles, even if the remote endpoint
misbehaves. The inference credential is resolved once during initialization,
local store first, then the platform secrets service gated by the signed-in
session.

# Key Features

  - Single-flight execution: one request at a time, guarded atomically.
  - Credential caching: the secrets service is consulted only on a store miss.
  - Progress streaming: subscribers receive an ordered, finite event stream
    ending with a terminal event for every request.
  - Fixed model catalog: eleven chat models, selection independent of flight.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/gratitude5dee/tendril"
		"github.com/gratitude5dee/tendril/pkg/domain"
	)

	func main() {
		node, err := tendril.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()

		// Supply the credential directly; a real editor would call
		// Initialize to resolve it through the platform.
		if err := node.SetCredential(ctx, "fal-key"); err != nil {
			log.Fatal(err)
		}

		state, err := node.Generate(ctx, "Write a haiku about rivers.")
		if err != nil {
			log.Fatal(err)
		}

		if state.Phase == domain.PhaseSucceeded {
			fmt.Println(state.Output)
		} else {
			fmt.Println("failed:", state.Error)
		}
	}
*/
package tendril
