/*
Package ports defines the driven ports (interfaces) for the tendril node.

These interfaces decouple the core logic from external implementations,
allowing the node to work with various credential backends, secrets
services, inference gateways, and session providers.

# Key Interfaces

  - CredentialStore: persists the single API-key slot the node works from.
  - SecretsService: reveals the credential held by the remote platform.
  - InferenceClient: carries an accepted request to the inference endpoint.
  - SessionSource: observes the signed-in session owned by the host.
  - Notifier: delivers fire-and-forget notices to the user.
*/
package ports
