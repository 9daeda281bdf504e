// Package dto decodes the loosely-typed argument maps crossing adapter
// boundaries (MCP tool calls, JSON bodies) into typed requests.
package dto

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// GenerateArgs carries a generation request across an adapter boundary.
type GenerateArgs struct {
	Prompt string `json:"prompt" mapstructure:"prompt"`
}

// SelectModelArgs carries a model selection across an adapter boundary.
type SelectModelArgs struct {
	Model string `json:"model" mapstructure:"model"`
}

// CredentialArgs carries a credential write across an adapter boundary.
type CredentialArgs struct {
	Credential string `json:"credential" mapstructure:"credential"`
}

// DecodeGenerateArgs converts a raw argument map into GenerateArgs.
func DecodeGenerateArgs(raw map[string]any) (GenerateArgs, error) {
	var args GenerateArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return GenerateArgs{}, fmt.Errorf("decoding generate arguments: %w", err)
	}
	return args, nil
}

// DecodeSelectModelArgs converts a raw argument map into SelectModelArgs.
func DecodeSelectModelArgs(raw map[string]any) (SelectModelArgs, error) {
	var args SelectModelArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return SelectModelArgs{}, fmt.Errorf("decoding model arguments: %w", err)
	}
	return args, nil
}
