package domain

import "slices"

// Model identifies an inference model by its vendor-qualified ID, for example
// "anthropic/claude-3.5-sonnet".
type Model string

// catalog is fixed and order-significant: hosts present it verbatim and the
// first entry is the default for a fresh node.
var catalog = []Model{
	"google/gemini-flash-1.5",
	"anthropic/claude-3.5-sonnet",
	"anthropic/claude-3-5-haiku",
	"anthropic/claude-3-haiku",
	"google/gemini-pro-1.5",
	"google/gemini-flash-1.5-8b",
	"meta-llama/llama-3.2-1b-instruct",
	"meta-llama/llama-3.2-3b-instruct",
	"meta-llama/llama-3.1-8b-instruct",
	"meta-llama/llama-3.1-70b-instruct",
	"openai/gpt-4o-mini",
}

// Catalog returns the selectable models in presentation order.
func Catalog() []Model {
	return slices.Clone(catalog)
}

// DefaultModel returns the model preselected on a fresh node.
func DefaultModel() Model {
	return catalog[0]
}

// Supported reports whether m is part of the fixed catalog.
func (m Model) Supported() bool {
	return slices.Contains(catalog, m)
}

func (m Model) String() string {
	return string(m)
}
