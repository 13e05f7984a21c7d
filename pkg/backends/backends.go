// Package backends implements the language-model collaborators behind
// players: OpenAI-compatible APIs, Gemini, and a deterministic responder
// for tests and dry runs. The core treats all of them as one opaque
// blocking call per turn.
package backends

import (
	"context"
	"fmt"

	"github.com/paulutsch/clembench/pkg/game"
)

// New builds a model for the given provider tag. Supported providers:
// "openai", "gemini", "custom" (echoes a static line; useful only for
// smoke runs; tests build Custom directly with their own responder).
func New(ctx context.Context, provider, model string) (game.Model, error) {
	switch provider {
	case "openai":
		return NewOpenAI(ctx, model)
	case "gemini":
		return NewGemini(ctx, model)
	case "custom":
		return NewCustom(model, func([]game.Observation) string { return "" }), nil
	}
	return nil, fmt.Errorf("unknown provider %q", provider)
}

// Custom is a deterministic model backed by a plain function. It stands in
// for an LLM in tests, mirroring a player's programmatic response path.
type Custom struct {
	name string
	fn   func(messages []game.Observation) string
}

// NewCustom wraps a response function as a model.
func NewCustom(name string, fn func(messages []game.Observation) string) *Custom {
	return &Custom{name: name, fn: fn}
}

func (c *Custom) Name() string { return c.name }

func (c *Custom) Generate(_ context.Context, messages []game.Observation) (string, error) {
	return c.fn(messages), nil
}
