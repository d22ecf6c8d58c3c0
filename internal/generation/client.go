package generation

import "context"

// ModelClient is the boundary to the language model: a text prompt in,
// free-form text out. Implementations live under internal/platform and are
// passed into each component's constructor; nothing in this package
// constructs a default client.
type ModelClient interface {
	// Generate sends the prompt and returns the raw model text. The text is
	// not guaranteed to be clean JSON; callers run it through the tolerant
	// decoders in this package.
	Generate(ctx context.Context, prompt string) (string, error)
}
