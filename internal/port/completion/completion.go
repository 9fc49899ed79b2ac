// Package completion defines the port interface for the text-generation
// backend consumed by reviewers and the strategist.
package completion

import "context"

// Client is the port interface for the completion backend. Implementations
// must return domain.ErrBackend (wrapped) for transport-level failures so
// callers can classify them as transient.
type Client interface {
	// Complete sends the prompt with optional system instructions and
	// returns the generated text.
	Complete(ctx context.Context, prompt, systemPrompt string) (string, error)
}
