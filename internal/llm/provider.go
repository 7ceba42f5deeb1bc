package llm

import "context"

// Provider is the narrow contract over a generative text capability. It is
// reached over a network boundary; callers must expect latency and failure
// and pass a cancellable context. Retry policy, if any, belongs to the
// provider's transport, not to callers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
