package llmclient

import "context"

// Backend is the consumed LLM provider interface: a transport that accepts
// a system/user prompt pair and returns raw text (JSON-shaped when
// forceJSON is set). The LLM provider itself runs as an external service;
// Backend is the seam the orchestrator's stage talks through.
type Backend interface {
	// Name identifies the backend for logging ("openai", "gemini", ...).
	Name() string

	// Call performs one request/response round trip. Returns the raw text
	// response. A non-nil error here is always a transport/authentication
	// failure — the client maps it to errs.KindUpstreamUnavailable.
	Call(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int, forceJSON bool) (string, error)
}
