// Package errs defines the error kinds shared across pipeline stages, per
// the error handling design: a small closed set of kinds, not per-package
// error types, so the orchestrator can map any stage's failure to a single
// caller-facing vocabulary.
package errs

import "errors"

// Kind names one of the closed set of error categories the pipeline can
// surface to a caller.
type Kind string

const (
	// KindInvalidInput covers missing prompt, unknown persona, missing
	// reference asset. Caller-facing, 4xx-equivalent.
	KindInvalidInput Kind = "InvalidInput"
	// KindUpstreamUnavailable covers an LLM/TTS/animation call that failed
	// after retries. Caller-facing, 5xx-equivalent.
	KindUpstreamUnavailable Kind = "UpstreamUnavailable"
	// KindIntentParseFallback is not an error: strict JSON parsing failed
	// and the client fell through to a later cascade stage. Logged at
	// warning, never returned to the caller as a failure.
	KindIntentParseFallback Kind = "IntentParseFallback"
	// KindGovernorNoOp marks that the governor returned its input unchanged
	// due to an internal anomaly. Logged at warning; pipeline continues.
	KindGovernorNoOp Kind = "GovernorNoOp"
	// KindInsufficientReferenceData covers the style extractor failing to
	// collect enough valid samples from a reference video.
	KindInsufficientReferenceData Kind = "InsufficientReferenceData"
)

// Error is a typed pipeline error carrying one of the closed Kinds plus a
// human-readable message and the request this occurred under, if known.
type Error struct {
	Kind      Kind
	Message   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return string(e.Kind) + ": " + e.Message + " (request_id=" + e.RequestID + ")"
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind, wrapping an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// WithRequestID returns a copy of e carrying the given request id.
func (e *Error) WithRequestID(id string) *Error {
	cp := *e
	cp.RequestID = id
	return &cp
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// ErrInvalidPersona is a sentinel for the closed persona set check; wrapped
// into a KindInvalidInput *Error by callers so they can still add context.
var ErrInvalidPersona = errors.New("unknown persona")
