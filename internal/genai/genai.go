// Package genai defines the generative-model collaborator interface and its
// typed failure taxonomy. The pipeline never inspects error message text;
// adapters classify failures at the boundary and return *Error directly.
package genai

import (
	"context"
	"fmt"
	"time"
)

// Model is the generative-model collaborator the pipeline calls for goal
// extraction and plan synthesis.
//
// Implementations: Gemini (production), test stubs (struct-of-funcs mocks).
type Model interface {
	// Complete sends a prompt and returns the raw model text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrorKind classifies a model failure.
type ErrorKind int

const (
	// KindQuotaExceeded means the account's quota is exhausted. RetryAfter
	// carries the provider's suggested wait when it supplied one.
	KindQuotaExceeded ErrorKind = iota

	// KindRateLimited means too many requests in a window.
	KindRateLimited

	// KindTimeout covers deadlines and transient transport/5xx failures.
	KindTimeout

	// KindMalformed means the response envelope was unusable (no candidates,
	// undecodable body) or the request itself was rejected as invalid.
	KindMalformed
)

func (k ErrorKind) String() string {
	names := [...]string{"quota_exceeded", "rate_limited", "timeout", "malformed"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Error is the typed failure returned by Model implementations.
type Error struct {
	Kind       ErrorKind
	RetryAfter time.Duration // suggested wait for quota/rate failures, 0 when unknown
	Status     int           // HTTP status when applicable, 0 otherwise
	Message    string
	Err        error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("genai: %s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("genai: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
