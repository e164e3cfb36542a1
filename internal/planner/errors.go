package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harborline/wayplan/internal/genai"
)

// ExtractionError reports that goal analysis produced no usable trip
// parameters. The goal text itself is the problem, so it is not retryable.
type ExtractionError struct {
	Goal   string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("planner: goal extraction failed: %s", e.Reason)
}

// GenKind classifies generative-model failures during synthesis.
type GenKind int

const (
	GenQuotaExceeded GenKind = iota
	GenRateLimited
	GenModelTimeout
	GenMalformedOutput
)

func (k GenKind) String() string {
	names := [...]string{
		"quota_exceeded",
		"rate_limited",
		"model_timeout",
		"malformed_output",
	}
	if int(k) >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// GenerationError reports a failed model interaction. RetryAfter is the
// provider's suggested wait for quota and rate-limit kinds, zero otherwise.
type GenerationError struct {
	Kind       GenKind
	RetryAfter time.Duration
	Message    string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("planner: synthesis failed (%s): %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("planner: synthesis failed (%s)", e.Kind)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// generationErrorFrom maps a model-call error onto the synthesis taxonomy.
// Transport-level failures with no better classification count as timeouts
// so the taxonomy stays exhaustive and retryable.
func generationErrorFrom(err error) *GenerationError {
	var gerr *genai.Error
	if errors.As(err, &gerr) {
		kind := GenModelTimeout
		switch gerr.Kind {
		case genai.KindQuotaExceeded:
			kind = GenQuotaExceeded
		case genai.KindRateLimited:
			kind = GenRateLimited
		case genai.KindTimeout:
			kind = GenModelTimeout
		case genai.KindMalformed:
			kind = GenMalformedOutput
		}
		return &GenerationError{Kind: kind, RetryAfter: gerr.RetryAfter, Message: gerr.Message, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Kind: GenModelTimeout, Message: "model call timed out", Err: err}
	}
	return &GenerationError{Kind: GenModelTimeout, Message: "model call failed", Err: err}
}

// ValidationError reports every structural defect found while assembling
// the final plan, not just the first.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "planner: plan validation failed: " + strings.Join(e.Problems, "; ")
}
