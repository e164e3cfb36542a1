package planner

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// FailureType is the stable tag a failed generation surfaces to clients.
type FailureType string

const (
	FailureExtraction   FailureType = "EXTRACTION_FAILED"
	FailureQuota        FailureType = "QUOTA_EXCEEDED"
	FailureRateLimited  FailureType = "RATE_LIMITED"
	FailureModelTimeout FailureType = "MODEL_TIMEOUT"
	FailureMalformed    FailureType = "MALFORMED_OUTPUT"
	FailureValidation   FailureType = "VALIDATION_FAILED"
	FailureInternal     FailureType = "INTERNAL_ERROR"
)

// Failure is the single error shape GeneratePlan returns. Message is safe
// to show a user; Detail carries the technical cause. RetryAfter is in
// seconds and only set for quota and rate-limit failures.
type Failure struct {
	Type       FailureType `json:"type"`
	Message    string      `json:"message"`
	Detail     string      `json:"detail,omitempty"`
	Retryable  bool        `json:"retryable"`
	RetryAfter int         `json:"retry_after,omitempty"`
	Err        error       `json:"-"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("planner: %s: %s", f.Type, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// failureFrom performs the single exhaustive match from stage errors to the
// external failure taxonomy.
func failureFrom(err error) *Failure {
	var exErr *ExtractionError
	var genErr *GenerationError
	var valErr *ValidationError

	switch {
	case errors.As(err, &exErr):
		return &Failure{
			Type:    FailureExtraction,
			Message: "could not understand the trip goal",
			Detail:  exErr.Reason,
			Err:     err,
		}

	case errors.As(err, &genErr):
		f := &Failure{Detail: genErr.Message, Err: err}
		switch genErr.Kind {
		case GenQuotaExceeded:
			f.Type = FailureQuota
			f.Message = "the AI service quota is exhausted, try again later"
			f.Retryable = true
			f.RetryAfter = retrySeconds(genErr.RetryAfter)
		case GenRateLimited:
			f.Type = FailureRateLimited
			f.Message = "the AI service is rate limiting requests, try again shortly"
			f.Retryable = true
			f.RetryAfter = retrySeconds(genErr.RetryAfter)
		case GenModelTimeout:
			f.Type = FailureModelTimeout
			f.Message = "the AI service did not respond in time"
			f.Retryable = true
		default:
			f.Type = FailureMalformed
			f.Message = "the AI service returned an unusable plan"
		}
		return f

	case errors.As(err, &valErr):
		return &Failure{
			Type:    FailureValidation,
			Message: "the generated plan failed validation",
			Detail:  fmt.Sprintf("%d problem(s): %s", len(valErr.Problems), valErr.Error()),
			Err:     err,
		}

	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{
			Type:      FailureModelTimeout,
			Message:   "plan generation timed out",
			Retryable: true,
			Err:       err,
		}

	default:
		return &Failure{
			Type:    FailureInternal,
			Message: "plan generation failed unexpectedly",
			Detail:  err.Error(),
			Err:     err,
		}
	}
}

// retrySeconds converts a suggested wait to whole seconds, rounding up so a
// client that honors it never retries early.
func retrySeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
