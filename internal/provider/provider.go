// Package provider defines the shared failure taxonomy for the external
// enrichment providers (weather, place search). Provider failures are always
// recoverable from the pipeline's point of view: the enricher degrades and
// records the failure instead of aborting the request.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a provider failure.
type ErrorKind int

const (
	// KindNetwork covers transport failures and unexpected HTTP statuses.
	KindNetwork ErrorKind = iota

	// KindTimeout covers deadline and cancellation failures.
	KindTimeout

	// KindQuota covers quota exhaustion and key rejection (401/403/429).
	KindQuota
)

func (k ErrorKind) String() string {
	names := [...]string{"network", "timeout", "quota"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Error is the typed failure returned by every enrichment provider call.
type Error struct {
	Provider string    // provider name, e.g. "openweathermap"
	Kind     ErrorKind // failure classification
	Status   int       // HTTP status when applicable, 0 otherwise
	Message  string
	Err      error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify wraps a transport-level error from an HTTP round trip into a typed
// provider error, distinguishing timeouts from other network failures.
func Classify(name string, err error) *Error {
	kind := KindNetwork
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = KindTimeout
	}
	return &Error{
		Provider: name,
		Kind:     kind,
		Message:  err.Error(),
		Err:      err,
	}
}

// FromStatus maps an unexpected HTTP status into a typed provider error.
// 401/403/429 count as quota-class failures (the account, not the network,
// is the problem); everything else is a network-class failure.
func FromStatus(name string, status int, body string) *Error {
	kind := KindNetwork
	switch status {
	case 401, 403, 429:
		kind = KindQuota
	}
	return &Error{
		Provider: name,
		Kind:     kind,
		Status:   status,
		Message:  body,
	}
}
