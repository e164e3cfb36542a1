// Package audit provides the per-trip audit trail: an append-only, ordered
// sequence of pipeline events keyed by trip id. Sinks must tolerate
// concurrent appends and must never fail the caller; audit problems are
// logged and swallowed so the pipeline's control flow stays independent of
// its observability.
package audit

import "time"

// Status marks how a step concluded (or that it just started).
type Status string

const (
	StatusStep    Status = "STEP"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Entry is one logged pipeline event. Entries for a trip are ordered by
// timestamp and are never rewritten.
type Entry struct {
	TripID    string         `json:"trip_id"`
	Timestamp time.Time      `json:"timestamp"`
	Step      string         `json:"step"`
	Status    Status         `json:"status"`
	Elapsed   time.Duration  `json:"elapsed,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`

	// Final marks the terminal entry of a trip; file sinks render the
	// completion footer and release the trip's file handle on it.
	Final bool `json:"final,omitempty"`
}

// Sink receives audit entries. Append must be safe for concurrent use and
// must not fail: implementations swallow their own errors.
//
// Implementations: FileSink (per-trip log files), StreamSink (Redis stream),
// MemorySink (testing).
type Sink interface {
	Append(entry Entry)
}

// Trail binds a sink to a single trip and stamps entries with the trip id
// and current time. A nil Trail (or nil sink) discards everything, so
// callers never need to guard their logging.
type Trail struct {
	sink   Sink
	tripID string
}

// NewTrail creates a Trail for one trip.
func NewTrail(sink Sink, tripID string) *Trail {
	return &Trail{sink: sink, tripID: tripID}
}

// TripID returns the trip this trail records for.
func (t *Trail) TripID() string {
	if t == nil {
		return ""
	}
	return t.tripID
}

// Step records the start of a pipeline step.
func (t *Trail) Step(step string, payload map[string]any) {
	t.append(Entry{Step: step, Status: StatusStep, Payload: payload})
}

// Success records a completed step with its elapsed time.
func (t *Trail) Success(step string, elapsed time.Duration, payload map[string]any) {
	t.append(Entry{Step: step, Status: StatusSuccess, Elapsed: elapsed, Payload: payload})
}

// Failure records a failed step with its elapsed time.
func (t *Trail) Failure(step string, elapsed time.Duration, payload map[string]any) {
	t.append(Entry{Step: step, Status: StatusFailure, Elapsed: elapsed, Payload: payload})
}

// Finalize records the terminal entry for the trip.
func (t *Trail) Finalize(success bool, elapsed time.Duration, payload map[string]any) {
	status := StatusSuccess
	if !success {
		status = StatusFailure
	}
	t.append(Entry{Step: "pipeline", Status: status, Elapsed: elapsed, Payload: payload, Final: true})
}

func (t *Trail) append(e Entry) {
	if t == nil || t.sink == nil {
		return
	}
	e.TripID = t.tripID
	e.Timestamp = time.Now().UTC()
	t.sink.Append(e)
}
