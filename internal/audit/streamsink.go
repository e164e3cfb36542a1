package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	streamPrefix  = "wayplan:audit:"
	streamMaxLen  = 1024
	streamTimeout = 2 * time.Second
)

// StreamSink mirrors the trail into a Redis stream per trip so external
// consumers can tail plan generation live. Appends are fire-and-forget; a
// broken Redis connection degrades observability, not planning.
type StreamSink struct {
	client *redis.Client
}

var _ Sink = (*StreamSink)(nil)

// NewStreamSink wraps an existing Redis client.
func NewStreamSink(client *redis.Client) *StreamSink {
	return &StreamSink{client: client}
}

// StreamKey returns the Redis stream name for a trip.
func StreamKey(tripID string) string {
	return streamPrefix + tripID
}

// Append adds the entry to the trip's stream, trimming it to a bounded
// length.
func (s *StreamSink) Append(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), streamTimeout)
	defer cancel()

	values := map[string]any{
		"timestamp": e.Timestamp.Format(time.RFC3339Nano),
		"step":      e.Step,
		"status":    string(e.Status),
	}
	if e.Elapsed > 0 {
		values["elapsed"] = e.Elapsed.String()
	}
	if e.Final {
		values["final"] = "true"
	}
	if len(e.Payload) > 0 {
		raw, err := json.Marshal(e.Payload)
		if err == nil {
			values["payload"] = string(raw)
		}
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(e.TripID),
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		log.Printf("WARNING: audit: stream append for trip %s: %v", e.TripID, err)
	}
}
