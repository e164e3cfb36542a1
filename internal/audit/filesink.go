package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	fileTimeFormat = "2006-01-02 15:04:05"
	rule           = "================================================================================"
)

// FileSink writes each trip's trail to its own log file under a directory,
// one human-readable block per entry. The first entry for a trip opens the
// file and writes a header; the Final entry writes the completion footer and
// closes it. Write failures are logged, never returned.
type FileSink struct {
	dir string

	mu    sync.Mutex
	files map[string]*os.File
}

var _ Sink = (*FileSink)(nil)

// NewFileSink creates a sink writing under dir. The directory is created on
// first append.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir, files: make(map[string]*os.File)}
}

// Path returns the log file path for a trip.
func (s *FileSink) Path(tripID string) string {
	return filepath.Join(s.dir, tripID+".log")
}

// Append writes the entry to the trip's log file.
func (s *FileSink) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[e.TripID]
	if !ok {
		var err error
		f, err = s.open(e)
		if err != nil {
			log.Printf("WARNING: audit: open trip log for %s: %v", e.TripID, err)
			return
		}
		s.files[e.TripID] = f
	}

	if _, err := f.WriteString(renderEntry(e)); err != nil {
		log.Printf("WARNING: audit: write trip log for %s: %v", e.TripID, err)
	}

	if e.Final {
		if _, err := f.WriteString(renderFooter(e)); err != nil {
			log.Printf("WARNING: audit: write trip log for %s: %v", e.TripID, err)
		}
		if err := f.Close(); err != nil {
			log.Printf("WARNING: audit: close trip log for %s: %v", e.TripID, err)
		}
		delete(s.files, e.TripID)
	}
}

// Close releases file handles for trips that never finalized.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first error
	for id, f := range s.files {
		if err := f.Close(); err != nil && first == nil {
			first = fmt.Errorf("audit: close trip log for %s: %w", id, err)
		}
		delete(s.files, id)
	}
	return first
}

func (s *FileSink) open(e Entry) (*os.File, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(s.Path(e.TripID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	if _, err := f.WriteString(renderHeader(e)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func renderHeader(e Entry) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	if goal := payloadString(e.Payload, "raw_goal"); goal != "" {
		fmt.Fprintf(&b, "TRIP LOG STARTED: %s\n", goal)
	} else {
		b.WriteString("TRIP LOG STARTED\n")
	}
	fmt.Fprintf(&b, "Trip ID: %s\n", e.TripID)
	fmt.Fprintf(&b, "Started: %s\n", e.Timestamp.Format(fileTimeFormat))
	b.WriteString(rule + "\n")
	return b.String()
}

func renderEntry(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s: %s", e.Timestamp.Format(fileTimeFormat), e.Status, e.Step)
	if e.Elapsed > 0 {
		fmt.Fprintf(&b, " (%s)", e.Elapsed.Round(time.Millisecond))
	}
	b.WriteString("\n")
	if len(e.Payload) > 0 {
		raw, err := json.MarshalIndent(e.Payload, "  ", "  ")
		if err != nil {
			fmt.Fprintf(&b, "  <payload unavailable: %v>\n", err)
		} else {
			fmt.Fprintf(&b, "  %s\n", raw)
		}
	}
	return b.String()
}

func renderFooter(e Entry) string {
	outcome := "TRIP PLANNING COMPLETED SUCCESSFULLY"
	if e.Status == StatusFailure {
		outcome = "TRIP PLANNING FAILED"
	}
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(outcome + "\n")
	if summary := payloadString(e.Payload, "summary"); summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", summary)
	}
	fmt.Fprintf(&b, "Ended: %s\n", e.Timestamp.Format(fileTimeFormat))
	b.WriteString(rule + "\n")
	return b.String()
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	v, _ := payload[key].(string)
	return v
}
