package audit

import "sync"

// MemorySink collects entries in memory. It exists for tests and for
// callers that inspect a trail after the fact.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Sink = (*MemorySink)(nil)

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append stores the entry.
func (s *MemorySink) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// Entries returns a copy of everything appended so far, in order.
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// ByStep returns the entries recorded for one step, in order.
func (s *MemorySink) ByStep(step string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, e := range s.entries {
		if e.Step == step {
			out = append(out, e)
		}
	}
	return out
}
