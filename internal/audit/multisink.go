package audit

// MultiSink fans each entry out to every wrapped sink, in order. Nil sinks
// are skipped so callers can pass optional sinks without guarding.
type MultiSink struct {
	sinks []Sink
}

var _ Sink = (*MultiSink)(nil)

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...Sink) *MultiSink {
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &MultiSink{sinks: kept}
}

// Append forwards the entry to every sink.
func (m *MultiSink) Append(e Entry) {
	for _, s := range m.sinks {
		s.Append(e)
	}
}
