package planstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborline/wayplan/internal/planner"
)

// Memory is a concurrency-safe in-memory store. Records live in a map
// keyed by ID with a separate slice maintaining insertion order so that
// listings are deterministic when creation times collide.
type Memory struct {
	mu       sync.RWMutex
	records  map[string]*Record
	orderIDs []string // insertion-order record IDs
}

var _ Store = (*Memory)(nil)

// NewMemory returns an initialized Memory store ready for use.
func NewMemory() *Memory {
	return &Memory{
		records:  make(map[string]*Record),
		orderIDs: make([]string, 0),
	}
}

// Create stores the plan under a fresh UUID with status active.
func (s *Memory) Create(ctx context.Context, plan *planner.Plan) (*Record, error) {
	if plan == nil {
		return nil, fmt.Errorf("planstore: nil plan")
	}

	now := time.Now().UTC()
	rec := &Record{
		Plan:      *plan.Clone(),
		ID:        uuid.NewString(),
		Status:    StatusActive,
		UpdatedAt: now,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	s.orderIDs = append(s.orderIDs, rec.ID)
	return copyRecord(rec), nil
}

// Get returns a deep copy of the record with the given ID. The returned
// copy is safe to mutate without affecting the store.
func (s *Memory) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec), nil
}

// List returns records ordered by plan creation time, newest first.
func (s *Memory) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	return s.collect(func(*Record) bool { return true }, opts), nil
}

// Search returns records whose goal or description contains the term,
// case-insensitively.
func (s *Memory) Search(ctx context.Context, term string, opts ListOptions) ([]Record, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	match := func(rec *Record) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(rec.Goal), needle) ||
			strings.Contains(strings.ToLower(rec.Description), needle)
	}
	return s.collect(match, opts), nil
}

// Update replaces the stored plan in place. The record keeps its ID and
// status; a zero CreatedAt on the incoming plan preserves the stored one.
func (s *Memory) Update(ctx context.Context, id string, plan *planner.Plan) (*Record, error) {
	if plan == nil {
		return nil, fmt.Errorf("planstore: nil plan")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	created := rec.CreatedAt
	rec.Plan = *plan.Clone()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = created
	}
	rec.UpdatedAt = time.Now().UTC()
	return copyRecord(rec), nil
}

// UpdateStatus moves the record to a new lifecycle state.
func (s *Memory) UpdateStatus(ctx context.Context, id string, status Status) (*Record, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("planstore: invalid status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	return copyRecord(rec), nil
}

// Delete removes the record with the given ID.
func (s *Memory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	for i, rid := range s.orderIDs {
		if rid == id {
			s.orderIDs = append(s.orderIDs[:i], s.orderIDs[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *Memory) Ping(ctx context.Context) error {
	return nil
}

// collect snapshots all matching records sorted newest first, then applies
// offset and limit.
func (s *Memory) collect(match func(*Record) bool, opts ListOptions) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Record, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		rec := s.records[id]
		if match(rec) {
			matched = append(matched, *copyRecord(rec))
		}
	}

	// Stable sort keeps insertion order for records created in the same
	// instant.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return []Record{}
		}
		matched = matched[opts.Offset:]
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched
}

// copyRecord returns a new Record whose embedded plan is deep-copied, so
// callers cannot mutate stored state through the returned value.
func copyRecord(src *Record) *Record {
	dst := *src
	dst.Plan = *src.Plan.Clone()
	return &dst
}
