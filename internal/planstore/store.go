// Package planstore persists generated trip plans and tracks their
// lifecycle. Two implementations exist: Memory for single-process use
// and tests, and Mongo for durable deployments.
package planstore

import (
	"context"
	"errors"
	"time"

	"github.com/harborline/wayplan/internal/planner"
)

// Status is the lifecycle state of a stored plan.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// ValidStatus reports whether s is one of the recognized lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// ErrNotFound is returned when no record matches the requested ID.
var ErrNotFound = errors.New("planstore: plan not found")

// Record is a stored plan together with its storage envelope. The store
// assigns the ID on Create; the embedded plan is kept exactly as authored.
type Record struct {
	planner.Plan `bson:",inline"`

	ID        string    `json:"id" bson:"_id"`
	Status    Status    `json:"status" bson:"status"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ListOptions controls pagination for List and Search. Limit <= 0 returns
// all matching records; Offset skips that many records from the newest.
type ListOptions struct {
	Limit  int
	Offset int
}

// Store persists plans. All methods are safe for concurrent use.
type Store interface {
	// Create assigns a fresh ID to the plan and stores it with status
	// active. The returned record is a copy safe to mutate.
	Create(ctx context.Context, plan *planner.Plan) (*Record, error)

	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records ordered by plan creation time, newest first.
	List(ctx context.Context, opts ListOptions) ([]Record, error)

	// Search returns records whose goal or description contains the term,
	// case-insensitively, ordered newest first.
	Search(ctx context.Context, term string, opts ListOptions) ([]Record, error)

	// Update replaces the stored plan, keeping the record's ID and status.
	// A zero CreatedAt on the incoming plan preserves the stored one.
	Update(ctx context.Context, id string, plan *planner.Plan) (*Record, error)

	// UpdateStatus moves the record to a new lifecycle state.
	UpdateStatus(ctx context.Context, id string, status Status) (*Record, error)

	// Delete removes the record, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
