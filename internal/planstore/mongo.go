package planstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harborline/wayplan/internal/planner"
)

const (
	mongoDatabase   = "wayplan"
	mongoCollection = "plans"
	connectTimeout  = 10 * time.Second
)

// Mongo stores plans in a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ Store = (*Mongo)(nil)

// NewMongo connects to the deployment at uri and returns a store backed by
// the wayplan.plans collection. The connection is verified with a ping
// before the store is returned.
func NewMongo(ctx context.Context, uri string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("planstore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("planstore: ping: %w", err)
	}

	m := &Mongo{
		client: client,
		coll:   client.Database(mongoDatabase).Collection(mongoCollection),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		log.Printf("WARNING: planstore: create indexes: %v", err)
	}
	return m, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

// Create stores the plan under a fresh UUID with status active.
func (m *Mongo) Create(ctx context.Context, plan *planner.Plan) (*Record, error) {
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

	if _, err := m.coll.InsertOne(ctx, rec); err != nil {
		return nil, fmt.Errorf("planstore: insert plan: %w", err)
	}
	return rec, nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (m *Mongo) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("planstore: get plan: %w", err)
	}
	return &rec, nil
}

// List returns records ordered by plan creation time, newest first.
func (m *Mongo) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	return m.find(ctx, bson.M{}, opts)
}

// Search returns records whose goal or description contains the term,
// case-insensitively.
func (m *Mongo) Search(ctx context.Context, term string, opts ListOptions) ([]Record, error) {
	filter := bson.M{}
	if term != "" {
		filter["$or"] = bson.A{
			regexFilter("goal", term),
			regexFilter("description", term),
		}
	}
	return m.find(ctx, filter, opts)
}

// Update replaces the stored plan, keeping the record's ID and status.
func (m *Mongo) Update(ctx context.Context, id string, plan *planner.Plan) (*Record, error) {
	if plan == nil {
		return nil, fmt.Errorf("planstore: nil plan")
	}

	existing, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		Plan:      *plan.Clone(),
		ID:        existing.ID,
		Status:    existing.Status,
		UpdatedAt: time.Now().UTC(),
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = existing.CreatedAt
	}

	if _, err := m.coll.ReplaceOne(ctx, bson.M{"_id": id}, rec); err != nil {
		return nil, fmt.Errorf("planstore: update plan: %w", err)
	}
	return rec, nil
}

// UpdateStatus moves the record to a new lifecycle state.
func (m *Mongo) UpdateStatus(ctx context.Context, id string, status Status) (*Record, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("planstore: invalid status %q", status)
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rec Record
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, after).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("planstore: update status: %w", err)
	}
	return &rec, nil
}

// Delete removes the record with the given ID.
func (m *Mongo) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("planstore: delete plan: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping reports whether the deployment is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) find(ctx context.Context, filter bson.M, opts ListOptions) ([]Record, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := m.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("planstore: list plans: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("planstore: decode plans: %w", err)
	}
	return records, nil
}

// regexFilter builds a case-insensitive substring match on one field.
func regexFilter(field, term string) bson.M {
	return bson.M{field: bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}}
}
