// Package db owns the MongoDB connection and the signups store. The
// store handle is constructed once in main and passed to everything that
// needs it; there is no package-level client.
package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rollcall/models"
	"rollcall/reconcile"
	"rollcall/sheet"
)

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// Store is the single source of truth for slot rows. The mutex
// serializes reconciliation runs end to end: the read-index, diff, and
// batch-write steps of two concurrent imports must never interleave or
// position-keyed lookups race and duplicate inserts.
type Store struct {
	Signups *mongo.Collection
	mu      sync.Mutex
}

func NewStore(client *mongo.Client) *Store {
	return &Store{
		Signups: client.Database("rollcall").Collection("signups"),
	}
}

// LoadRows returns every stored row in stable persisted (seq) order.
func (s *Store) LoadRows(ctx context.Context) ([]models.SlotRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cur, err := s.Signups.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.SlotRecord
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Sync reconciles one incoming batch against the store as a single
// logical write: load rows, build the plan, apply all updates and
// inserts in one ordered bulk. Callers get the report or an error with
// nothing applied.
func (s *Store) Sync(ctx context.Context, table *sheet.Table) (*models.SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.LoadRows(ctx)
	if err != nil {
		return nil, err
	}

	plan, err := reconcile.Build(rows, table)
	if err != nil {
		return nil, err
	}

	nextSeq := int64(1)
	if len(rows) > 0 {
		nextSeq = rows[len(rows)-1].Seq + 1
	}

	var writes []mongo.WriteModel
	for _, u := range plan.Updates {
		set := bson.M{}
		for name, val := range u.Fields {
			set[name] = val
		}
		if u.Quantity != nil {
			set["quantity"] = *u.Quantity
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"seq": u.Seq}).
			SetUpdate(bson.M{"$set": set}))
	}
	for i := range plan.Inserts {
		rec := plan.Inserts[i]
		rec.Seq = nextSeq
		nextSeq++
		writes = append(writes, mongo.NewInsertOneModel().SetDocument(rec))
	}

	if len(writes) > 0 {
		wctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if _, err := s.Signups.BulkWrite(wctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
			return nil, err
		}
	}

	report := plan.Report
	report.BatchID = uuid.NewString()
	return &report, nil
}
