// Package status keeps the live attendance status per slot in a Redis
// hash, independent of the row store. Keys are slot key strings; a
// missing entry means "none".
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rollcall/errs"
	"rollcall/models"
)

const (
	hashKey  = "rollcall:status"
	stampKey = "rollcall:status:updated"
)

type Overlay struct {
	rdb *redis.Client
}

func NewOverlay(rdb *redis.Client) *Overlay {
	return &Overlay{rdb: rdb}
}

// Set validates and stores one status. Setting "none" deletes the entry
// outright; an entry with status none is never persisted.
func (o *Overlay) Set(ctx context.Context, key, st string) error {
	if key == "" {
		return &errs.ValidationError{Msg: "missing slot key"}
	}
	if !models.ValidStatus(st) {
		return &errs.ValidationError{Msg: fmt.Sprintf("invalid status %q", st)}
	}

	if st == models.StatusNone {
		if err := o.rdb.HDel(ctx, hashKey, key).Err(); err != nil {
			return err
		}
		return o.rdb.HDel(ctx, stampKey, key).Err()
	}

	if err := o.rdb.HSet(ctx, hashKey, key, st).Err(); err != nil {
		return err
	}
	return o.rdb.HSet(ctx, stampKey, key, time.Now().UTC().Format(time.RFC3339)).Err()
}

// Map returns every stored status keyed by slot key string. Absent keys
// are implicitly none.
func (o *Overlay) Map(ctx context.Context) (map[string]string, error) {
	return o.rdb.HGetAll(ctx, hashKey).Result()
}

// Entries returns the full overlay including update stamps.
func (o *Overlay) Entries(ctx context.Context) ([]models.StatusEntry, error) {
	statuses, err := o.rdb.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return nil, err
	}
	stamps, err := o.rdb.HGetAll(ctx, stampKey).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.StatusEntry, 0, len(statuses))
	for k, st := range statuses {
		e := models.StatusEntry{Key: k, Status: st}
		if ts, ok := stamps[k]; ok {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				e.UpdatedAt = t
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
