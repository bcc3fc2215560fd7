// Package search keeps a best-effort full-text mirror of tasks in Redis.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/redis/go-redis/v9"
)

// Config holds search index connection settings.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Index         string
}

// Hit is one search result: the task id and its search document.
type Hit struct {
	ID       string        `json:"id"`
	Document task.Document `json:"document"`
}

// Stats tracks index operation counters.
type Stats struct {
	Upserts  uint64 `json:"upserts"`
	Removes  uint64 `json:"removes"`
	Searches uint64 `json:"searches"`
	Errors   uint64 `json:"errors"`
}

// Index stores one JSON search document per task id plus a set of ids per
// owner. Keys live under "<index>:".
type Index struct {
	client *redis.Client
	prefix string
	stats  *Stats
}

type indexMeta struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// New creates an index over an existing Redis client.
func New(client *redis.Client, name string) *Index {
	return &Index{
		client: client,
		prefix: name + ":",
		stats:  &Stats{},
	}
}

func (x *Index) metaKey() string              { return x.prefix + "meta" }
func (x *Index) docKey(id string) string      { return x.prefix + "doc:" + id }
func (x *Index) ownerKey(owner string) string { return x.prefix + "owner:" + owner }

// Ensure creates the index marker. An existing marker counts as success.
func (x *Index) Ensure(ctx context.Context) error {
	meta, err := json.Marshal(indexMeta{Name: x.prefix[:len(x.prefix)-1], CreatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := x.client.SetNX(ctx, x.metaKey(), meta, 0).Err(); err != nil {
		return x.fail("ensure", err)
	}
	return nil
}

// Upsert indexes or replaces the search document for id.
func (x *Index) Upsert(ctx context.Context, id string, doc task.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		atomic.AddUint64(&x.stats.Errors, 1)
		return fmt.Errorf("search marshal error: %w", err)
	}

	_, err = x.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, x.docKey(id), data, 0)
		pipe.SAdd(ctx, x.ownerKey(doc.OwnerID), id)
		return nil
	})
	if err != nil {
		return x.fail("upsert", err)
	}
	atomic.AddUint64(&x.stats.Upserts, 1)
	return nil
}

// Remove deletes the search document for id. A missing document is success.
func (x *Index) Remove(ctx context.Context, id string) error {
	data, err := x.client.Get(ctx, x.docKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		atomic.AddUint64(&x.stats.Removes, 1)
		return nil
	}
	if err != nil {
		return x.fail("remove", err)
	}

	var doc task.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		// Without an owner we can only drop the document itself.
		doc.OwnerID = ""
	}

	_, err = x.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, x.docKey(id))
		if doc.OwnerID != "" {
			pipe.SRem(ctx, x.ownerKey(doc.OwnerID), id)
		}
		return nil
	})
	if err != nil {
		return x.fail("remove", err)
	}
	atomic.AddUint64(&x.stats.Removes, 1)
	return nil
}

// IDs returns the id of every indexed document.
func (x *Index) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := x.client.Scan(ctx, 0, x.docKey("*"), 500).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), x.docKey("")))
	}
	if err := iter.Err(); err != nil {
		return nil, x.fail("ids", err)
	}
	return ids, nil
}

// Search returns the owner's documents whose title or description
// phrase-prefix matches query, oldest first.
func (x *Index) Search(ctx context.Context, query, ownerID string) ([]Hit, error) {
	atomic.AddUint64(&x.stats.Searches, 1)

	q := ParseQuery(query)
	if q.Empty() {
		return []Hit{}, nil
	}

	ids, err := x.client.SMembers(ctx, x.ownerKey(ownerID)).Result()
	if err != nil {
		return nil, x.fail("search", err)
	}
	if len(ids) == 0 {
		return []Hit{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = x.docKey(id)
	}
	values, err := x.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, x.fail("search", err)
	}

	hits := make([]Hit, 0, len(ids))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var doc task.Document
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			continue
		}
		if doc.OwnerID != ownerID {
			continue
		}
		if q.Matches(doc.Title) || q.Matches(doc.Description) {
			hits = append(hits, Hit{ID: ids[i], Document: doc})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i].Document.CreatedAt, hits[j].Document.CreatedAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return hits[i].ID < hits[j].ID
	})
	return hits, nil
}

// GetStats returns a snapshot of the counters.
func (x *Index) GetStats() Stats {
	return Stats{
		Upserts:  atomic.LoadUint64(&x.stats.Upserts),
		Removes:  atomic.LoadUint64(&x.stats.Removes),
		Searches: atomic.LoadUint64(&x.stats.Searches),
		Errors:   atomic.LoadUint64(&x.stats.Errors),
	}
}

// Ping checks the Redis connection.
func (x *Index) Ping(ctx context.Context) error {
	if err := x.client.Ping(ctx).Err(); err != nil {
		return x.fail("ping", err)
	}
	return nil
}

// Close closes the Redis client.
func (x *Index) Close() error {
	return x.client.Close()
}

func (x *Index) fail(op string, err error) error {
	atomic.AddUint64(&x.stats.Errors, 1)
	return fmt.Errorf("%w: %s: %w", errs.ErrIndexUnavailable, op, err)
}
