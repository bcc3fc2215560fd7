package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Record is a decoded document with its identity.
type Record[T any] struct {
	ID       string
	Revision string
	Doc      T
}

// Typed is a collection handle that encodes and decodes T as JSON.
type Typed[T any] struct {
	store *Store
	name  string
}

// For returns a typed handle on the named collection.
func For[T any](s *Store, collection string) *Typed[T] {
	return &Typed[T]{store: s, name: collection}
}

func (t *Typed[T]) Insert(ctx context.Context, id string, doc T) (Record[T], error) {
	id, rev, err := t.store.Insert(ctx, t.name, id, doc)
	if err != nil {
		return Record[T]{}, err
	}
	return Record[T]{ID: id, Revision: rev, Doc: doc}, nil
}

func (t *Typed[T]) Get(ctx context.Context, id string) (Record[T], error) {
	raw, err := t.store.Get(ctx, t.name, id)
	if err != nil {
		return Record[T]{}, err
	}
	return decode[T](raw)
}

func (t *Typed[T]) Replace(ctx context.Context, id, rev string, doc T) (Record[T], error) {
	newRev, err := t.store.Replace(ctx, t.name, id, rev, doc)
	if err != nil {
		return Record[T]{}, err
	}
	return Record[T]{ID: id, Revision: newRev, Doc: doc}, nil
}

func (t *Typed[T]) Delete(ctx context.Context, id, rev string) error {
	return t.store.Delete(ctx, t.name, id, rev)
}

func (t *Typed[T]) QueryView(ctx context.Context, view string, key any) ([]Record[T], error) {
	rows, err := t.store.QueryView(ctx, t.name, view, key)
	if err != nil {
		return nil, err
	}
	out := make([]Record[T], 0, len(rows))
	for _, row := range rows {
		rec, err := decode[T](row.Record)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *Typed[T]) FindUnique(ctx context.Context, field, value string) (Record[T], error) {
	raw, err := t.store.FindUnique(ctx, t.name, field, value)
	if err != nil {
		return Record[T]{}, err
	}
	return decode[T](raw)
}

func (t *Typed[T]) All(ctx context.Context) ([]Record[T], error) {
	raws, err := t.store.All(ctx, t.name)
	if err != nil {
		return nil, err
	}
	out := make([]Record[T], 0, len(raws))
	for _, raw := range raws {
		rec, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func decode[T any](raw RawRecord) (Record[T], error) {
	var doc T
	if err := json.Unmarshal(raw.Body, &doc); err != nil {
		return Record[T]{}, fmt.Errorf("decode document %s: %w", raw.ID, err)
	}
	return Record[T]{ID: raw.ID, Revision: raw.Revision, Doc: doc}, nil
}
