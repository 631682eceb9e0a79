package bizdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Records is a type-erased view of a registered collection. Records travel as
// JSON so callers that only know a collection name (the CLI, importers) can
// work with any record type.
type Records interface {
	Schema() *Schema
	// Decode parses one JSON record strictly: unknown fields are rejected.
	Decode(raw []byte) (any, error)
	Insert(ctx context.Context, raw []byte) (string, error)
	InsertMany(ctx context.Context, raw []byte) ([]string, error)
	Update(ctx context.Context, id string, patch Patch) error
	Remove(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (any, error)
	List(ctx context.Context) ([]any, error)
	Search(ctx context.Context, term string, fields ...string) ([]any, error)
	Exists(ctx context.Context, id string) (bool, error)
	// Validated returns a view whose writes run ValidRecord before storing.
	Validated() Records
}

// Lookup returns the Records view of a registered collection on db.
func Lookup(ctx context.Context, db *DB, collection string) (Records, error) {
	schema, ok := Get(collection)
	if !ok {
		return nil, fmt.Errorf("bizdesk: collection %q is not registered", collection)
	}
	return schema.open(ctx, db)
}

type recordSet[T any] struct {
	c      *Collection[T]
	checks []Check[T]
}

func (r *recordSet[T]) Schema() *Schema {
	return r.c.schema
}

func (r *recordSet[T]) Decode(raw []byte) (any, error) {
	rec, err := decodeStrict[T](raw)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordSet[T]) Insert(ctx context.Context, raw []byte) (string, error) {
	rec, err := decodeStrict[T](raw)
	if err != nil {
		return "", err
	}
	return r.c.Add(ctx, &rec, r.checks...)
}

func (r *recordSet[T]) InsertMany(ctx context.Context, raw []byte) ([]string, error) {
	var recs []T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("bizdesk: decode %s batch: %w", r.c.schema.Collection, err)
	}
	return r.c.AddMany(ctx, recs, r.checks...)
}

func (r *recordSet[T]) Update(ctx context.Context, id string, patch Patch) error {
	return r.c.Update(ctx, id, patch, r.checks...)
}

func (r *recordSet[T]) Remove(ctx context.Context, id string) error {
	return r.c.Remove(ctx, id)
}

func (r *recordSet[T]) Get(ctx context.Context, id string) (any, error) {
	rec, err := r.c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordSet[T]) List(ctx context.Context) ([]any, error) {
	recs, err := r.c.All(ctx)
	if err != nil {
		return nil, err
	}
	return boxAll(recs), nil
}

func (r *recordSet[T]) Search(ctx context.Context, term string, fields ...string) ([]any, error) {
	match, err := ContainsFold[T](term, fields...)
	if err != nil {
		return nil, err
	}
	recs, err := r.c.Query(ctx, match)
	if err != nil {
		return nil, err
	}
	return boxAll(recs), nil
}

func (r *recordSet[T]) Exists(ctx context.Context, id string) (bool, error) {
	return r.c.Has(ctx, id)
}

func (r *recordSet[T]) Validated() Records {
	return &recordSet[T]{c: r.c, checks: []Check[T]{ValidRecord[T](r.c.db)}}
}

func decodeStrict[T any](raw []byte) (T, error) {
	var rec T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return rec, fmt.Errorf("bizdesk: decode record: %w", err)
	}
	if dec.More() {
		return rec, fmt.Errorf("bizdesk: decode record: unexpected data after record")
	}
	return rec, nil
}

func boxAll[T any](recs []T) []any {
	out := make([]any, len(recs))
	for i := range recs {
		out[i] = &recs[i]
	}
	return out
}
