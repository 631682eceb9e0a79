package bizdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sort"
	"sync"
	"time"
)

// Patch is a partial update keyed by JSON field name. Only the named fields are
// replaced; values are converted to the field type through JSON.
type Patch map[string]any

// Check inspects a record after the store has filled it and before it is
// written. Checks run while the collection is locked, so they must not use the
// same collection.
type Check[T any] func(ctx context.Context, rec *T) error

// Collection is the in-memory, write-through view of one named collection.
//
// The collection is read from the backend on first access and held in memory.
// Every mutation builds a new slice, persists the whole collection, and only
// then replaces the in-memory slice, so a failed write leaves the previous
// state visible.
type Collection[T any] struct {
	db     *DB
	schema *Schema

	mu      sync.Mutex
	loaded  bool
	records []T
}

// NewCollection returns the collection registered for T on db.
// Repeated calls on the same DB return the same collection.
func NewCollection[T any](db *DB) (*Collection[T], error) {
	schema, err := schemaOf[T]()
	if err != nil {
		return nil, err
	}
	c := db.collection(schema, func() any {
		return &Collection[T]{db: db, schema: schema}
	})
	coll, ok := c.(*Collection[T])
	if !ok {
		return nil, fmt.Errorf("bizdesk: collection %q is bound to %T", schema.Collection, c)
	}
	return coll, nil
}

// Name returns the collection name (the blob key).
func (c *Collection[T]) Name() string {
	return c.schema.Collection
}

// Schema returns the registered schema of T.
func (c *Collection[T]) Schema() *Schema {
	return c.schema
}

// Add assigns a fresh id, sets createdAt and updatedAt, appends the record and
// persists the collection. On success rec carries the id and timestamps.
// A failing check aborts the Add.
func (c *Collection[T]) Add(ctx context.Context, rec *T, checks ...Check[T]) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("bizdesk: Add on %s with nil record", c.schema.Collection)
	}

	var id string
	err := c.db.runMiddleware(ctx, &OpInfo{
		Operation: OpAdd, Collection: c.schema.Collection,
		ModelName: c.schema.ModelName, Model: rec,
	}, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.load(ctx); err != nil {
			return err
		}

		item := *rec
		if err := c.prepare(ctx, &item, c.db.Now(), nil, checks); err != nil {
			return err
		}

		next := make([]T, 0, len(c.records)+1)
		next = append(next, c.records...)
		next = append(next, item)
		if err := c.commit(ctx, "add", next); err != nil {
			return err
		}

		*rec = item
		id = getModelID(&item)
		return nil
	})

	return id, err
}

// Update merges patch over the record with the given id (shallow: only named
// fields are replaced) and persists. Returns ErrNotFound when id is absent and
// ValidationErrors when patch names unknown or store-managed fields. Checks see
// the merged record.
func (c *Collection[T]) Update(ctx context.Context, id string, patch Patch, checks ...Check[T]) error {
	if errs := checkPatch(c.schema, patch); len(errs) > 0 {
		return ValidationErrors(errs)
	}
	_, err := c.mutate(ctx, OpUpdate, id, patch, func(item *T) error {
		return applyPatch(item, c.schema, patch)
	}, checks)
	return err
}

// ApplyPatch merges patch into rec the way Update does, without persisting.
// It lets callers validate the merged record inside Mutate.
func ApplyPatch[T any](rec *T, patch Patch) error {
	schema, err := schemaOf[T]()
	if err != nil {
		return err
	}
	if errs := checkPatch(schema, patch); len(errs) > 0 {
		return ValidationErrors(errs)
	}
	return applyPatch(rec, schema, patch)
}

// Replace overwrites every field of an existing record with rec's values.
// The id and createdAt of the stored record are kept.
func (c *Collection[T]) Replace(ctx context.Context, rec *T) error {
	if rec == nil {
		return fmt.Errorf("bizdesk: Replace on %s with nil record", c.schema.Collection)
	}
	id := getModelID(rec)
	if id == "" {
		return fmt.Errorf("bizdesk: cannot replace %s record with empty id", c.schema.Collection)
	}

	saved, err := c.mutate(ctx, OpReplace, id, rec, func(item *T) error {
		*item = *rec
		return nil
	}, nil)
	if err != nil {
		return err
	}
	*rec = saved
	return nil
}

// Mutate applies fn to a copy of the record with the given id and persists the
// result. It is the typed form of Update used for list appends and computed fields.
func (c *Collection[T]) Mutate(ctx context.Context, id string, fn func(rec *T) error) (T, error) {
	return c.mutate(ctx, OpUpdate, id, nil, fn, nil)
}

// Remove deletes the record with the given id and persists the collection.
// Removing an id that is not present is a no-op and returns nil.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	return c.db.runMiddleware(ctx, &OpInfo{
		Operation: OpRemove, Collection: c.schema.Collection,
		ModelName: c.schema.ModelName, ID: id,
	}, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.load(ctx); err != nil {
			return err
		}

		idx := c.indexOf(id)
		if idx < 0 {
			return nil
		}

		next := slices.Delete(slices.Clone(c.records), idx, idx+1)
		return c.commit(ctx, "remove", next)
	})
}

// Get returns a copy of the record with the given id, or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	found := false
	err := c.db.runMiddleware(ctx, &OpInfo{
		Operation: OpFind, Collection: c.schema.Collection,
		ModelName: c.schema.ModelName, ID: id,
	}, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.load(ctx); err != nil {
			return err
		}
		idx := c.indexOf(id)
		if idx < 0 {
			return ErrNotFound
		}
		rec, err := cloneRecord(c.records[idx])
		if err != nil {
			return err
		}
		out, found = rec, true
		return nil
	})
	if err != nil || !found {
		var zero T
		return zero, err
	}
	return out, nil
}

// Has reports whether a record with the given id exists.
func (c *Collection[T]) Has(ctx context.Context, id string) (bool, error) {
	_, err := c.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// All returns copies of every record in insertion order.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	return c.Query(ctx, nil)
}

// Len returns the number of records.
func (c *Collection[T]) Len(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return 0, err
	}
	return len(c.records), nil
}

// Query returns copies of the records matching match, in insertion order.
// A nil predicate matches everything. Query never mutates the collection and
// re-scans the current state on every call.
func (c *Collection[T]) Query(ctx context.Context, match Predicate[T]) ([]T, error) {
	var out []T
	err := c.db.runMiddleware(ctx, &OpInfo{
		Operation: OpFind, Collection: c.schema.Collection,
		ModelName: c.schema.ModelName,
	}, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.load(ctx); err != nil {
			return err
		}

		var matched []T
		for _, rec := range c.records {
			if match == nil || match(rec) {
				matched = append(matched, rec)
			}
		}
		cloned, err := cloneRecords(matched)
		if err != nil {
			return err
		}
		out = cloned
		return nil
	})
	return out, err
}

// --- internals ---

// mutate is the shared body of Update, Replace and Mutate. fn receives a deep
// copy of the stored record; identity fields are restored after fn runs.
func (c *Collection[T]) mutate(ctx context.Context, op OpType, id string, model any, fn func(*T) error, checks []Check[T]) (T, error) {
	var saved T
	err := c.db.runMiddleware(ctx, &OpInfo{
		Operation: op, Collection: c.schema.Collection,
		ModelName: c.schema.ModelName, ID: id, Model: model,
	}, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.load(ctx); err != nil {
			return err
		}

		idx := c.indexOf(id)
		if idx < 0 {
			return ErrNotFound
		}

		prev := c.records[idx]
		item, err := cloneRecord(prev)
		if err != nil {
			return &StorageError{Collection: c.schema.Collection, Op: string(op), Err: err}
		}
		if err := fn(&item); err != nil {
			return err
		}

		old := modelOf(&prev)
		m := modelOf(&item)
		m.ID = old.ID
		m.CreatedAt = old.CreatedAt

		if hook, ok := any(&item).(BeforeSave); ok {
			if err := hook.BeforeSave(ctx); err != nil {
				return err
			}
		}

		if errs := validateAppendOnly(&prev, &item, c.schema); len(errs) > 0 {
			return ValidationErrors(errs)
		}
		m.UpdatedAt = c.db.nextTimestamp(old.UpdatedAt)
		if errs := c.db.stampEntries(&prev, &item, c.schema, c.db.Now()); len(errs) > 0 {
			return ValidationErrors(errs)
		}
		if err := runChecks(ctx, &item, checks); err != nil {
			return err
		}

		next := slices.Clone(c.records)
		next[idx] = item
		if err := c.commit(ctx, string(op), next); err != nil {
			return err
		}
		saved = item
		return nil
	})
	return saved, err
}

// prepare fills a new record: defaults, id, timestamps, list entries, then
// BeforeCreate and the checks. taken holds ids already claimed by the same batch.
func (c *Collection[T]) prepare(ctx context.Context, item *T, now time.Time, taken map[string]bool, checks []Check[T]) error {
	applyDefaults(item, c.schema, now)

	id := c.db.NewID()
	if id == "" || c.indexOf(id) >= 0 || taken[id] {
		return fmt.Errorf("bizdesk: generated id %q is not unique in %s", id, c.schema.Collection)
	}
	setModelID(item, id)
	setTimestamps(item, now)
	if errs := c.db.stampEntries(nil, item, c.schema, now); len(errs) > 0 {
		return ValidationErrors(errs)
	}

	if hook, ok := any(item).(BeforeCreate); ok {
		if err := hook.BeforeCreate(ctx); err != nil {
			return err
		}
	}
	return runChecks(ctx, item, checks)
}

func runChecks[T any](ctx context.Context, item *T, checks []Check[T]) error {
	for _, check := range checks {
		if err := check(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// load reads the collection blob on first access. Callers hold c.mu.
// A malformed blob is reported and the collection stays unloaded, so no later
// write can replace the data that failed to parse.
func (c *Collection[T]) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	blob, err := c.db.backend.Get(ctx, c.schema.Collection)
	if errors.Is(err, ErrBlobNotFound) {
		c.records = nil
		c.loaded = true
		return nil
	}
	if err != nil {
		return &StorageError{Collection: c.schema.Collection, Op: "load", Err: err}
	}

	records, err := decodeRecords[T](blob)
	if err != nil {
		return &StorageError{Collection: c.schema.Collection, Op: "load", Err: err}
	}

	seen := make(map[string]bool, len(records))
	for i := range records {
		id := getModelID(&records[i])
		if id == "" {
			return &StorageError{Collection: c.schema.Collection, Op: "load",
				Err: fmt.Errorf("record %d has no id", i)}
		}
		if seen[id] {
			return &StorageError{Collection: c.schema.Collection, Op: "load",
				Err: fmt.Errorf("duplicate id %q", id)}
		}
		seen[id] = true
	}

	c.records = records
	c.loaded = true
	return nil
}

// commit persists next and, once the backend accepted it, makes it the
// in-memory collection. Callers hold c.mu.
func (c *Collection[T]) commit(ctx context.Context, op string, next []T) error {
	if next == nil {
		next = []T{}
	}
	blob, err := json.Marshal(next)
	if err != nil {
		return &StorageError{Collection: c.schema.Collection, Op: op, Err: err}
	}
	// decode before writing: memory must hold exactly what a reload would return
	fresh, err := decodeRecords[T](blob)
	if err != nil {
		return &StorageError{Collection: c.schema.Collection, Op: op, Err: err}
	}
	if err := c.db.backend.Put(ctx, c.schema.Collection, blob); err != nil {
		return &StorageError{Collection: c.schema.Collection, Op: op, Err: err}
	}
	c.records = fresh
	return nil
}

func (c *Collection[T]) indexOf(id string) int {
	for i := range c.records {
		if getModelID(&c.records[i]) == id {
			return i
		}
	}
	return -1
}

// decodeRecords parses a collection blob. Unknown fields and trailing data are errors.
func decodeRecords[T any](blob []byte) ([]T, error) {
	if len(bytes.TrimSpace(blob)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()
	var records []T
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after collection")
	}
	return records, nil
}

func cloneRecord[T any](rec T) (T, error) {
	var out T
	raw, err := json.Marshal(rec)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

func cloneRecords[T any](recs []T) ([]T, error) {
	if len(recs) == 0 {
		return []T{}, nil
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return nil, err
	}
	var out []T
	err = json.Unmarshal(raw, &out)
	return out, err
}

// checkPatch rejects fields the schema does not know and fields the store manages.
func checkPatch(schema *Schema, patch Patch) []ValidationError {
	var errs []ValidationError
	for _, key := range sortedKeys(patch) {
		switch {
		case reservedFields[key]:
			errs = append(errs, ValidationError{Field: key, Message: "field is managed by the store"})
		case !schema.HasField(key):
			errs = append(errs, ValidationError{Field: key, Message: "unknown field"})
		}
	}
	return errs
}

// applyPatch assigns each patch value to its field, converting through JSON.
func applyPatch(model interface{}, schema *Schema, patch Patch) error {
	v := reflect.ValueOf(model).Elem()
	var errs []ValidationError

	for _, key := range sortedKeys(patch) {
		field := schema.GetField(key)
		fv := v.FieldByName(field.Name)
		if !fv.IsValid() || !fv.CanSet() {
			errs = append(errs, ValidationError{Field: key, Message: "field cannot be set"})
			continue
		}

		raw, err := json.Marshal(patch[key])
		if err != nil {
			errs = append(errs, ValidationError{Field: key, Message: err.Error()})
			continue
		}
		ptr := reflect.New(fv.Type())
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(ptr.Interface()); err != nil {
			errs = append(errs, ValidationError{
				Field:   key,
				Message: fmt.Sprintf("cannot assign value: %v", err),
			})
			continue
		}
		fv.Set(ptr.Elem())
	}

	if len(errs) > 0 {
		return ValidationErrors(errs)
	}
	return nil
}

func sortedKeys(patch Patch) []string {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// modelOf returns the embedded Model of a registered record via reflection.
func modelOf(model interface{}) *Model {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return v.FieldByName("Model").Addr().Interface().(*Model)
}

// getModelID extracts the ID field from a record.
func getModelID(model interface{}) string {
	return modelOf(model).ID
}

// setModelID sets the ID field on a record.
func setModelID(model interface{}, id string) {
	modelOf(model).ID = id
}

// setTimestamps sets CreatedAt and UpdatedAt on a new record.
func setTimestamps(model interface{}, now time.Time) {
	m := modelOf(model)
	m.CreatedAt = now
	m.UpdatedAt = now
}
