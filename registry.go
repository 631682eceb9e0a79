package bizdesk

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/dwoolworth/bizdesk/internal"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*Schema{}
	typeIndex  = map[reflect.Type]*Schema{}
)

var modelType = reflect.TypeOf(Model{})

// Register parses record type T and registers its schema under a collection name.
// T must be a struct that embeds bizdesk.Model. The module tag names the
// business module that owns the collection and is what the session gate checks.
func Register[T any](collection, module string) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("bizdesk: Register expects a struct, got %s", t.Kind())
	}
	if collection == "" {
		return fmt.Errorf("bizdesk: Register %s with empty collection name", t.Name())
	}
	if f, ok := t.FieldByName("Model"); !ok || !f.Anonymous || f.Type != modelType {
		return fmt.Errorf("bizdesk: %s does not embed bizdesk.Model", t.Name())
	}

	schema := &Schema{
		ModelName:  t.Name(),
		Collection: collection,
		Module:     module,
		typ:        t,
	}

	for _, f := range internal.StructFields(t) {
		fs, err := parseField(f, collection)
		if err != nil {
			return fmt.Errorf("bizdesk: %s.%s: %w", t.Name(), f.Name, err)
		}
		schema.Fields = append(schema.Fields, fs)
	}

	schema.Hooks = detectHooks(reflect.New(t).Interface())
	schema.open = func(ctx context.Context, db *DB) (Records, error) {
		c, err := NewCollection[T](db)
		if err != nil {
			return nil, err
		}
		return &recordSet[T]{c: c}, nil
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[collection]; exists {
		return fmt.Errorf("bizdesk: collection %q is already registered", collection)
	}
	if _, exists := typeIndex[t]; exists {
		return fmt.Errorf("bizdesk: model %q is already registered", t.Name())
	}
	registry[collection] = schema
	typeIndex[t] = schema

	return nil
}

// parseField builds the schema of one struct field and resolves its default
// and entry layout.
func parseField(f reflect.StructField, collection string) (FieldSchema, error) {
	fs, err := ParseTag(f.Tag.Get("bizdesk"))
	if err != nil {
		return fs, err
	}
	fs.Name = f.Name
	fs.JSONName = internal.JSONName(f)
	fs.Type = internal.TypeName(f.Type)

	if fs.AppendOnly && f.Type.Kind() != reflect.Slice {
		return fs, errors.New("appendonly needs a slice")
	}
	// checks run under the collection lock, so a record cannot look itself up
	if fs.Ref == collection {
		return fs, fmt.Errorf("ref=%s points at its own collection", fs.Ref)
	}
	if fs.def, err = compileDefault(f.Type, fs); err != nil {
		return fs, err
	}
	if fs.Stamp != "" {
		if fs.entry, err = newEntryLayout(f.Type.Elem(), fs.Stamp); err != nil {
			return fs, err
		}
	}
	return fs, nil
}

// GetAll returns all registered schemas keyed by collection name.
func GetAll() map[string]*Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make(map[string]*Schema, len(registry))
	for k, v := range registry {
		result[k] = v
	}
	return result
}

// Collections returns the registered collection names in sorted order.
func Collections() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Get returns the schema registered for a collection name, or false if not found.
func Get(collection string) (*Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[collection]
	return s, ok
}

// schemaOf resolves the schema registered for a record type.
func schemaOf[T any]() (*Schema, error) {
	return schemaFor(reflect.TypeOf((*T)(nil)).Elem())
}

// schemaFor resolves the schema for a struct type, a pointer to one, or a slice of either.
func schemaFor(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	registryMu.RLock()
	s, ok := typeIndex[t]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("bizdesk: model %q is not registered", t.Name())
	}
	return s, nil
}

// detectHooks checks which hook interfaces a model implements.
func detectHooks(model interface{}) []string {
	var hooks []string
	if _, ok := model.(BeforeCreate); ok {
		hooks = append(hooks, "BeforeCreate")
	}
	if _, ok := model.(BeforeSave); ok {
		hooks = append(hooks, "BeforeSave")
	}
	return hooks
}
