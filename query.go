package bizdesk

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
)

// Predicate selects records in Query. It must not modify the record.
type Predicate[T any] func(rec T) bool

// ContainsFold returns a predicate matching records where any of the named
// JSON fields contains term, compared with Unicode case folding. Non-string
// fields are compared by their printed value. An empty term matches every record.
// The predicate is safe for concurrent use.
func ContainsFold[T any](term string, fields ...string) (Predicate[T], error) {
	schema, err := schemaOf[T]()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("bizdesk: ContainsFold on %s needs at least one field", schema.Collection)
	}

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		fs := schema.GetField(f)
		if fs == nil {
			return nil, fmt.Errorf("bizdesk: %s has no field %q", schema.ModelName, f)
		}
		names = append(names, fs.Name)
	}

	if term == "" {
		return func(T) bool { return true }, nil
	}

	needle := cases.Fold().String(term)
	return func(rec T) bool {
		// a Caser keeps state, so each call gets its own
		fold := cases.Fold()
		v := reflect.ValueOf(rec)
		for _, name := range names {
			fv := v.FieldByName(name)
			if !fv.IsValid() {
				continue
			}
			if strings.Contains(fold.String(stringValue(fv)), needle) {
				return true
			}
		}
		return false
	}, nil
}

// Equals returns a predicate matching records whose JSON field equals value
// by printed form. It is used for status filters.
func Equals[T any](field, value string) (Predicate[T], error) {
	schema, err := schemaOf[T]()
	if err != nil {
		return nil, err
	}
	fs := schema.GetField(field)
	if fs == nil {
		return nil, fmt.Errorf("bizdesk: %s has no field %q", schema.ModelName, field)
	}
	name := fs.Name
	return func(rec T) bool {
		fv := reflect.ValueOf(rec).FieldByName(name)
		return fv.IsValid() && stringValue(fv) == value
	}, nil
}

// And combines predicates; nil predicates are ignored.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	return func(rec T) bool {
		for _, p := range preds {
			if p != nil && !p(rec) {
				return false
			}
		}
		return true
	}
}
