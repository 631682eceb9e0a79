package bizdesk

import (
	"fmt"
	"reflect"
	"time"

	"github.com/dwoolworth/bizdesk/internal"
)

var timeType = reflect.TypeOf(time.Time{})

// entryLayout locates the id and creation-time fields in the element type of
// a stamped appendonly list.
type entryLayout struct {
	id    int // index of the string "id" field
	stamp int // index of the time.Time stamp field
}

func newEntryLayout(elem reflect.Type, stamp string) (*entryLayout, error) {
	if elem.Kind() != reflect.Struct {
		return nil, fmt.Errorf("stamp=%s needs struct entries, got %s", stamp, elem)
	}
	l := &entryLayout{id: -1, stamp: -1}
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		if !f.IsExported() {
			continue
		}
		switch name := internal.JSONName(f); {
		case name == "id" && f.Type.Kind() == reflect.String:
			l.id = i
		case name == stamp && f.Type == timeType:
			l.stamp = i
		}
	}
	if l.id < 0 {
		return nil, fmt.Errorf("%s has no string id field", elem.Name())
	}
	if l.stamp < 0 {
		return nil, fmt.Errorf("%s has no time.Time field %q", elem.Name(), stamp)
	}
	return l, nil
}

// stampEntries gives the entries appended to each stamped list since prev an
// id and a creation time when they lack one. With a nil prev every entry is
// new. An id used twice in one list is a validation error.
func (db *DB) stampEntries(prev, next interface{}, schema *Schema, now time.Time) []ValidationError {
	nextV := reflect.Indirect(reflect.ValueOf(next))
	var prevV reflect.Value
	if prev != nil {
		prevV = reflect.Indirect(reflect.ValueOf(prev))
	}

	var errs []ValidationError
	for _, field := range schema.Fields {
		if field.entry == nil {
			continue
		}
		list := nextV.FieldByName(field.Name)
		start := 0
		if prevV.IsValid() {
			start = prevV.FieldByName(field.Name).Len()
		}

		seen := make(map[string]bool, list.Len())
		for i := 0; i < list.Len(); i++ {
			entry := list.Index(i)
			id := entry.Field(field.entry.id)
			if i >= start {
				if id.String() == "" {
					id.SetString(db.NewID())
				}
				if ts := entry.Field(field.entry.stamp); ts.Interface().(time.Time).IsZero() {
					ts.Set(reflect.ValueOf(now))
				}
			}
			if id.String() == "" {
				continue
			}
			if seen[id.String()] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s[%d].id", field.JSONName, i),
					Message: fmt.Sprintf("entry id %q is already used", id.String()),
				})
			}
			seen[id.String()] = true
		}
	}
	return errs
}
