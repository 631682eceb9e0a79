package internal

import (
	"reflect"
	"strings"
)

// StructFields returns all exported fields of a struct, flattening embedded structs.
// Fields tagged `json:"-"` are skipped.
func StructFields(t reflect.Type) []reflect.StructField {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var fields []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Tag.Get("json") == "-" {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			fields = append(fields, StructFields(f.Type)...)
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// JSONName returns the name encoding/json uses for a field: the tag name when
// present, otherwise the Go field name.
func JSONName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return f.Name
}

// TypeName returns a human-readable type name for a reflect.Type.
func TypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		return "[]" + TypeName(t.Elem())
	case reflect.Map:
		return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
	}
	name := t.String()
	// keep only the last package element: "models.Status", "time.Time"
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
