package bizdesk

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// fieldDefault is a default= value resolved against its field type when the
// schema is registered.
type fieldDefault struct {
	value reflect.Value // fixed value, invalid when the default is computed
	today bool          // date string set to the store date on Add
	list  bool          // fresh empty list, so it encodes as [] not null
}

func (d fieldDefault) isSet() bool {
	return d.value.IsValid() || d.today || d.list
}

// compileDefault parses fs.Default for a field of type t. A fixed default must
// pass the field's own enum and bounds.
func compileDefault(t reflect.Type, fs FieldSchema) (fieldDefault, error) {
	raw := fs.Default
	if raw == "" {
		return fieldDefault{}, nil
	}

	switch {
	case t.Kind() == reflect.Slice:
		if raw != "[]" {
			return fieldDefault{}, fmt.Errorf("list default must be [], got %q", raw)
		}
		return fieldDefault{list: true}, nil
	case raw == "today":
		if t.Kind() != reflect.String {
			return fieldDefault{}, fmt.Errorf("today needs a date string, field is %s", t)
		}
		if len(fs.Enum) > 0 {
			return fieldDefault{}, errors.New("today cannot be combined with enum")
		}
		return fieldDefault{today: true}, nil
	}

	v := reflect.New(t).Elem()
	var err error
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		var b bool
		if b, err = strconv.ParseBool(raw); err == nil {
			v.SetBool(b)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		if n, err = strconv.ParseInt(raw, 10, t.Bits()); err == nil {
			v.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		if n, err = strconv.ParseUint(raw, 10, t.Bits()); err == nil {
			v.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		var f float64
		if f, err = strconv.ParseFloat(raw, t.Bits()); err == nil {
			v.SetFloat(f)
		}
	default:
		return fieldDefault{}, fmt.Errorf("type %s takes no default", t)
	}
	if err != nil {
		return fieldDefault{}, fmt.Errorf("%q is not a valid %s", raw, t)
	}

	rules := fs
	rules.Required = false
	if errs := checkField(rules, v); len(errs) > 0 {
		return fieldDefault{}, fmt.Errorf("default %q: %s", raw, errs[0].Message)
	}
	return fieldDefault{value: v}, nil
}

// applyDefaults fills the zero fields of a new record. Defaults never touch
// fields on update.
func applyDefaults(model interface{}, schema *Schema, now time.Time) {
	v := reflect.Indirect(reflect.ValueOf(model))

	for _, field := range schema.Fields {
		if !field.def.isSet() {
			continue
		}
		fv := v.FieldByName(field.Name)
		if !fv.CanSet() || !fv.IsZero() {
			continue
		}
		switch {
		case field.def.list:
			fv.Set(reflect.MakeSlice(fv.Type(), 0, 0))
		case field.def.today:
			fv.SetString(now.Format(time.DateOnly))
		default:
			fv.Set(field.def.value)
		}
	}
}
