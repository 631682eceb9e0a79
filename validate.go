package bizdesk

import (
	"fmt"
	"reflect"
	"slices"
)

// Validate checks a record against its schema (required, enum, min, max).
// Returns a slice of ValidationError for any fields that fail validation.
//
// The store itself never calls Validate. Callers that build records from user
// input pass ValidRecord as a Check so the rules run inside the write.
func Validate(model interface{}, schema *Schema) []ValidationError {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	var errs []ValidationError
	for _, fs := range schema.Fields {
		fv := v.FieldByName(fs.Name)
		if !fv.IsValid() {
			continue
		}
		errs = append(errs, checkField(fs, fv)...)
	}
	return errs
}

// checkField applies the required, enum and bound rules of one field to fv.
// Zero values only fail the required rule.
func checkField(fs FieldSchema, fv reflect.Value) []ValidationError {
	if fv.IsZero() {
		if fs.Required {
			return []ValidationError{{Field: fs.JSONName, Message: "field is required"}}
		}
		return nil
	}

	var errs []ValidationError
	if len(fs.Enum) > 0 {
		if s := stringValue(fv); !slices.Contains(fs.Enum, s) {
			errs = append(errs, ValidationError{
				Field:   fs.JSONName,
				Message: fmt.Sprintf("value %q is not in enum %v", s, fs.Enum),
			})
		}
	}

	// strings are bounded by length, numbers by value
	n, what := 0, "value"
	switch {
	case fv.Kind() == reflect.String:
		n, what = fv.Len(), "length"
	default:
		var ok bool
		if n, ok = toInt(fv); !ok {
			return errs
		}
	}
	if fs.Min != nil && n < *fs.Min {
		errs = append(errs, ValidationError{
			Field:   fs.JSONName,
			Message: fmt.Sprintf("%s %d is less than minimum %d", what, n, *fs.Min),
		})
	}
	if fs.Max != nil && n > *fs.Max {
		errs = append(errs, ValidationError{
			Field:   fs.JSONName,
			Message: fmt.Sprintf("%s %d exceeds maximum %d", what, n, *fs.Max),
		})
	}
	return errs
}

// ValidateModel looks up the registered schema for model and validates it.
// It returns ValidationErrors, or nil when the record is valid.
func ValidateModel(model interface{}) error {
	schema, err := schemaFor(reflect.TypeOf(model))
	if err != nil {
		return err
	}
	if errs := Validate(model, schema); len(errs) > 0 {
		return ValidationErrors(errs)
	}
	return nil
}

// validateAppendOnly checks that every appendonly slice in next still starts
// with the unchanged elements of prev.
func validateAppendOnly(prev, next interface{}, schema *Schema) []ValidationError {
	var errs []ValidationError

	prevV := reflect.Indirect(reflect.ValueOf(prev))
	nextV := reflect.Indirect(reflect.ValueOf(next))

	for _, field := range schema.Fields {
		if !field.AppendOnly {
			continue
		}
		pf := prevV.FieldByName(field.Name)
		nf := nextV.FieldByName(field.Name)
		if !pf.IsValid() || !nf.IsValid() {
			continue
		}
		if nf.Len() < pf.Len() {
			errs = append(errs, ValidationError{
				Field:   field.JSONName,
				Message: fmt.Sprintf("append-only list shrank from %d to %d entries", pf.Len(), nf.Len()),
			})
			continue
		}
		for i := 0; i < pf.Len(); i++ {
			if !reflect.DeepEqual(pf.Index(i).Interface(), nf.Index(i).Interface()) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s[%d]", field.JSONName, i),
					Message: "append-only entry cannot be changed",
				})
				break
			}
		}
	}

	return errs
}

// stringValue extracts a string representation of a value for enum comparison.
// For string kinds, returns the string directly. For other types, uses fmt.Sprintf.
func stringValue(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

// toInt attempts to extract an integer value from a reflect.Value.
func toInt(v reflect.Value) (int, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return int(v.Float()), true
	default:
		return 0, false
	}
}
