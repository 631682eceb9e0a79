package bizdesk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Refs maps JSON field names to destination pointers for Populate.
// Keys must correspond to fields tagged with bizdesk:"ref=collection".
type Refs map[string]interface{}

// CheckRefs verifies that every non-empty ref field of model points at an
// existing record of the referenced collection. Missing targets are reported
// as ValidationErrors; string slices are checked element by element.
func CheckRefs(ctx context.Context, db *DB, model interface{}) error {
	schema, err := schemaFor(reflect.TypeOf(model))
	if err != nil {
		return err
	}

	v := reflect.Indirect(reflect.ValueOf(model))
	var errs []ValidationError

	for _, field := range schema.Fields {
		if field.Ref == "" {
			continue
		}
		ids, err := refIDs(v.FieldByName(field.Name))
		if err != nil {
			return fmt.Errorf("bizdesk: ref field %q: %w", field.JSONName, err)
		}
		if len(ids) == 0 {
			continue
		}

		target, err := Lookup(ctx, db, field.Ref)
		if err != nil {
			return err
		}
		for _, id := range ids {
			ok, err := target.Exists(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				errs = append(errs, ValidationError{
					Field:   field.JSONName,
					Message: fmt.Sprintf("%s %q does not exist", field.Ref, id),
				})
			}
		}
	}

	if len(errs) > 0 {
		return ValidationErrors(errs)
	}
	return nil
}

// ValidRecord returns a Check that runs ValidateModel and CheckRefs on the
// filled record.
func ValidRecord[T any](db *DB) Check[T] {
	return func(ctx context.Context, rec *T) error {
		if err := ValidateModel(rec); err != nil {
			return err
		}
		return CheckRefs(ctx, db, rec)
	}
}

// Populate resolves ref fields on a loaded record by fetching the referenced
// records and decoding them into the destination pointers of refs. Unset refs
// and refs whose target no longer exists leave the destination untouched.
//
// Example:
//
//	supplier := &models.Supplier{}
//	err := bizdesk.Populate(ctx, db, order, bizdesk.Refs{"supplierId": supplier})
func Populate(ctx context.Context, db *DB, model interface{}, refs Refs) error {
	schema, err := schemaFor(reflect.TypeOf(model))
	if err != nil {
		return err
	}

	v := reflect.Indirect(reflect.ValueOf(model))

	for jsonName, dest := range refs {
		field := schema.GetField(jsonName)
		if field == nil {
			return fmt.Errorf("bizdesk: field %q not found in schema for %s", jsonName, schema.ModelName)
		}
		if field.Ref == "" {
			return fmt.Errorf("bizdesk: field %q has no ref tag", jsonName)
		}

		fv := v.FieldByName(field.Name)
		if fv.Kind() != reflect.String {
			return fmt.Errorf("bizdesk: ref field %q is not a string id", jsonName)
		}
		if fv.String() == "" {
			continue
		}

		target, err := Lookup(ctx, db, field.Ref)
		if err != nil {
			return err
		}
		rec, err := target.Get(ctx, fv.String())
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("bizdesk: populate %q failed: %w", jsonName, err)
		}

		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			return fmt.Errorf("bizdesk: populate %q failed: %w", jsonName, err)
		}
	}

	return nil
}

func refIDs(fv reflect.Value) ([]string, error) {
	switch {
	case !fv.IsValid():
		return nil, nil
	case fv.Kind() == reflect.String:
		if fv.String() == "" {
			return nil, nil
		}
		return []string{fv.String()}, nil
	case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
		var ids []string
		for i := 0; i < fv.Len(); i++ {
			if id := fv.Index(i).String(); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("unsupported ref type %s", fv.Type())
	}
}
