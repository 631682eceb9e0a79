package bizdesk

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strconv"
)

// DetectDrift reads the stored blob of a collection without loading it and
// reports what no longer matches the schema: a blob that does not parse,
// records with a missing or duplicate id, fields the schema does not declare
// and records that fail validation. A collection never written has no drift.
func DetectDrift(ctx context.Context, db *DB, schema *Schema) ([]DriftError, error) {
	blob, err := db.backend.Get(ctx, schema.Collection)
	if errors.Is(err, ErrBlobNotFound) || (err == nil && len(blob) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Collection: schema.Collection, Op: "read", Err: err}
	}

	var raws []map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raws); err != nil {
		return []DriftError{{
			Collection: schema.Collection,
			Message:    "stored blob is not a JSON array of records: " + err.Error(),
		}}, nil
	}

	known := make(map[string]bool, len(schema.Fields))
	for _, f := range schema.Fields {
		known[f.JSONName] = true
	}

	var drifts []DriftError
	seenField := make(map[string]bool)
	seenID := make(map[string]bool)
	for i, raw := range raws {
		var id string
		_ = json.Unmarshal(raw["id"], &id)
		switch {
		case id == "":
			drifts = append(drifts, DriftError{Collection: schema.Collection, Field: "id",
				Message: "record " + strconv.Itoa(i) + " has no id"})
		case seenID[id]:
			drifts = append(drifts, DriftError{Collection: schema.Collection, RecordID: id, Field: "id",
				Message: "duplicate id"})
		}
		seenID[id] = true

		for key := range raw {
			if !known[key] && !seenField[key] {
				seenField[key] = true
				drifts = append(drifts, DriftError{
					Collection: schema.Collection,
					Field:      key,
					Message:    "field exists in stored records but not in schema",
				})
			}
		}

		rec := reflect.New(schema.typ)
		encoded, _ := json.Marshal(raw)
		if err := json.Unmarshal(encoded, rec.Interface()); err != nil {
			drifts = append(drifts, DriftError{Collection: schema.Collection, RecordID: id,
				Message: "record does not decode: " + err.Error()})
			continue
		}
		for _, ve := range Validate(rec.Interface(), schema) {
			drifts = append(drifts, DriftError{Collection: schema.Collection, RecordID: id,
				Field: ve.Field, Message: ve.Message})
		}
	}
	return drifts, nil
}

// CheckStore runs DetectDrift on every registered collection and reports
// stored keys that belong to no registered collection. Keys listed in ignore,
// such as the session slot, are skipped.
func CheckStore(ctx context.Context, db *DB, ignore ...string) ([]DriftError, error) {
	var drifts []DriftError
	for _, name := range Collections() {
		schema, _ := Get(name)
		d, err := DetectDrift(ctx, db, schema)
		if err != nil {
			return nil, err
		}
		drifts = append(drifts, d...)
	}

	keys, err := db.backend.Keys(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	slices.Sort(keys)
	for _, key := range keys {
		if slices.Contains(ignore, key) {
			continue
		}
		if _, ok := Get(key); !ok {
			drifts = append(drifts, DriftError{Collection: key, Message: "stored blob has no registered collection"})
		}
	}
	return drifts, nil
}
