package bizdesk

import (
	"context"
	"reflect"
)

// FieldSchema describes a single field parsed from struct tags.
type FieldSchema struct {
	Name       string   // Go field name
	JSONName   string   // json tag name
	Type       string   // Go type as string
	Required   bool     // field must be non-zero
	AppendOnly bool     // slice may only grow; existing elements never change
	Stamp      string   // entry field set to the time an entry was appended
	Default    string   // raw default value
	Enum       []string // allowed values
	Min        *int     // minimum value/length
	Max        *int     // maximum value/length
	Ref        string   // referenced collection

	def   fieldDefault // compiled Default
	entry *entryLayout // id and stamp positions for stamped lists
}

// Schema is the parsed representation of a record struct.
type Schema struct {
	ModelName  string        // Go struct name
	Collection string        // blob key the collection is stored under
	Module     string        // module tag that owns the collection
	Fields     []FieldSchema // parsed fields
	Hooks      []string      // hook interface names the model implements

	typ  reflect.Type
	open func(ctx context.Context, db *DB) (Records, error)
}

// HasField returns true if the schema contains a field with the given JSON name.
func (s *Schema) HasField(jsonName string) bool {
	return s.GetField(jsonName) != nil
}

// GetField returns the FieldSchema for a given JSON name, or nil if not found.
func (s *Schema) GetField(jsonName string) *FieldSchema {
	for i := range s.Fields {
		if s.Fields[i].JSONName == jsonName {
			return &s.Fields[i]
		}
	}
	return nil
}
