package bizdesk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an operation references an id that is not in the collection.
	ErrNotFound = errors.New("bizdesk: record not found")

	// ErrBlobNotFound is returned by a Backend when no blob is stored under a key.
	ErrBlobNotFound = errors.New("bizdesk: blob not found")

	// ErrNoBackend is returned by Open when no backend is supplied.
	ErrNoBackend = errors.New("bizdesk: no backend configured")
)

// StorageError indicates that a collection blob could not be read, parsed or written.
// When it is returned from a mutation, the in-memory collection is unchanged.
type StorageError struct {
	Collection string
	Op         string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("bizdesk: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError indicates a field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// ValidationErrors is a slice of ValidationError that implements error.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// DriftError reports stored data that no longer matches the registered schema.
type DriftError struct {
	Collection string
	RecordID   string // empty when the problem concerns the whole blob
	Field      string
	Message    string
}

func (e *DriftError) Error() string {
	where := e.Collection
	if e.RecordID != "" {
		where += "[" + e.RecordID + "]"
	}
	if e.Field != "" {
		where += "." + e.Field
	}
	return fmt.Sprintf("drift in %s: %s", where, e.Message)
}
