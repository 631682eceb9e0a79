package bizdesk

import "context"

// BeforeCreate is called on the new record before it is appended, after the
// store has assigned its id and timestamps. Returning an error aborts the Add.
type BeforeCreate interface {
	BeforeCreate(ctx context.Context) error
}

// BeforeSave is called on the modified copy of a record before it is persisted
// by Update, Replace or Mutate. Returning an error aborts the mutation.
type BeforeSave interface {
	BeforeSave(ctx context.Context) error
}
