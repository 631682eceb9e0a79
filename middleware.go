package bizdesk

import (
	"context"
)

// OpType identifies the kind of store operation being performed.
type OpType string

const (
	OpAdd     OpType = "add"
	OpAddMany OpType = "add_many"
	OpFind    OpType = "find"
	OpUpdate  OpType = "update"
	OpReplace OpType = "replace"
	OpRemove  OpType = "remove"
)

// OpInfo provides context about the current operation to middleware.
type OpInfo struct {
	Operation  OpType
	Collection string
	ModelName  string
	ID         string      // target record id, empty for adds and scans
	Model      interface{} // the record being written, or nil
}

// MiddlewareFunc is a function that wraps a store operation.
// Call next(ctx) to continue the middleware chain, or return an error to abort.
// The context can be modified before passing to next (e.g. for tracing).
type MiddlewareFunc func(ctx context.Context, op *OpInfo, next func(context.Context) error) error

// Use registers middleware applied to every operation on every collection of db.
// Middleware executes in the order registered.
func (db *DB) Use(fns ...MiddlewareFunc) {
	db.mwMu.Lock()
	defer db.mwMu.Unlock()
	db.middleware = append(db.middleware, fns...)
}

// runMiddleware builds and executes the middleware chain for an operation.
// If no middleware is registered, fn is called directly.
func (db *DB) runMiddleware(ctx context.Context, info *OpInfo, fn func(context.Context) error) error {
	db.mwMu.RLock()
	chain := make([]MiddlewareFunc, len(db.middleware))
	copy(chain, db.middleware)
	db.mwMu.RUnlock()

	if len(chain) == 0 {
		return fn(ctx)
	}

	// Build chain from outermost to innermost, with fn as the final handler.
	var build func(int) func(context.Context) error
	build = func(i int) func(context.Context) error {
		if i == len(chain) {
			return fn
		}
		return func(ctx context.Context) error {
			return chain[i](ctx, info, build(i+1))
		}
	}

	return build(0)(ctx)
}
