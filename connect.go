package bizdesk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DB is a handle on one blob backend plus the collections loaded from it.
// Create one with Open and pass it to NewCollection and to services that need
// records; there is no package-level store.
type DB struct {
	backend Backend
	now     func() time.Time
	newID   func() string
	logger  *zap.Logger

	mwMu       sync.RWMutex
	middleware []MiddlewareFunc

	mu          sync.Mutex
	collections map[string]any
}

// Option configures a DB.
type Option func(*DB)

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(fn func() time.Time) Option {
	return func(db *DB) { db.now = fn }
}

// WithIDGenerator replaces the uuid v4 generator used for record ids.
func WithIDGenerator(fn func() string) Option {
	return func(db *DB) { db.newID = fn }
}

// WithLogger sets the logger used by the store. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(db *DB) { db.logger = logger }
}

// WithMiddleware registers middleware at construction time. See DB.Use.
func WithMiddleware(fns ...MiddlewareFunc) Option {
	return func(db *DB) { db.middleware = append(db.middleware, fns...) }
}

// Open returns a DB backed by backend. Collections are not read until first use.
func Open(backend Backend, opts ...Option) (*DB, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	db := &DB{
		backend:     backend,
		now:         time.Now,
		newID:       uuid.NewString,
		collections: make(map[string]any),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		db.logger = zap.NewNop()
	}
	return db, nil
}

// Backend returns the blob backend the DB persists to.
func (db *DB) Backend() Backend {
	return db.backend
}

// Logger returns the DB logger (never nil).
func (db *DB) Logger() *zap.Logger {
	return db.logger
}

// Now returns the current store time in UTC.
func (db *DB) Now() time.Time {
	return db.now().UTC()
}

// NewID returns a fresh record id. Services use it for nested entries.
func (db *DB) NewID() string {
	return db.newID()
}

// Close closes the underlying backend.
func (db *DB) Close() error {
	return db.backend.Close()
}

// nextTimestamp returns the current time, nudged forward so it is strictly
// after prev.
func (db *DB) nextTimestamp(prev time.Time) time.Time {
	now := db.Now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

// Blobs returns the raw persisted blob of every named collection. Collections
// that were never written are left out. With no names, every registered
// collection is read.
func (db *DB) Blobs(ctx context.Context, names ...string) (map[string][]byte, error) {
	if len(names) == 0 {
		names = Collections()
	}
	out := make(map[string][]byte, len(names))
	for _, name := range names {
		blob, err := db.backend.Get(ctx, name)
		if errors.Is(err, ErrBlobNotFound) {
			continue
		}
		if err != nil {
			return nil, &StorageError{Collection: name, Op: "read", Err: err}
		}
		out[name] = blob
	}
	return out, nil
}

// collection returns the cached collection for a schema, creating it with mk.
func (db *DB) collection(schema *Schema, mk func() any) any {
	db.mu.Lock()
	defer db.mu.Unlock()
	if c, ok := db.collections[schema.Collection]; ok {
		return c
	}
	c := mk()
	db.collections[schema.Collection] = c
	return c
}
