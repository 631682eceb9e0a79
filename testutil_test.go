package bizdesk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- test models ---

type testProduct struct {
	Model
	Name       string   `json:"name"       bizdesk:"required"`
	Category   string   `json:"category"`
	Price      float64  `json:"price"      bizdesk:"min=0"`
	Status     string   `json:"status"     bizdesk:"enum=active|inactive,default=active"`
	Notes      []string `json:"notes"      bizdesk:"appendonly,default=[]"`
	SupplierID string   `json:"supplierId" bizdesk:"ref=test-suppliers"`
}

type testSupplier struct {
	Model
	Name string `json:"name" bizdesk:"required"`
}

type testEntry struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type testTicket struct {
	Model
	Title   string      `json:"title"`
	Opened  string      `json:"opened"  bizdesk:"default=today"`
	Entries []testEntry `json:"entries" bizdesk:"appendonly,stamp=at,default=[]"`
}

type testHookRecord struct {
	Model
	Name   string   `json:"name"`
	Events []string `json:"events"`
}

func (r *testHookRecord) BeforeCreate(ctx context.Context) error {
	if r.Name == "reject" {
		return errors.New("rejected by hook")
	}
	r.Events = append(r.Events, "before_create")
	return nil
}

func (r *testHookRecord) BeforeSave(ctx context.Context) error {
	r.Events = append(r.Events, "before_save")
	return nil
}

var registerOnce sync.Once

func registerTestModels() {
	registerOnce.Do(func() {
		mustRegister(Register[testProduct]("test-products", "compras"))
		mustRegister(Register[testSupplier]("test-suppliers", "compras"))
		mustRegister(Register[testHookRecord]("test-hooks", "pd"))
		mustRegister(Register[testTicket]("test-tickets", "garantia"))
	})
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// --- clock and ids ---

var (
	t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// sequentialIDs returns p1, p2, ... for predictable ids.
func sequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s%d", prefix, n.Add(1))
	}
}

// --- backends ---

// flakyBackend fails Put while failPut is set.
type flakyBackend struct {
	Backend
	failPut atomic.Bool
	puts    atomic.Int64
}

func (f *flakyBackend) Put(ctx context.Context, key string, blob []byte) error {
	if f.failPut.Load() {
		return errors.New("disk full")
	}
	f.puts.Add(1)
	return f.Backend.Put(ctx, key, blob)
}

// --- test DB setup ---

type testEnv struct {
	ctx     context.Context
	db      *DB
	backend *flakyBackend
	clock   *fakeClock
}

func setupTestDB(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	registerTestModels()

	env := &testEnv{
		ctx:     context.Background(),
		backend: &flakyBackend{Backend: NewMemoryBackend()},
		clock:   &fakeClock{now: t0},
	}
	opts = append([]Option{
		WithClock(env.clock.Now),
		WithIDGenerator(sequentialIDs("p")),
	}, opts...)

	db, err := Open(env.backend, opts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	env.db = db
	t.Cleanup(func() { _ = db.Close() })
	return env
}

// reopen returns a fresh DB over the same backend, forcing collections to load from blobs.
func (e *testEnv) reopen(t *testing.T) *DB {
	t.Helper()
	db, err := Open(e.backend, WithClock(e.clock.Now), WithIDGenerator(sequentialIDs("r")))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	return db
}

func products(t *testing.T, db *DB) *Collection[testProduct] {
	t.Helper()
	c, err := NewCollection[testProduct](db)
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	return c
}
