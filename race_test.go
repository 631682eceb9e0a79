package bizdesk

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// TestRace_RegistryReads exercises concurrent registry reads.
func TestRace_RegistryReads(t *testing.T) {
	registerTestModels()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = GetAll()
			_ = Collections()
			_, _ = Get("test-products")
		}()
	}
	wg.Wait()
}

// TestRace_MiddlewareReadWrite exercises concurrent middleware registration and execution.
func TestRace_MiddlewareReadWrite(t *testing.T) {
	env := setupTestDB(t)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			env.db.Use(func(ctx context.Context, op *OpInfo, next func(context.Context) error) error {
				return next(ctx)
			})
		}()
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = env.db.runMiddleware(context.Background(), &OpInfo{Operation: OpFind},
				func(ctx context.Context) error { return nil })
		}()
	}
	wg.Wait()
}

// TestRace_CollectionWritersAndReaders runs adds, updates and reads in parallel
// and checks that no write is lost.
func TestRace_CollectionWritersAndReaders(t *testing.T) {
	env := setupTestDB(t)
	c := products(t, env.db)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := c.Add(env.ctx, &testProduct{Name: fmt.Sprintf("w%d", i)})
			if err != nil {
				t.Errorf("add: %v", err)
				return
			}
			if err := c.Update(env.ctx, id, Patch{"category": "done"}); err != nil {
				t.Errorf("update: %v", err)
			}
		}(i)
	}
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.All(env.ctx)
			_, _ = env.db.Blobs(env.ctx, "test-products")
		}()
	}
	wg.Wait()

	all, err := products(t, env.reopen(t)).All(env.ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(all) != writers {
		t.Fatalf("expected %d records, got %d", writers, len(all))
	}
	for _, rec := range all {
		if rec.Category != "done" {
			t.Fatalf("lost update on %s", rec.ID)
		}
	}
}

// TestRace_SharedContainsFold runs one search predicate from many goroutines.
func TestRace_SharedContainsFold(t *testing.T) {
	registerTestModels()
	match, err := ContainsFold[testProduct]("éLAN", "name")
	if err != nil {
		t.Fatalf("predicate: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := testProduct{Name: fmt.Sprintf("ÉLAN Pot %d", i)}
			for j := 0; j < 100; j++ {
				if !match(rec) {
					errs <- rec.Name
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for name := range errs {
		t.Fatalf("%q should match éLAN", name)
	}
}
