package bizdesk

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunMiddleware_NoMiddleware(t *testing.T) {
	env := setupTestDB(t)

	called := false
	err := env.db.runMiddleware(context.Background(), &OpInfo{
		Operation: OpAdd, ModelName: "Test",
	}, func(ctx context.Context) error {
		called = true
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("inner function was not called")
	}
}

func TestRunMiddleware_Order(t *testing.T) {
	env := setupTestDB(t)

	var order []int
	env.db.Use(func(ctx context.Context, op *OpInfo, next func(context.Context) error) error {
		order = append(order, 1)
		err := next(ctx)
		order = append(order, 4)
		return err
	})
	env.db.Use(func(ctx context.Context, op *OpInfo, next func(context.Context) error) error {
		order = append(order, 2)
		err := next(ctx)
		order = append(order, 3)
		return err
	})

	err := env.db.runMiddleware(context.Background(), &OpInfo{
		Operation: OpAdd, ModelName: "Foo",
	}, func(ctx context.Context) error {
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []int{1, 2, 3, 4}
	if len(order) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, order)
	}
	for i, v := range expected {
		if order[i] != v {
			t.Fatalf("expected %v, got %v", expected, order)
		}
	}
}

func TestRunMiddleware_PerDB(t *testing.T) {
	a := setupTestDB(t)
	b := setupTestDB(t)

	called := false
	a.db.Use(func(ctx context.Context, op *OpInfo, next func(context.Context) error) error {
		called = true
		return next(ctx)
	})

	_ = b.db.runMiddleware(context.Background(), &OpInfo{Operation: OpAdd},
		func(ctx context.Context) error { return nil })
	if called {
		t.Fatal("middleware leaked to another DB")
	}
}

func TestRunMiddleware_Abort(t *testing.T) {
	env := setupTestDB(t)

	env.db.Use(func(ctx context.Context, op *OpInfo, next func(context.Context) error) error {
		return context.Canceled // abort, don't call next
	})

	c := products(t, env.db)
	_, err := c.Add(env.ctx, &testProduct{Name: "x"})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if env.backend.puts.Load() != 0 {
		t.Fatal("aborted operation should not persist")
	}
}

func TestRunMiddleware_OpInfo(t *testing.T) {
	var captured []OpInfo
	env := setupTestDB(t, WithMiddleware(func(ctx context.Context, op *OpInfo, next func(context.Context) error) error {
		captured = append(captured, *op)
		return next(ctx)
	}))

	c := products(t, env.db)
	id, _ := c.Add(env.ctx, &testProduct{Name: "x"})
	_ = c.Remove(env.ctx, id)

	if len(captured) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(captured))
	}
	if captured[0].Operation != OpAdd || captured[0].Collection != "test-products" {
		t.Fatalf("unexpected add info %+v", captured[0])
	}
	if captured[1].Operation != OpRemove || captured[1].ID != id || captured[1].ModelName != "testProduct" {
		t.Fatalf("unexpected remove info %+v", captured[1])
	}
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	env := setupTestDB(t, WithMiddleware(LoggingMiddleware(zap.New(core))))

	c := products(t, env.db)
	id, _ := c.Add(env.ctx, &testProduct{Name: "x"})
	_, _ = c.Get(env.ctx, id)
	env.backend.failPut.Store(true)
	_ = c.Update(env.ctx, id, Patch{"name": "y"})

	if n := logs.FilterMessage("store write").Len(); n != 1 {
		t.Fatalf("expected 1 write log, got %d", n)
	}
	if n := logs.FilterMessage("store read").Len(); n != 1 {
		t.Fatalf("expected 1 read log, got %d", n)
	}
	if n := logs.FilterMessage("store operation failed").Len(); n != 1 {
		t.Fatalf("expected 1 failure log, got %d", n)
	}
}
