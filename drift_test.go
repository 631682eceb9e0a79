package bizdesk

import (
	"strings"
	"testing"
)

func TestDetectDrift_Clean(t *testing.T) {
	env := setupTestDB(t)
	if _, err := products(t, env.db).Add(env.ctx, &testProduct{Name: "Widget", Price: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}
	schema, _ := Get("test-products")
	drifts, err := DetectDrift(env.ctx, env.db, schema)
	if err != nil {
		t.Fatalf("drift: %v", err)
	}
	if len(drifts) != 0 {
		t.Fatalf("expected no drift, got %v", drifts)
	}
}

func TestDetectDrift_Reports(t *testing.T) {
	env := setupTestDB(t)
	blob := `[
		{"id":"p1","name":"a","colour":"red"},
		{"id":"p1","name":"b"},
		{"name":"c","status":"retired"},
		{"id":"p4","name":"d","colour":"blue","price":-2}
	]`
	_ = env.backend.Put(env.ctx, "test-products", []byte(blob))

	schema, _ := Get("test-products")
	drifts, err := DetectDrift(env.ctx, env.db, schema)
	if err != nil {
		t.Fatalf("drift: %v", err)
	}

	var msgs []string
	for _, d := range drifts {
		msgs = append(msgs, d.Error())
	}
	got := strings.Join(msgs, "\n")
	for _, want := range []string{
		"drift in test-products.colour: field exists in stored records but not in schema",
		"drift in test-products[p1].id: duplicate id",
		"drift in test-products.id: record 2 has no id",
		"drift in test-products.status:",
		"drift in test-products[p4].price:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Count(got, "colour") != 1 {
		t.Errorf("unknown field should be reported once:\n%s", got)
	}
}

func TestDetectDrift_MalformedBlob(t *testing.T) {
	env := setupTestDB(t)
	_ = env.backend.Put(env.ctx, "test-products", []byte(`{"id":"p1"}`))

	schema, _ := Get("test-products")
	drifts, err := DetectDrift(env.ctx, env.db, schema)
	if err != nil {
		t.Fatalf("drift: %v", err)
	}
	if len(drifts) != 1 || drifts[0].RecordID != "" {
		t.Fatalf("expected one blob-level drift, got %v", drifts)
	}
}

func TestCheckStore_UnregisteredKeys(t *testing.T) {
	env := setupTestDB(t)
	_ = env.backend.Put(env.ctx, "akron-legacy", []byte(`[]`))
	_ = env.backend.Put(env.ctx, "currentUser", []byte(`{}`))

	drifts, err := CheckStore(env.ctx, env.db, "currentUser")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(drifts) != 1 || drifts[0].Collection != "akron-legacy" {
		t.Fatalf("expected one unregistered key, got %v", drifts)
	}
}
