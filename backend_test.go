package bizdesk_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/backends/backendtest"
)

func TestMemoryBackend(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) bizdesk.Backend {
		return bizdesk.NewMemoryBackend()
	})
}

func TestFileBackend(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) bizdesk.Backend {
		b, err := bizdesk.NewFileBackend(filepath.Join(t.TempDir(), "data"))
		if err != nil {
			t.Fatalf("new file backend: %v", err)
		}
		return b
	})
}

func TestFileBackend_Layout(t *testing.T) {
	dir := t.TempDir()
	b, err := bizdesk.NewFileBackend(dir)
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	ctx := context.Background()

	if err := b.Put(ctx, "purchase-orders", []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "purchase-orders.json")); err != nil {
		t.Fatalf("expected purchase-orders.json: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}

	for _, key := range []string{"", "../escape", `a\b`, ".hidden"} {
		if err := b.Put(ctx, key, []byte(`[]`)); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}
