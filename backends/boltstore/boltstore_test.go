package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/backends/backendtest"
)

func TestStore(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) bizdesk.Backend {
		s, err := Open(filepath.Join(t.TempDir(), "nested", "bizdesk.db"), "")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bizdesk.db")
	ctx := context.Background()

	s, err := Open(path, "collections")
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "products", []byte(`[{"id":"p1"}]`)))
	require.NoError(t, s.Close())

	s, err = Open(path, "collections")
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "products")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"p1"}]`, string(got))
}

func TestStore_Closed(t *testing.T) {
	var s *Store
	_, err := s.Get(context.Background(), "x")
	require.Error(t, err)
	require.NoError(t, s.Close())
}
