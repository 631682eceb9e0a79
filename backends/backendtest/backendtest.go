// Package backendtest is a conformance suite shared by every bizdesk.Backend
// implementation.
package backendtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwoolworth/bizdesk"
)

// Run exercises the Backend contract against backends built by open. Each
// subtest gets a fresh, empty backend.
func Run(t *testing.T, open func(t *testing.T) bizdesk.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		b := open(t)
		_, err := b.Get(ctx, "products")
		require.ErrorIs(t, err, bizdesk.ErrBlobNotFound)
	})

	t.Run("put get overwrite", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Put(ctx, "products", []byte(`[{"id":"p1"}]`)))
		got, err := b.Get(ctx, "products")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"p1"}]`, string(got))

		require.NoError(t, b.Put(ctx, "products", []byte(`[]`)))
		got, err = b.Get(ctx, "products")
		require.NoError(t, err)
		assert.Equal(t, "[]", string(got))
	})

	t.Run("returned blob is a copy", func(t *testing.T) {
		b := open(t)
		blob := []byte(`[1]`)
		require.NoError(t, b.Put(ctx, "k", blob))
		blob[1] = '9'
		got, err := b.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "[1]", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Put(ctx, "currentUser", []byte(`{}`)))
		require.NoError(t, b.Delete(ctx, "currentUser"))
		_, err := b.Get(ctx, "currentUser")
		require.ErrorIs(t, err, bizdesk.ErrBlobNotFound)

		// deleting a missing key is not an error
		require.NoError(t, b.Delete(ctx, "currentUser"))
	})

	t.Run("keys sorted", func(t *testing.T) {
		b := open(t)
		for _, k := range []string{"orders", "customers", "products"} {
			require.NoError(t, b.Put(ctx, k, []byte(`[]`)))
		}
		keys, err := b.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"customers", "orders", "products"}, keys)
	})

	t.Run("store round trip", func(t *testing.T) {
		b := open(t)
		db, err := bizdesk.Open(b)
		require.NoError(t, err)
		blobs, err := db.Blobs(ctx, "nothing-here")
		require.NoError(t, err)
		assert.Empty(t, blobs)
	})
}
