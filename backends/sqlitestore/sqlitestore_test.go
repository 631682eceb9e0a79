package sqlitestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/backends/backendtest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bizdesk.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) bizdesk.Backend {
		return openTemp(t)
	})
}

func TestStore_Pragmas(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}
