// Package syncbridge mirrors persisted collections to a shared directory and
// packages project files into a zip archive.
package syncbridge

import (
	"os"
	"path/filepath"
	"sort"
)

// Mirror writes one <name>.json file per non-empty blob into dir, creating dir
// and its parents first. Empty blobs are skipped. Filesystem errors are
// returned as-is.
func Mirror(dir string, blobs map[string][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	names := make([]string, 0, len(blobs))
	for name := range blobs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		blob := blobs[name]
		if len(blob) == 0 {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name+".json"), blob, 0o644); err != nil {
			return err
		}
	}
	return nil
}
