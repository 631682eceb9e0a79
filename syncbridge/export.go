package syncbridge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// DefaultExportFiles is the file list archived when none is configured.
var DefaultExportFiles = []string{"go.mod", "README.md", ".env.example"}

// Export writes a zip archive of files, relative to root, to w. A file that
// cannot be read is logged and skipped; the remaining files are still
// archived. Entry names are slash-separated paths relative to root.
func Export(ctx context.Context, w io.Writer, root string, files []string, logger *zap.Logger) (added, skipped []string, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	zw := zip.NewWriter(w)

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return added, skipped, err
		}
		entry, ok := entryName(name)
		if !ok {
			logger.Warn("export entry outside project root", zap.String("file", name))
			skipped = append(skipped, name)
			continue
		}
		if err := addFile(zw, root, entry); err != nil {
			if _, isZip := err.(zipError); isZip {
				_ = zw.Close()
				return added, skipped, err
			}
			logger.Warn("failed to add file to export", zap.String("file", name), zap.Error(err))
			skipped = append(skipped, name)
			continue
		}
		added = append(added, entry)
	}

	if err := zw.Close(); err != nil {
		return added, skipped, fmt.Errorf("bizdesk: finish export archive: %w", err)
	}
	logger.Info("export written", zap.Int("added", len(added)), zap.Int("skipped", len(skipped)))
	return added, skipped, nil
}

// zipError marks a failure writing to the archive itself, which aborts the
// export instead of skipping the file.
type zipError struct{ error }

func (e zipError) Unwrap() error { return e.error }

func addFile(zw *zip.Writer, root, entry string) error {
	src := filepath.Join(root, filepath.FromSlash(entry))
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", entry)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	hdr := &zip.FileHeader{
		Name:     entry,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return zipError{fmt.Errorf("bizdesk: export %s: %w", entry, err)}
	}
	if _, err := dst.Write(data); err != nil {
		return zipError{fmt.Errorf("bizdesk: export %s: %w", entry, err)}
	}
	return nil
}

// entryName cleans a configured file name and rejects absolute paths and
// paths that climb out of the root.
func entryName(name string) (string, bool) {
	slashed := filepath.ToSlash(name)
	if slashed == "" || path.IsAbs(slashed) || filepath.IsAbs(name) {
		return "", false
	}
	clean := path.Clean(slashed)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}
