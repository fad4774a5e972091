package shutdown

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// tempFilePrefix matches the temp files the history store creates during
// atomic writes. A crash can leave them behind.
const tempFilePrefix = ".tmp-"

// CleanupTempFiles returns a cleanup Func that removes stale atomic-write
// temp files under root. Removal failures are logged and skipped.
func CleanupTempFiles(logger *zap.Logger, root string) Func {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context) error {
		removed := 0
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() || !strings.HasPrefix(d.Name(), tempFilePrefix) {
				return nil
			}
			if rmErr := os.Remove(path); rmErr != nil {
				logger.Warn("removing temp file", zap.String("path", path), zap.Error(rmErr))
				return nil
			}
			removed++
			return nil
		})
		if removed > 0 {
			logger.Info("removed stale temp files", zap.Int("count", removed), zap.String("root", root))
		}
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
}
