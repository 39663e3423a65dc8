package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes snapshots into a local directory, creating it when
// needed.
type FileWriter struct {
	Dir string
}

func (w FileWriter) Write(ctx context.Context, name string, data []byte, _ Format) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
