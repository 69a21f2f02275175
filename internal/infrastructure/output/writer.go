package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
)

// FileWriter persists rendered reports under a single directory.
type FileWriter struct {
	dir    string
	logger *slog.Logger
}

var _ ports.ReportWriter = (*FileWriter)(nil)

func NewFileWriter(dir string, log *slog.Logger) *FileWriter {
	if dir == "" {
		dir = "."
	}
	return &FileWriter{dir: dir, logger: log}
}

// Write creates the directory on demand and overwrites same-named files.
// A failed file does not stop the rest; the paths written are always returned.
func (w *FileWriter) Write(ctx context.Context, files []domain.ReportFile) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	var errs []error
	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if f.Filename == "" || filepath.Base(f.Filename) != f.Filename {
			errs = append(errs, fmt.Errorf("invalid report filename %q", f.Filename))
			continue
		}

		path := filepath.Join(w.dir, f.Filename)
		if err := os.WriteFile(path, f.Payload, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", path, err))
			continue
		}
		if w.logger != nil {
			w.logger.Info("report saved", "path", path, "bytes", len(f.Payload))
		}
		paths = append(paths, path)
	}
	return paths, errors.Join(errs...)
}
