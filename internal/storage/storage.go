package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ajmalkv/rollsops/internal/config"
)

// ExportSink persists downloaded export blobs. The payload is opaque: the
// backend produces the spreadsheets, we only save them.
type ExportSink interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// NewExportSink builds the configured sink: an S3-compatible archive when
// enabled, a local directory otherwise.
func NewExportSink(cfg config.ExportConfig) (ExportSink, error) {
	if cfg.S3Enabled {
		return newS3Sink(cfg)
	}
	return &localSink{dir: cfg.Dir}, nil
}

type localSink struct {
	dir string
}

func (s *localSink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	return path, nil
}
