package history

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/natefinch/atomic"
)

// Export serializes the full conversation history as indented JSON and
// writes it to the provided io.Writer. This is useful for backups or for
// feeding the history into external tools.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	exchanges, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("could not load history for export: %w", err)
	}
	if exchanges == nil {
		exchanges = []Exchange{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exchanges); err != nil {
		return fmt.Errorf("could not encode history: %w", err)
	}

	s.logger.InfoContext(ctx, "History exported", slog.Int("exchanges_exported", len(exchanges)))
	return nil
}

// ExportFile writes the exported history atomically to the given path, so
// an interrupted export never leaves a truncated file behind.
func (s *Store) ExportFile(ctx context.Context, path string) error {
	var buf bytes.Buffer
	if err := s.Export(ctx, &buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("could not write export file: %w", err)
	}
	return nil
}
