// Package snapshot reads and writes the precomputed gzip-compressed
// dashboard payload. The offline builder writes it; the HTTP boundary
// serves it when a live build is unavailable.
package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Store reads and writes one snapshot file.
type Store struct {
	path string
}

// NewStore creates a store for the given snapshot path. An empty path
// produces a store whose Load always fails, which disables the fallback.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and decompresses the snapshot payload bytes.
func (s *Store) Load() ([]byte, error) {
	if s.path == "" {
		return nil, os.ErrNotExist
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return data, nil
}

// Write compresses payload bytes to the snapshot path, creating parent
// directories as needed.
func (s *Store) Write(payload []byte) error {
	if s.path == "" {
		return fmt.Errorf("write snapshot: no path configured")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, 6)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if _, err := gz.Write(payload); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
