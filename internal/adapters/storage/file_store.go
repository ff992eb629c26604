package storage

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"swimclub/internal/domain/failure"
)

// maxLineBytes bounds a single record line.
const maxLineBytes = 1 << 20

// FileStore keeps a category in a plain text file, one record per line.
type FileStore struct {
	name string
	path string
}

// Compile-time check that *FileStore satisfies RecordStore.
var _ RecordStore = (*FileStore)(nil)

// NewFileStore creates a store backed by the file at path.
// PRE: path is non-empty
// POST: No file is touched until the first read or write
func NewFileStore(name, path string) *FileStore {
	return &FileStore{name: name, path: path}
}

// Name returns the category name.
func (s *FileStore) Name() string {
	return s.name
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// ReadLines reads every non-blank line of the file.
// PRE: none
// POST: A missing file yields no lines and no error; other failures wrap failure.ErrIOFailure
func (s *FileStore) ReadLines(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("store_file_missing", "store", s.name, "path", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, failure.IO(s.name, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, failure.IO(s.name, err)
	}
	return lines, nil
}

// WriteLines rewrites the file with lines.
// PRE: no line contains a line break
// POST: The file holds exactly lines, or is left untouched on failure
// The content goes to a temporary file in the same directory which is then renamed over the target.
func (s *FileStore) WriteLines(ctx context.Context, lines []string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failure.IO(s.name, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return failure.IO(s.name, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return failure.IO(s.name, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return failure.IO(s.name, err)
		}
	}
	if err := w.Flush(); err != nil {
		return failure.IO(s.name, err)
	}
	if err := tmp.Sync(); err != nil {
		return failure.IO(s.name, err)
	}
	if err := tmp.Close(); err != nil {
		return failure.IO(s.name, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return failure.IO(s.name, err)
	}
	return nil
}
