// Package output persists fetched result sets as JSON files.
package output

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"
)

// TimestampLayout is used for collision suffixes and default prefixes.
const TimestampLayout = "20060102_150405"

// maxAttempts bounds the numbered suffixes tried after a collision.
const maxAttempts = 1000

// WriteOptions controls Write.
type WriteOptions struct {
	Overwrite bool
}

// Writer writes result sets to disk.
type Writer struct {
	dirPerm os.FileMode
	now     func() time.Time
}

// NewWriter creates a Writer that creates missing parent directories with
// dirPerm.
func NewWriter(dirPerm os.FileMode) *Writer {
	return &Writer{dirPerm: dirPerm, now: time.Now}
}

// DefaultPath returns <dir>/<prefix>_pages_<first>-<last>.json. An empty
// prefix is replaced with the current timestamp.
func (w *Writer) DefaultPath(dir, prefix string, first, last int) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = w.now().Format(TimestampLayout)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_pages_%d-%d.json", prefix, first, last))
}

// Write stores rs.Payload at dest as indented JSON and returns the path
// actually written. Without opts.Overwrite an existing file is never
// touched; the name gets a timestamp suffix, then a counter, until a free
// name is found.
func (w *Writer) Write(rs *domain.ResultSet, dest string, opts WriteOptions) (string, error) {
	if rs == nil || len(bytes.TrimSpace(rs.Payload)) == 0 {
		return "", errors.NewWriteError(dest, fmt.Errorf("no payload to write"))
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(rs.Payload), "", "  "); err != nil {
		return "", errors.NewWriteError(dest, err)
	}
	buf.WriteByte('\n')

	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, w.dirPerm); err != nil {
			return "", errors.NewWriteError(dest, err)
		}
	}

	if opts.Overwrite {
		if err := os.WriteFile(dest, buf.Bytes(), 0644); err != nil {
			return "", errors.NewWriteError(dest, err)
		}
		return dest, nil
	}

	for _, candidate := range w.candidates(dest) {
		err := createExclusive(candidate, buf.Bytes())
		if err == nil {
			return candidate, nil
		}
		if !stderrors.Is(err, fs.ErrExist) {
			return "", errors.NewWriteError(candidate, err)
		}
	}
	return "", errors.NewWriteError(dest, fmt.Errorf("no free file name after %d attempts", maxAttempts))
}

// candidates lists dest, then dest with a timestamp suffix, then numbered
// variants of that.
func (w *Writer) candidates(dest string) []string {
	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	stamped := base + "_" + w.now().Format(TimestampLayout)

	names := make([]string, 0, maxAttempts)
	names = append(names, dest, stamped+ext)
	for i := 2; len(names) < maxAttempts; i++ {
		names = append(names, fmt.Sprintf("%s-%d%s", stamped, i, ext))
	}
	return names
}

func createExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
