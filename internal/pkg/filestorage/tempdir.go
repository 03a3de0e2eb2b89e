package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nitn/phd-admission/internal/pkg/logger"
)

// TempDir stages uploads on local disk before they are sent to the store
type TempDir struct {
	path string
}

// NewTempDir ensures dir exists
func NewTempDir(dir string) (*TempDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory %s: %w", dir, err)
	}
	return &TempDir{path: dir}, nil
}

// Path returns the directory path
func (t *TempDir) Path() string {
	return t.path
}

// Stage writes r to a uniquely named file keeping the extension of filename.
// At most limit bytes are accepted; a larger body fails and leaves no file behind.
func (t *TempDir) Stage(r io.Reader, filename string, limit int64) (string, error) {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	dst := filepath.Join(t.path, name)

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if n > limit {
		_ = os.Remove(dst)
		return "", ErrTooLarge
	}
	return dst, nil
}

// Sweep removes regular files older than maxAge and returns how many were removed
func (t *TempDir) Sweep(maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(t.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read temp directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		full := filepath.Join(t.path, entry.Name())
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", full).Msg("Failed to remove stale temp file")
			continue
		}
		removed++
	}
	return removed, nil
}
