package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nitn/phd-admission/internal/pkg/logger"
)

// LocalStorage stores documents on the local filesystem and serves them under baseURL.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL the files are served from
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is created if it does not exist.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload copies the file at src into basePath/folder under a fresh name
func (ls *LocalStorage) Upload(ctx context.Context, src string, opts UploadOptions) (*StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder := strings.Trim(filepath.ToSlash(opts.Folder), "/")
	if strings.Contains(folder, "..") {
		return nil, fmt.Errorf("invalid folder %q", opts.Folder)
	}

	dir := filepath.Join(ls.basePath, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	name := uuid.New().String() + strings.ToLower(filepath.Ext(src))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	if _, err = io.Copy(dst, in); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy file content")
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	publicID := path.Join(folder, name)
	obj := &StoredObject{
		URL:      ls.baseURL + "/" + publicID,
		PublicID: publicID,
	}
	logger.Debug().Str("public_id", publicID).Str("type", string(opts.ResourceType)).Msg("File stored locally")
	return obj, nil
}

// Delete removes a stored file. Deleting a missing file succeeds.
func (ls *LocalStorage) Delete(_ context.Context, publicID string, _ ResourceType) error {
	full := ls.GetFullPath(publicID)
	if full == "" {
		return fmt.Errorf("invalid public id: %s", publicID)
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", full).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", full).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetFullPath maps a public id to its path under basePath, or "" if it escapes it
func (ls *LocalStorage) GetFullPath(publicID string) string {
	clean := path.Clean("/" + filepath.ToSlash(publicID))
	if clean == "/" {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
}
