package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/filestorage"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/nitn/phd-admission/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// FileClass selects the validation rules of an upload
type FileClass int

const (
	// ImageFile accepts jpg, jpeg, png and gif
	ImageFile FileClass = iota
	// PDFFile accepts PDF documents only
	PDFFile
)

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}
	imageMIMEs      = []string{"image/jpeg", "image/png", "image/gif"}
)

// UploadLimits are the maximum accepted sizes per file class
type UploadLimits struct {
	MaxImageBytes    int64
	MaxDocumentBytes int64
}

// UploadService validates uploads locally and forwards them to the document store
type UploadService struct {
	store  filestorage.DocumentStore
	temp   *filestorage.TempDir
	folder string
	limits UploadLimits
	logger zerolog.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(store filestorage.DocumentStore, temp *filestorage.TempDir, folder string, limits UploadLimits) *UploadService {
	return &UploadService{
		store:  store,
		temp:   temp,
		folder: folder,
		limits: limits,
		logger: logger.Component("upload"),
	}
}

func (s *UploadService) limit(class FileClass) int64 {
	if class == ImageFile {
		return s.limits.MaxImageBytes
	}
	return s.limits.MaxDocumentBytes
}

// Upload stages fh in the temp directory, checks it and stores it under folder/kind.
// The staged copy is removed on every path.
func (s *UploadService) Upload(ctx context.Context, fh *multipart.FileHeader, class FileClass, kind string) (obj *filestorage.StoredObject, err error) {
	var size int64
	defer func() { metrics.RecordUpload(kind, size, err) }()

	if fh == nil {
		return nil, apperrors.NewBadRequestError("No file uploaded")
	}

	maxBytes := s.limit(class)
	if fh.Size > maxBytes {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("File too large. Maximum size is %s", humanSize(maxBytes)))
	}
	if err := checkExtension(fh.Filename, class); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewBadRequestError("Unable to read uploaded file")
	}
	staged, err := s.temp.Stage(src, fh.Filename, maxBytes)
	src.Close()
	if err != nil {
		if errors.Is(err, filestorage.ErrTooLarge) {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("File too large. Maximum size is %s", humanSize(maxBytes)))
		}
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(staged); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn().Err(rmErr).Str("path", staged).Msg("Failed to remove staged upload")
		}
	}()

	if err := checkContent(staged, class); err != nil {
		return nil, err
	}
	if info, statErr := os.Stat(staged); statErr == nil {
		size = info.Size()
	}

	resource := filestorage.ResourceRaw
	if class == ImageFile {
		resource = filestorage.ResourceImage
	}
	obj, err = s.store.Upload(ctx, staged, filestorage.UploadOptions{
		Folder:       path.Join(s.folder, kind),
		ResourceType: resource,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("kind", kind).Msg("Document store upload failed")
		return nil, apperrors.NewUploadError("Failed to upload file", err)
	}

	s.logger.Info().Str("kind", kind).Str("public_id", obj.PublicID).Int64("bytes", size).Msg("File uploaded")
	return obj, nil
}

// Discard deletes a previously stored object; failures are only logged
func (s *UploadService) Discard(ctx context.Context, publicID string, class FileClass) {
	if publicID == "" {
		return
	}
	resource := filestorage.ResourceRaw
	if class == ImageFile {
		resource = filestorage.ResourceImage
	}
	if err := s.store.Delete(ctx, publicID, resource); err != nil {
		s.logger.Warn().Err(err).Str("public_id", publicID).Msg("Failed to delete replaced file")
	}
}

func checkExtension(filename string, class FileClass) error {
	ext := strings.ToLower(filepath.Ext(filename))
	switch class {
	case ImageFile:
		if !imageExtensions[ext] {
			return apperrors.NewBadRequestError("Invalid file type. Only jpg, jpeg, png and gif images are allowed")
		}
	case PDFFile:
		if ext != ".pdf" {
			return apperrors.NewBadRequestError("Invalid file type. Only PDF files are allowed")
		}
	}
	return nil
}

func checkContent(staged string, class FileClass) error {
	mtype, err := mimetype.DetectFile(staged)
	if err != nil {
		return fmt.Errorf("failed to inspect upload: %w", err)
	}
	switch class {
	case ImageFile:
		for _, m := range imageMIMEs {
			if mtype.Is(m) {
				return nil
			}
		}
		return apperrors.NewBadRequestError("Invalid file content. Only jpg, jpeg, png and gif images are allowed")
	default:
		if !mtype.Is("application/pdf") {
			return apperrors.NewBadRequestError("Invalid file content. Only PDF files are allowed")
		}
	}
	return nil
}

func humanSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
