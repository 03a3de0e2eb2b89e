package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/app/repositories"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/logger"
)

// AcademicService manages the academic details form
type AcademicService struct {
	formService[models.AcademicDetails, *models.AcademicDetails]
	uploads *UploadService
}

// NewAcademicService creates a new AcademicService
func NewAcademicService(store AcademicStore, personal PersonalStore, uploads *UploadService) *AcademicService {
	return &AcademicService{
		formService: formService[models.AcademicDetails, *models.AcademicDetails]{
			store:    store,
			guard:    &submissionGuard{personal: personal},
			name:     "Academic details",
			conflict: repositories.AcademicSpec.ConflictMessage,
			logger:   logger.Component("academic"),
		},
		uploads: uploads,
	}
}

// UploadDocument stores a PDF for the indexed qualification, experience or publication
func (s *AcademicService) UploadDocument(ctx context.Context, userID int64, documentType string, index int, fh *multipart.FileHeader) (*dto.AcademicUploadResponse, error) {
	path, ok := models.DocumentPath(documentType, index)
	if !ok {
		return nil, apperrors.NewBadRequestError("Invalid document type")
	}
	if err := s.guard.ensureEditable(ctx, userID); err != nil {
		return nil, err
	}

	stored, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= stored.Len(documentType) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Invalid index %d for %s documents", index, documentType))
	}

	obj, err := s.uploads.Upload(ctx, fh, PDFFile, documentType)
	if err != nil {
		return nil, err
	}
	if err := s.store.Patch(ctx, userID, path, obj.URL); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Str("type", documentType).Int("index", index).Msg("Academic document uploaded")
	return &dto.AcademicUploadResponse{URL: obj.URL, DocumentType: documentType, Index: index}, nil
}
