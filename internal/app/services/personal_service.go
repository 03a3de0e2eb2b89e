package services

import (
	"context"
	"mime/multipart"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/repositories"
	"github.com/nitn/phd-admission/internal/pkg/filestorage"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/nitn/phd-admission/internal/pkg/validation"
)

// PersonalService manages the personal details form
type PersonalService struct {
	formService[models.PersonalDetails, *models.PersonalDetails]
	uploads *UploadService
}

// NewPersonalService creates a new PersonalService
func NewPersonalService(store PersonalStore, uploads *UploadService) *PersonalService {
	return &PersonalService{
		formService: formService[models.PersonalDetails, *models.PersonalDetails]{
			store:    store,
			guard:    &submissionGuard{personal: store},
			name:     "Personal details",
			conflict: repositories.PersonalSpec.ConflictMessage,
			reset: func(doc *models.PersonalDetails) {
				doc.Status = models.StatusDraft
				doc.SubmittedAt = nil
				// store object ids are only ever set by the upload endpoints
				for _, f := range []*models.StoredFile{doc.Photo, doc.Signature} {
					if f != nil {
						f.PublicID = ""
					}
				}
			},
			restore: func(stored, merged *models.PersonalDetails) {
				merged.Status = stored.Status
				merged.SubmittedAt = stored.SubmittedAt
				merged.Photo = stored.Photo
				merged.Signature = stored.Signature
			},
			logger: logger.Component("personal"),
		},
		uploads: uploads,
	}
}

// editable loads the caller's record after checking the application is still open
func (s *PersonalService) editable(ctx context.Context, userID int64) (*models.PersonalDetails, error) {
	if err := s.guard.ensureEditable(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.GetByUserID(ctx, userID)
}

// UploadPhoto stores the applicant's photograph
func (s *PersonalService) UploadPhoto(ctx context.Context, userID int64, fh *multipart.FileHeader) (*filestorage.StoredObject, error) {
	return s.uploadImageFile(ctx, userID, fh, "photo", func(p *models.PersonalDetails) *models.StoredFile { return p.Photo })
}

// UploadSignature stores the applicant's signature
func (s *PersonalService) UploadSignature(ctx context.Context, userID int64, fh *multipart.FileHeader) (*filestorage.StoredObject, error) {
	return s.uploadImageFile(ctx, userID, fh, "signature", func(p *models.PersonalDetails) *models.StoredFile { return p.Signature })
}

func (s *PersonalService) uploadImageFile(ctx context.Context, userID int64, fh *multipart.FileHeader, field string, current func(*models.PersonalDetails) *models.StoredFile) (*filestorage.StoredObject, error) {
	stored, err := s.editable(ctx, userID)
	if err != nil {
		return nil, err
	}

	obj, err := s.uploads.Upload(ctx, fh, ImageFile, field)
	if err != nil {
		return nil, err
	}
	if err := s.store.Patch(ctx, userID, []string{field}, models.StoredFile{URL: obj.URL, PublicID: obj.PublicID}); err != nil {
		return nil, err
	}

	if old := current(stored); old != nil && old.PublicID != "" && old.PublicID != obj.PublicID {
		s.uploads.Discard(ctx, old.PublicID, ImageFile)
	}
	s.logger.Info().Int64("userID", userID).Str("field", field).Msg("Personal file uploaded")
	return obj, nil
}

// UploadDemandDraft stores the demand draft PDF and sets dd_url
func (s *PersonalService) UploadDemandDraft(ctx context.Context, userID int64, fh *multipart.FileHeader) (*filestorage.StoredObject, error) {
	if _, err := s.editable(ctx, userID); err != nil {
		return nil, err
	}

	obj, err := s.uploads.Upload(ctx, fh, PDFFile, "demand_draft")
	if err != nil {
		return nil, err
	}
	if err := s.store.Patch(ctx, userID, []string{"dd_url"}, obj.URL); err != nil {
		return nil, err
	}
	return obj, nil
}

// UploadTransactionScreenshot stores the payment screenshot referenced by transaction_details
func (s *PersonalService) UploadTransactionScreenshot(ctx context.Context, userID int64, fh *multipart.FileHeader) (*filestorage.StoredObject, error) {
	stored, err := s.editable(ctx, userID)
	if err != nil {
		return nil, err
	}

	obj, err := s.uploads.Upload(ctx, fh, ImageFile, "transaction_screenshot")
	if err != nil {
		return nil, err
	}

	// jsonb_set only creates the last path element, so a missing parent is written whole
	if stored.TransactionDetails == nil {
		err = s.store.Patch(ctx, userID, []string{"transaction_details"}, models.TransactionDetails{TransactionScreenshotURL: obj.URL})
	} else {
		err = s.store.Patch(ctx, userID, []string{"transaction_details", "transaction_screenshot_url"}, obj.URL)
	}
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// UpdateTransactionDetails replaces the transaction details, keeping an uploaded screenshot
// unless a new URL is given
func (s *PersonalService) UpdateTransactionDetails(ctx context.Context, userID int64, td *models.TransactionDetails) (*models.PersonalDetails, error) {
	stored, err := s.editable(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(td); err != nil {
		return nil, err
	}
	if td.TransactionScreenshotURL == "" && stored.TransactionDetails != nil {
		td.TransactionScreenshotURL = stored.TransactionDetails.TransactionScreenshotURL
	}

	if err := s.store.Patch(ctx, userID, []string{"transaction_details"}, td); err != nil {
		return nil, err
	}
	stored.TransactionDetails = td
	return stored, nil
}

// UpdateDeclaration sets the signed place and date
func (s *PersonalService) UpdateDeclaration(ctx context.Context, userID int64, d *models.Declaration) (*models.PersonalDetails, error) {
	stored, err := s.editable(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(d); err != nil {
		return nil, err
	}

	if err := s.store.Patch(ctx, userID, []string{"declaration"}, d); err != nil {
		return nil, err
	}
	stored.Declaration = d
	return stored, nil
}
