package services

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/repositories"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/filestorage"
	"github.com/nitn/phd-admission/internal/pkg/logger"
)

// PaymentService manages the fee payment form
type PaymentService struct {
	formService[models.Payment, *models.Payment]
	uploads *UploadService
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(store PaymentStore, personal PersonalStore, uploads *UploadService) *PaymentService {
	return &PaymentService{
		formService: formService[models.Payment, *models.Payment]{
			store:    store,
			guard:    &submissionGuard{personal: personal},
			name:     "Payment details",
			conflict: repositories.PaymentSpec.ConflictMessage,
			reset: func(doc *models.Payment) {
				doc.Status = models.PaymentPending
				doc.VerifiedBy = ""
				doc.VerifiedAt = nil
				doc.RejectionReason = ""
				doc.Screenshot.PublicID = ""
			},
			restore: func(stored, merged *models.Payment) {
				merged.Status = stored.Status
				merged.VerifiedBy = stored.VerifiedBy
				merged.VerifiedAt = stored.VerifiedAt
				merged.RejectionReason = stored.RejectionReason
				merged.Screenshot.PublicID = ""
				if merged.Screenshot.URL == stored.Screenshot.URL {
					merged.Screenshot.PublicID = stored.Screenshot.PublicID
				}
			},
			logger: logger.Component("payment"),
		},
		uploads: uploads,
	}
}

// UploadScreenshot stores a payment screenshot. When a payment record exists its
// screenshot is replaced; otherwise the URL is only returned for a later create.
func (s *PaymentService) UploadScreenshot(ctx context.Context, userID int64, fh *multipart.FileHeader) (*filestorage.StoredObject, error) {
	if err := s.guard.ensureEditable(ctx, userID); err != nil {
		return nil, err
	}

	stored, err := s.store.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	obj, err := s.uploads.Upload(ctx, fh, ImageFile, "payment_screenshot")
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return obj, nil
	}

	if err := s.store.Patch(ctx, userID, []string{"screenshot"}, models.StoredFile{URL: obj.URL, PublicID: obj.PublicID}); err != nil {
		return nil, err
	}
	if old := stored.Screenshot.PublicID; old != "" && old != obj.PublicID {
		s.uploads.Discard(ctx, old, ImageFile)
	}
	return obj, nil
}
