package services

import (
	"context"
	"errors"
	"time"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/repositories"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/logger"
)

// EnclosureService manages the enclosure checklist
type EnclosureService struct {
	formService[models.Enclosure, *models.Enclosure]
	now func() time.Time
}

// NewEnclosureService creates a new EnclosureService
func NewEnclosureService(store EnclosureStore, personal PersonalStore) *EnclosureService {
	return &EnclosureService{
		formService: formService[models.Enclosure, *models.Enclosure]{
			store:    store,
			guard:    &submissionGuard{personal: personal},
			name:     "Enclosures",
			conflict: repositories.EnclosureSpec.ConflictMessage,
			logger:   logger.Component("enclosure"),
		},
		now: time.Now,
	}
}

// Get returns the saved checklist, or an unsaved default when there is none
func (s *EnclosureService) Get(ctx context.Context, userID int64) (*models.Enclosure, error) {
	e, err := s.store.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return models.DefaultEnclosure(userID, s.now()), nil
	}
	return e, err
}
