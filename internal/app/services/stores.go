package services

import (
	"context"

	"github.com/nitn/phd-admission/internal/app/models"
)

// UserStore is the account storage used by AuthService
type UserStore interface {
	CreateWithApplicationID(ctx context.Context, user *models.User, counter string, format func(int64) string) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetRefreshToken(ctx context.Context, userID int64, token *string) error
}

// FormStore persists one form document per applicant
type FormStore[P any] interface {
	Create(ctx context.Context, doc P) error
	GetByUserID(ctx context.Context, userID int64) (P, error)
	Exists(ctx context.Context, userID int64) (bool, error)
	Replace(ctx context.Context, doc P) error
	Patch(ctx context.Context, userID int64, path []string, value interface{}) error
}

// Form stores by model
type (
	PersonalStore  = FormStore[*models.PersonalDetails]
	AcademicStore  = FormStore[*models.AcademicDetails]
	PaymentStore   = FormStore[*models.Payment]
	EnclosureStore = FormStore[*models.Enclosure]
)
