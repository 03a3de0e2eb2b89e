package memory

import (
	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/repositories"
)

// Stores is a complete in-memory backend
type Stores struct {
	Users      *UserStore
	Personal   *FormStore[models.PersonalDetails, *models.PersonalDetails]
	Academic   *FormStore[models.AcademicDetails, *models.AcademicDetails]
	Payment    *FormStore[models.Payment, *models.Payment]
	Enclosures *FormStore[models.Enclosure, *models.Enclosure]
}

// NewStores creates empty stores with the Postgres repositories' messages
func NewStores() *Stores {
	return &Stores{
		Users:      NewUserStore(),
		Personal:   NewFormStore[models.PersonalDetails, *models.PersonalDetails](repositories.PersonalSpec),
		Academic:   NewFormStore[models.AcademicDetails, *models.AcademicDetails](repositories.AcademicSpec),
		Payment:    NewFormStore[models.Payment, *models.Payment](repositories.PaymentSpec),
		Enclosures: NewFormStore[models.Enclosure, *models.Enclosure](repositories.EnclosureSpec),
	}
}
