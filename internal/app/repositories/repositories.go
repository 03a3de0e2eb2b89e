package repositories

import (
	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/db"
)

// Typed form repositories
type (
	PersonalRepository  = FormRepository[models.PersonalDetails, *models.PersonalDetails]
	AcademicRepository  = FormRepository[models.AcademicDetails, *models.AcademicDetails]
	PaymentRepository   = FormRepository[models.Payment, *models.Payment]
	EnclosureRepository = FormRepository[models.Enclosure, *models.Enclosure]
)

// Form table specs
var (
	PersonalSpec = FormSpec{
		Table:           "personal_details",
		NotFoundMessage: "Personal details not found",
		ConflictMessage: "Personal details already exist for this user",
	}
	AcademicSpec = FormSpec{
		Table:           "academic_details",
		NotFoundMessage: "Academic details not found",
		ConflictMessage: "Academic details already exist for this user",
	}
	PaymentSpec = FormSpec{
		Table:           "payments",
		NotFoundMessage: "Payment details not found",
		ConflictMessage: "Payment details already exist for this user",
	}
	EnclosureSpec = FormSpec{
		Table:           "enclosures",
		NotFoundMessage: "Enclosure details not found",
		ConflictMessage: "Enclosure details already exist for this user",
	}
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository      *UserRepository
	SequenceRepository  *SequenceRepository
	PersonalRepository  *PersonalRepository
	AcademicRepository  *AcademicRepository
	PaymentRepository   *PaymentRepository
	EnclosureRepository *EnclosureRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:      NewUserRepository(database),
		SequenceRepository:  NewSequenceRepository(database.Pool),
		PersonalRepository:  NewFormRepository[models.PersonalDetails, *models.PersonalDetails](database.Pool, PersonalSpec),
		AcademicRepository:  NewFormRepository[models.AcademicDetails, *models.AcademicDetails](database.Pool, AcademicSpec),
		PaymentRepository:   NewFormRepository[models.Payment, *models.Payment](database.Pool, PaymentSpec),
		EnclosureRepository: NewFormRepository[models.Enclosure, *models.Enclosure](database.Pool, EnclosureSpec),
	}
}
