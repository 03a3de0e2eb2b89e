package services

import (
	"github.com/nitn/phd-admission/internal/app/repositories"
	"github.com/nitn/phd-admission/internal/pkg/auth"
	"github.com/nitn/phd-admission/internal/pkg/filestorage"
	"github.com/nitn/phd-admission/internal/pkg/logger"
)

// Dependencies are the non-repository collaborators of the services
type Dependencies struct {
	JWTService    *auth.JWTService
	Store         filestorage.DocumentStore
	TempDir       *filestorage.TempDir
	Assembler     PDFAssembler
	Folder        string
	Limits        UploadLimits
	ApplicationID ApplicationIDFormat
}

// Services holds all the service instances
type Services struct {
	AuthService        *AuthService
	UploadService      *UploadService
	PersonalService    *PersonalService
	AcademicService    *AcademicService
	PaymentService     *PaymentService
	EnclosureService   *EnclosureService
	ApplicationService *ApplicationService
}

// Stores groups the storage interfaces the services need
type Stores struct {
	Users      UserStore
	Personal   PersonalStore
	Academic   AcademicStore
	Payment    PaymentStore
	Enclosures EnclosureStore
}

// StoresFrom adapts the Postgres repositories
func StoresFrom(repos *repositories.Repositories) Stores {
	return Stores{
		Users:      repos.UserRepository,
		Personal:   repos.PersonalRepository,
		Academic:   repos.AcademicRepository,
		Payment:    repos.PaymentRepository,
		Enclosures: repos.EnclosureRepository,
	}
}

// NewServices wires every service
func NewServices(stores Stores, deps Dependencies) *Services {
	uploads := NewUploadService(deps.Store, deps.TempDir, deps.Folder, deps.Limits)
	return &Services{
		AuthService:        NewAuthService(stores.Users, deps.JWTService, deps.ApplicationID, logger.Component("auth")),
		UploadService:      uploads,
		PersonalService:    NewPersonalService(stores.Personal, uploads),
		AcademicService:    NewAcademicService(stores.Academic, stores.Personal, uploads),
		PaymentService:     NewPaymentService(stores.Payment, stores.Personal, uploads),
		EnclosureService:   NewEnclosureService(stores.Enclosures, stores.Personal),
		ApplicationService: NewApplicationService(stores.Personal, stores.Academic, stores.Payment, stores.Enclosures, deps.Assembler),
	}
}
