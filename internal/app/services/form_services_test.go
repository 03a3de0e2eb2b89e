package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID int64 = 7

func validPersonal() *models.PersonalDetails {
	address := models.Address{Street: "1 Main Road", City: "Delhi", State: "Delhi", Pincode: "110040", Country: "India"}
	return &models.PersonalDetails{
		FirstName:        "Alice",
		LastName:         "Doe",
		DateOfBirth:      models.NewDate(time.Now().AddDate(-26, 0, 0)),
		Gender:           "Female",
		Nationality:      "Indian",
		Category:         "General",
		Religion:         "None",
		FatherName:       "Bob Doe",
		MotherName:       "Carol Doe",
		MaritalStatus:    "Single",
		Email:            "alice@x.com",
		Phone:            "9876543210",
		Department:       "Physics",
		ModeOfPhD:        "Full Time",
		CurrentAddress:   address,
		PermanentAddress: address,
	}
}

func validAcademic() *models.AcademicDetails {
	return &models.AcademicDetails{
		ResearchInterest: models.ResearchInterest{Branch: "CSE", Area: "Systems"},
		Qualifications: []models.Qualification{{
			Standard:              "UG",
			DegreeName:            "B.Tech.",
			University:            "NIT",
			YearOfCompletion:      2020,
			MarksType:             "Percentage",
			MarksObtained:         81.5,
			ProgramDurationMonths: 48,
		}},
	}
}

func validPayment() *models.Payment {
	return &models.Payment{
		TransactionID:   "TXN123",
		TransactionDate: models.NewDate(time.Now()),
		IssuedBank:      "SBI",
		Amount:          1500,
		Screenshot:      models.StoredFile{URL: "https://cdn.example.org/s.png"},
	}
}

func TestPersonal_CreateGetUpdate(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.PersonalService
	ctx := context.Background()

	in := validPersonal()
	in.ID = 99
	in.UserID = 12345
	in.Status = models.StatusSubmitted
	created, err := s.Create(ctx, userID, in)
	require.NoError(t, err)
	assert.Equal(t, userID, created.UserID)
	assert.NotEqual(t, int64(99), created.ID)
	assert.Equal(t, models.StatusDraft, created.Status)
	assert.Equal(t, "Ph.D.", created.ProgrammeType)

	_, err = s.Create(ctx, userID, validPersonal())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.EqualError(t, err, "Personal details already exist for this user")

	updated, err := s.Update(ctx, userID, []byte(`{"phone":"9000000000","status":"submitted",
		"current_address":{"street":"2 Hill Road","city":"Mumbai","state":"Maharashtra","pincode":"400001"}}`))
	require.NoError(t, err)
	assert.Equal(t, "9000000000", updated.Phone)
	assert.Equal(t, "Mumbai", updated.CurrentAddress.City)
	assert.Equal(t, "2 Hill Road", updated.CurrentAddress.Street)
	assert.Equal(t, "India", updated.CurrentAddress.Country)
	assert.Equal(t, "1 Main Road", updated.PermanentAddress.Street)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, models.StatusDraft, updated.Status)

	got, err := s.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "9000000000", got.Phone)
}

func TestPersonal_CreateMissingEmail(t *testing.T) {
	env := newTestEnv(t)
	p := validPersonal()
	p.Email = ""
	p.CurrentAddress.City = ""

	_, err := env.services.PersonalService.Create(context.Background(), userID, p)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validation.MsgMissingFields, verr.Message)
	assert.Equal(t, []string{"current_address.city", "email"}, verr.Fields)

	exists, _ := env.stores.Personal.Exists(context.Background(), userID)
	assert.False(t, exists)
}

func TestUpdate_WithoutRecordIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.PaymentService.Update(ctx, userID, []byte(`{"amount":10}`))
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.EqualError(t, err, "Payment details not found")

	_, err = env.services.AcademicService.Update(ctx, userID, []byte(`{}`))
	assert.EqualError(t, err, "Academic details not found")

	exists, _ := env.stores.Payment.Exists(ctx, userID)
	assert.False(t, exists)
}

func TestUpdate_InvalidBodyAndInvalidResult(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.PersonalService
	ctx := context.Background()
	_, err := s.Create(ctx, userID, validPersonal())
	require.NoError(t, err)

	_, err = s.Update(ctx, userID, []byte(`{"phone":`))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = s.Update(ctx, userID, []byte(`{"phone":"12"}`))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	got, err := s.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", got.Phone)
}

func TestUpdate_ReplacesArraysWhole(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.AcademicService
	ctx := context.Background()

	a := validAcademic()
	a.Qualifications = append(a.Qualifications, models.Qualification{
		Standard:              "PG",
		DegreeName:            "M.Tech.",
		University:            "IIT",
		YearOfCompletion:      2022,
		MarksType:             "CGPA",
		MarksObtained:         8.2,
		ProgramDurationMonths: 24,
	})
	_, err := s.Create(ctx, userID, a)
	require.NoError(t, err)
	_, err = s.UploadDocument(ctx, userID, models.DocumentQualification, 0, fileHeader(t, "document", "ug.pdf", pdfContent))
	require.NoError(t, err)

	updated, err := s.Update(ctx, userID, []byte(`{"qualifications":[{
		"standard":"PG","degree_name":"M.Tech.","university":"IIT","year_of_completion":2022,
		"marks_type":"CGPA","marks_obtained":8.2,"program_duration_months":24}]}`))
	require.NoError(t, err)
	require.Len(t, updated.Qualifications, 1)
	assert.Equal(t, "PG", updated.Qualifications[0].Standard)
	assert.Empty(t, updated.Qualifications[0].DocumentURL)

	got, err := s.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got.Qualifications, 1)
	assert.Empty(t, got.Qualifications[0].DocumentURL)
	assert.Equal(t, "CSE", got.ResearchInterest.Branch)
}

func TestPayment_CreateForcesPending(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.PaymentService
	ctx := context.Background()

	p := validPayment()
	p.Status = models.PaymentVerified
	p.VerifiedBy = "me"
	created, err := s.Create(ctx, userID, p)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, created.Status)
	assert.Empty(t, created.VerifiedBy)

	updated, err := s.Update(ctx, userID, []byte(`{"status":"verified","amount":2000}`))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, updated.Status)
	assert.Equal(t, 2000.0, updated.Amount)
}

func TestEnclosure_DefaultThenCreateUpdate(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.EnclosureService
	ctx := context.Background()

	def, err := s.Get(ctx, userID)
	require.NoError(t, err)
	assert.False(t, def.Enclosures.Bachelors)
	assert.Equal(t, models.NewDate(time.Now()), def.Declaration.Date)
	exists, _ := env.stores.Enclosures.Exists(ctx, userID)
	assert.False(t, exists)

	e := &models.Enclosure{Declaration: models.Declaration{Place: "Delhi", Date: models.NewDate(time.Now())}}
	e.Enclosures.Bachelors = true
	_, err = s.Create(ctx, userID, e)
	require.NoError(t, err)

	_, err = s.Create(ctx, userID, e)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	updated, err := s.Update(ctx, userID, []byte(`{"enclosures":{"masters":true},"additional_info":"none"}`))
	require.NoError(t, err)
	assert.False(t, updated.Enclosures.Bachelors)
	assert.True(t, updated.Enclosures.Masters)
	assert.Equal(t, "none", updated.AdditionalInfo)
	assert.Equal(t, "Delhi", updated.Declaration.Place)
}

func TestUpload_OversizedDocumentRejectedAndTempEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.services.PersonalService.Create(ctx, userID, validPersonal())
	require.NoError(t, err)

	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'0'}, 6<<20)...)
	_, err = env.services.PersonalService.UploadDemandDraft(ctx, userID, fileHeader(t, "document", "dd.pdf", big))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Contains(t, err.Error(), "5MB")

	entries, err := os.ReadDir(env.temp.Path())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, env.store.n)
}

func TestUpload_RejectsWrongTypes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.services.PersonalService.Create(ctx, userID, validPersonal())
	require.NoError(t, err)

	_, err = env.services.PersonalService.UploadDemandDraft(ctx, userID, fileHeader(t, "document", "dd.png", pngContent))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	// right extension, wrong bytes
	_, err = env.services.PersonalService.UploadPhoto(ctx, userID, fileHeader(t, "photo", "me.png", pdfContent))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = env.services.PersonalService.UploadPhoto(ctx, userID, nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	entries, _ := os.ReadDir(env.temp.Path())
	assert.Empty(t, entries)
}

func TestUpload_StoreFailureIsUploadError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.services.PersonalService.Create(ctx, userID, validPersonal())
	require.NoError(t, err)

	env.store.err = errors.New("store unavailable")
	_, err = env.services.PersonalService.UploadPhoto(ctx, userID, fileHeader(t, "photo", "me.png", pngContent))
	assert.ErrorIs(t, err, apperrors.ErrUploadFailed)

	entries, _ := os.ReadDir(env.temp.Path())
	assert.Empty(t, entries)
}

func TestPersonal_Uploads(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.PersonalService
	ctx := context.Background()

	_, err := s.UploadPhoto(ctx, userID, fileHeader(t, "photo", "me.png", pngContent))
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = s.Create(ctx, userID, validPersonal())
	require.NoError(t, err)

	first, err := s.UploadPhoto(ctx, userID, fileHeader(t, "photo", "me.png", pngContent))
	require.NoError(t, err)
	second, err := s.UploadPhoto(ctx, userID, fileHeader(t, "photo", "me2.png", pngContent))
	require.NoError(t, err)
	assert.Equal(t, []string{first.PublicID}, env.store.deleted)

	dd, err := s.UploadDemandDraft(ctx, userID, fileHeader(t, "document", "dd.pdf", pdfContent))
	require.NoError(t, err)
	shot, err := s.UploadTransactionScreenshot(ctx, userID, fileHeader(t, "document", "txn.jpg", pngContent))
	require.NoError(t, err)

	got, err := s.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.URL, got.Photo.URL)
	assert.Equal(t, dd.URL, got.DDURL)
	require.NotNil(t, got.TransactionDetails)
	assert.Equal(t, shot.URL, got.TransactionDetails.TransactionScreenshotURL)

	// a general update does not drop uploaded files
	_, err = s.Update(ctx, userID, []byte(`{"photo":null,"religion":"Hindu"}`))
	require.NoError(t, err)
	got, _ = s.Get(ctx, userID)
	assert.Equal(t, second.URL, got.Photo.URL)
	assert.Equal(t, "Hindu", got.Religion)
}

func TestPersonal_TransactionDetailsAndDeclaration(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.PersonalService
	ctx := context.Background()
	_, err := s.Create(ctx, userID, validPersonal())
	require.NoError(t, err)

	shot, err := s.UploadTransactionScreenshot(ctx, userID, fileHeader(t, "document", "txn.png", pngContent))
	require.NoError(t, err)

	updated, err := s.UpdateTransactionDetails(ctx, userID, &models.TransactionDetails{TransactionID: "T1", IssuedBank: "SBI"})
	require.NoError(t, err)
	assert.Equal(t, shot.URL, updated.TransactionDetails.TransactionScreenshotURL)

	_, err = s.UpdateDeclaration(ctx, userID, &models.Declaration{})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"place", "date"}, verr.Fields)

	_, err = s.UpdateDeclaration(ctx, userID, &models.Declaration{Place: "Delhi", Date: models.NewDate(time.Now())})
	require.NoError(t, err)

	got, _ := s.Get(ctx, userID)
	assert.Equal(t, "T1", got.TransactionDetails.TransactionID)
	assert.Equal(t, "Delhi", got.Declaration.Place)
}

func TestAcademic_UploadDocument(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.AcademicService
	ctx := context.Background()
	doc := fileHeader(t, "document", "degree.pdf", pdfContent)

	_, err := s.UploadDocument(ctx, userID, "thesis", 0, doc)
	assert.EqualError(t, err, "Invalid document type")

	_, err = s.Create(ctx, userID, validAcademic())
	require.NoError(t, err)

	_, err = s.UploadDocument(ctx, userID, models.DocumentQualification, 1, doc)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = s.UploadDocument(ctx, userID, models.DocumentPublication, 0, doc)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	resp, err := s.UploadDocument(ctx, userID, models.DocumentQualification, 0, doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.URL, "https://"))

	got, err := s.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, resp.URL, got.Qualifications[0].DocumentURL)
	assert.True(t, strings.HasPrefix(got.Qualifications[0].DocumentURL, "https://"))
}

func TestPayment_UploadScreenshot(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.PaymentService
	ctx := context.Background()

	obj, err := s.UploadScreenshot(ctx, userID, fileHeader(t, "document", "s.png", pngContent))
	require.NoError(t, err)
	exists, _ := env.stores.Payment.Exists(ctx, userID)
	assert.False(t, exists)

	p := validPayment()
	p.Screenshot = models.StoredFile{URL: obj.URL, PublicID: obj.PublicID}
	_, err = s.Create(ctx, userID, p)
	require.NoError(t, err)

	next, err := s.UploadScreenshot(ctx, userID, fileHeader(t, "document", "s2.png", pngContent))
	require.NoError(t, err)
	got, _ := s.Get(ctx, userID)
	assert.Equal(t, next.URL, got.Screenshot.URL)
	assert.Equal(t, next.PublicID, got.Screenshot.PublicID)
	assert.Empty(t, env.store.deleted)

	// an update that keeps the url keeps the server-side id
	_, err = s.Update(ctx, userID, []byte(`{"amount":2000,"screenshot":{"url":"`+next.URL+`"}}`))
	require.NoError(t, err)
	_, err = s.UploadScreenshot(ctx, userID, fileHeader(t, "document", "s3.png", pngContent))
	require.NoError(t, err)
	assert.Equal(t, []string{next.PublicID}, env.store.deleted)
}

func TestUploads_IgnoreClientPublicIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const otherUser int64 = 99

	_, err := env.services.PersonalService.Create(ctx, otherUser, validPersonal())
	require.NoError(t, err)
	photo, err := env.services.PersonalService.UploadPhoto(ctx, otherUser, fileHeader(t, "photo", "me.png", pngContent))
	require.NoError(t, err)

	p := validPayment()
	p.Screenshot = models.StoredFile{URL: photo.URL, PublicID: photo.PublicID}
	created, err := env.services.PaymentService.Create(ctx, userID, p)
	require.NoError(t, err)
	assert.Empty(t, created.Screenshot.PublicID)
	_, err = env.services.PaymentService.UploadScreenshot(ctx, userID, fileHeader(t, "document", "s.png", pngContent))
	require.NoError(t, err)

	_, err = env.services.PaymentService.Update(ctx, userID, []byte(`{"screenshot":{"url":"https://cdn.example.org/x.png","public_id":"`+photo.PublicID+`"}}`))
	require.NoError(t, err)
	_, err = env.services.PaymentService.UploadScreenshot(ctx, userID, fileHeader(t, "document", "s2.png", pngContent))
	require.NoError(t, err)

	mine := validPersonal()
	mine.Photo = &models.StoredFile{URL: photo.URL, PublicID: photo.PublicID}
	mine.Signature = &models.StoredFile{URL: photo.URL, PublicID: photo.PublicID}
	created2, err := env.services.PersonalService.Create(ctx, userID, mine)
	require.NoError(t, err)
	assert.Empty(t, created2.Photo.PublicID)
	_, err = env.services.PersonalService.UploadPhoto(ctx, userID, fileHeader(t, "photo", "mine.png", pngContent))
	require.NoError(t, err)
	_, err = env.services.PersonalService.UploadSignature(ctx, userID, fileHeader(t, "signature", "sig.png", pngContent))
	require.NoError(t, err)

	assert.NotContains(t, env.store.deleted, photo.PublicID)
}
