package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/nitn/phd-admission/internal/pkg/metrics"
	"github.com/nitn/phd-admission/internal/pkg/pdfassembly"
	"github.com/nitn/phd-admission/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// Wizard steps in order
const (
	StepPersonal   = "personal"
	StepAcademic   = "academic"
	StepPayment    = "payment"
	StepEnclosures = "enclosures"
	StepPrint      = "print"
)

// MsgApplicationIncomplete is returned when submit finds missing or invalid steps
const MsgApplicationIncomplete = "Application is incomplete"

// PDFAssembler builds the printable application
type PDFAssembler interface {
	Assemble(ctx context.Context, summary pdfassembly.Summary, sources []pdfassembly.Source) (*pdfassembly.Result, error)
}

// ApplicationService covers the application as a whole: progress, submission and printout
type ApplicationService struct {
	personal   PersonalStore
	academic   AcademicStore
	payment    PaymentStore
	enclosures EnclosureStore
	assembler  PDFAssembler
	now        func() time.Time
	logger     zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(personal PersonalStore, academic AcademicStore, payment PaymentStore, enclosures EnclosureStore, assembler PDFAssembler) *ApplicationService {
	return &ApplicationService{
		personal:   personal,
		academic:   academic,
		payment:    payment,
		enclosures: enclosures,
		assembler:  assembler,
		now:        time.Now,
		logger:     logger.Component("application"),
	}
}

// Status reports which steps are saved and the next one to fill
func (s *ApplicationService) Status(ctx context.Context, user *models.User) (*dto.ApplicationStatusResponse, error) {
	resp := &dto.ApplicationStatusResponse{
		ApplicationID: user.ApplicationID,
		Status:        models.StatusDraft,
	}

	p, err := s.personal.GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		resp.Status = p.Status
		resp.SubmittedAt = p.SubmittedAt
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return nil, err
	}

	checks := []struct {
		name   string
		exists func(context.Context, int64) (bool, error)
	}{
		{StepPersonal, s.personal.Exists},
		{StepAcademic, s.academic.Exists},
		{StepPayment, s.payment.Exists},
		{StepEnclosures, s.enclosures.Exists},
	}
	for _, c := range checks {
		ok, err := c.exists(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		resp.Steps = append(resp.Steps, dto.StepStatus{Name: c.name, Complete: ok})
		if !ok && resp.NextStep == "" {
			resp.NextStep = c.name
		}
	}
	if resp.NextStep == "" {
		resp.NextStep = StepPrint
	}
	return resp, nil
}

// loadStep fetches a form and validates it; a missing or invalid form is reported in problems
func loadStep[P any](ctx context.Context, store FormStore[P], userID int64, step string, problems map[string]string) (P, error) {
	doc, err := store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			problems[step] = step + " details have not been saved"
			return doc, nil
		}
		return doc, err
	}

	if verr := validation.Struct(doc); verr != nil {
		var ve *apperrors.ValidationError
		if errors.As(verr, &ve) {
			keys := make([]string, 0, len(ve.Errors))
			for k := range ve.Errors {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			problems[step] = step + " details are invalid: " + strings.Join(keys, ", ")
		} else {
			problems[step] = verr.Error()
		}
	}
	return doc, nil
}

// Submit locks the application once every form is saved and valid
func (s *ApplicationService) Submit(ctx context.Context, userID int64) (*models.PersonalDetails, error) {
	problems := map[string]string{}

	personal, err := loadStep(ctx, s.personal, userID, StepPersonal, problems)
	if err != nil {
		return nil, err
	}
	if personal != nil && personal.Status == models.StatusSubmitted {
		return nil, apperrors.NewCustomError(apperrors.ErrApplicationSubmitted, MsgApplicationSubmitted)
	}
	if _, err := loadStep(ctx, s.academic, userID, StepAcademic, problems); err != nil {
		return nil, err
	}
	if _, err := loadStep(ctx, s.payment, userID, StepPayment, problems); err != nil {
		return nil, err
	}
	if _, err := loadStep(ctx, s.enclosures, userID, StepEnclosures, problems); err != nil {
		return nil, err
	}

	if len(problems) > 0 {
		steps := make([]string, 0, len(problems))
		for step := range problems {
			steps = append(steps, step)
		}
		return nil, apperrors.NewValidationError(MsgApplicationIncomplete, steps, problems).
			WithReason(apperrors.ErrApplicationIncomplete)
	}

	now := s.now().UTC()
	personal.Status = models.StatusSubmitted
	personal.SubmittedAt = &now
	if err := s.personal.Replace(ctx, personal); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Msg("Application submitted")
	return personal, nil
}

// Print renders the application summary followed by every uploaded document
func (s *ApplicationService) Print(ctx context.Context, user *models.User) ([]byte, error) {
	personal, err := s.personal.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	academic, err := optional(s.academic.GetByUserID(ctx, user.ID))
	if err != nil {
		return nil, err
	}
	payment, err := optional(s.payment.GetByUserID(ctx, user.ID))
	if err != nil {
		return nil, err
	}
	enclosure, err := optional(s.enclosures.GetByUserID(ctx, user.ID))
	if err != nil {
		return nil, err
	}

	summary := buildSummary(user, personal, academic, payment, enclosure)
	result, err := s.assembler.Assemble(ctx, summary, documentSources(personal, academic))
	if err != nil {
		return nil, fmt.Errorf("failed to assemble application pdf: %w", err)
	}

	for _, f := range result.Failures {
		metrics.RecordPDFFailure(f.Type)
	}
	s.logger.Info().Int64("userID", user.ID).Int("failures", len(result.Failures)).Msg("Application printed")
	return result.PDF, nil
}

// optional turns a not-found result into a nil document
func optional[P any](doc P, err error) (P, error) {
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		var zero P
		return zero, nil
	}
	return doc, err
}

// documentSources lists the documents appended after the summary, in print order
func documentSources(personal *models.PersonalDetails, academic *models.AcademicDetails) []pdfassembly.Source {
	var sources []pdfassembly.Source
	if personal.DDURL != "" {
		sources = append(sources, pdfassembly.Source{Type: pdfassembly.TypeDemandDraft, URL: personal.DDURL})
	}
	if academic == nil {
		return sources
	}
	for _, q := range academic.Qualifications {
		if q.DocumentURL != "" {
			sources = append(sources, pdfassembly.Source{Type: pdfassembly.TypeQualification, URL: q.DocumentURL})
		}
	}
	for _, e := range academic.Experience {
		if e.ExperienceCertificateURL != "" {
			sources = append(sources, pdfassembly.Source{Type: pdfassembly.TypeExperience, URL: e.ExperienceCertificateURL})
		}
	}
	for _, p := range academic.Publications {
		if p.DocumentURL != "" {
			sources = append(sources, pdfassembly.Source{Type: pdfassembly.TypePublication, URL: p.DocumentURL})
		}
	}
	return sources
}

func formatDate(d models.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02-01-2006")
}

func formatAddress(a models.Address) string {
	parts := []string{a.Street, a.City, a.State, a.Pincode, a.Country}
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func buildSummary(user *models.User, p *models.PersonalDetails, a *models.AcademicDetails, pay *models.Payment, e *models.Enclosure) pdfassembly.Summary {
	summary := pdfassembly.Summary{
		Title:    "Application for Admission to " + p.ProgrammeType + " Programme",
		Subtitle: "Registration No. " + user.ApplicationID,
	}

	personal := pdfassembly.Section{Title: "Personal Details", Rows: []pdfassembly.Row{
		{Label: "Name", Value: p.FullName()},
		{Label: "Date of birth", Value: formatDate(p.DateOfBirth)},
		{Label: "Gender", Value: p.Gender},
		{Label: "Nationality", Value: p.Nationality},
		{Label: "Category", Value: p.Category},
		{Label: "Physically challenged", Value: yesNo(p.PhysicallyChallenged)},
		{Label: "Religion", Value: p.Religion},
		{Label: "Father's name", Value: p.FatherName},
		{Label: "Mother's name", Value: p.MotherName},
		{Label: "Marital status", Value: p.MaritalStatus},
		{Label: "Email", Value: p.Email},
		{Label: "Phone", Value: p.Phone},
		{Label: "Department", Value: p.Department},
		{Label: "Mode of Ph.D.", Value: p.ModeOfPhD},
		{Label: "Current address", Value: formatAddress(p.CurrentAddress)},
		{Label: "Permanent address", Value: formatAddress(p.PermanentAddress)},
	}}
	if p.SpouseName != "" {
		personal.Rows = append(personal.Rows, pdfassembly.Row{Label: "Spouse's name", Value: p.SpouseName})
	}
	summary.Sections = append(summary.Sections, personal)

	if a != nil {
		academic := pdfassembly.Section{Title: "Academic Details", Rows: []pdfassembly.Row{
			{Label: "Research branch", Value: a.ResearchInterest.Branch},
			{Label: "Research area", Value: a.ResearchInterest.Area},
		}}
		for _, q := range a.Qualifications {
			marks := strconv.FormatFloat(q.MarksObtained, 'f', -1, 64)
			if q.MarksType == "CGPA" {
				marks += " / " + strconv.FormatFloat(q.MaxCGPA, 'f', -1, 64) + " CGPA"
			} else {
				marks += "%"
			}
			academic.Rows = append(academic.Rows, pdfassembly.Row{
				Label: q.Standard + ": " + q.DegreeName,
				Value: fmt.Sprintf("%s, %d, %s", q.University, q.YearOfCompletion, marks),
			})
		}
		for _, aq := range a.AdditionalQualifications {
			value := strconv.Itoa(aq.QualifyingYear)
			if aq.Score != nil {
				value += ", score " + strconv.FormatFloat(*aq.Score, 'f', -1, 64)
			}
			academic.Rows = append(academic.Rows, pdfassembly.Row{Label: aq.ExamType, Value: value})
		}
		for _, x := range a.Experience {
			academic.Rows = append(academic.Rows, pdfassembly.Row{
				Label: "Experience: " + x.Organisation,
				Value: fmt.Sprintf("%s, %s to %s", x.Designation, formatDate(x.PeriodFrom), formatDate(x.PeriodTo)),
			})
		}
		for _, pub := range a.Publications {
			academic.Rows = append(academic.Rows, pdfassembly.Row{Label: "Publication", Value: pub.PaperTitle})
		}
		summary.Sections = append(summary.Sections, academic)
	}

	if pay != nil {
		summary.Sections = append(summary.Sections, pdfassembly.Section{Title: "Payment Details", Rows: []pdfassembly.Row{
			{Label: "Transaction ID", Value: pay.TransactionID},
			{Label: "Transaction date", Value: formatDate(pay.TransactionDate)},
			{Label: "Issued bank", Value: pay.IssuedBank},
			{Label: "Amount", Value: strconv.FormatFloat(pay.Amount, 'f', 2, 64)},
			{Label: "Status", Value: string(pay.Status)},
		}})
	}

	if e != nil {
		f := e.Enclosures
		flags := []struct {
			label string
			set   bool
		}{
			{"Transaction details", f.TransactionDetails},
			{"Matriculation certificate", f.Matriculation},
			{"Intermediate certificate", f.Intermediate},
			{"Bachelor's degree", f.Bachelors},
			{"Master's degree", f.Masters},
			{"GATE / NET scorecard", f.GateNet},
			{"Doctor's certificate", f.DoctorsCertificate},
			{"Community certificate", f.CommunityCertificate},
			{"Experience letter", f.ExperienceLetter},
			{"Government ID", f.GovernmentID},
			{"Research publications", f.ResearchPublications},
		}
		section := pdfassembly.Section{Title: "Enclosures"}
		for _, fl := range flags {
			section.Rows = append(section.Rows, pdfassembly.Row{Label: fl.label, Value: yesNo(fl.set)})
		}
		if e.AdditionalInfo != "" {
			section.Rows = append(section.Rows, pdfassembly.Row{Label: "Additional information", Value: e.AdditionalInfo})
		}
		section.Rows = append(section.Rows,
			pdfassembly.Row{Label: "Place", Value: e.Declaration.Place},
			pdfassembly.Row{Label: "Date", Value: formatDate(e.Declaration.Date)},
		)
		summary.Sections = append(summary.Sections, section)
	}

	return summary
}
