package models

import "time"

// ApplicationStatus is the lifecycle state of an application
type ApplicationStatus string

const (
	StatusDraft     ApplicationStatus = "draft"
	StatusSubmitted ApplicationStatus = "submitted"
)

// Departments offering the programme
var Departments = []string{
	"Computer Science and Engineering",
	"Electronics and Communication Engineering",
	"Mechanical Engineering",
	"Civil Engineering",
	"Electrical Engineering",
	"Chemical Engineering",
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biotechnology",
	"Management Studies",
}

// Address is a postal address
type Address struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,numeric,len=6"`
	Country string `json:"country" validate:"required"`
}

// TransactionDetails records the fee transaction entered on the personal form
type TransactionDetails struct {
	TransactionID            string `json:"transaction_id,omitempty"`
	TransactionDate          Date   `json:"transaction_date"`
	IssuedBank               string `json:"issued_bank,omitempty"`
	TransactionScreenshotURL string `json:"transaction_screenshot_url,omitempty" validate:"omitempty,url"`
}

// PersonalDetails is the applicant's demographic record
type PersonalDetails struct {
	Meta

	FirstName            string `json:"first_name" validate:"required,min=2,max=30,alphaspace"`
	MiddleName           string `json:"middle_name,omitempty" validate:"omitempty,max=30,alphaspace"`
	LastName             string `json:"last_name" validate:"required,min=2,max=30,alphaspace"`
	DateOfBirth          Date   `json:"date_of_birth" validate:"required,applicant_age"`
	Gender               string `json:"gender" validate:"required,oneof=Male Female Other"`
	Nationality          string `json:"nationality" validate:"required"`
	Category             string `json:"category" validate:"required,oneof=General OBC SC ST Other"`
	PhysicallyChallenged bool   `json:"physically_challenged"`
	Religion             string `json:"religion" validate:"required"`
	FatherName           string `json:"father_name" validate:"required"`
	MotherName           string `json:"mother_name" validate:"required"`
	MaritalStatus        string `json:"marital_status" validate:"required,oneof=Single Married Divorced Widowed"`
	SpouseName           string `json:"spouse_name,omitempty"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone" validate:"required,numeric,len=10"`

	ProgrammeType string `json:"programme_type" validate:"required,oneof=Ph.D. M.Phil. M.Tech. M.Sc."`
	Department    string `json:"department" validate:"required,department"`
	ModeOfPhD     string `json:"mode_of_phd" validate:"required,oneof='Full Time' 'Part Time'"`

	CurrentAddress   Address `json:"current_address"`
	PermanentAddress Address `json:"permanent_address"`

	Photo              *StoredFile         `json:"photo,omitempty"`
	Signature          *StoredFile         `json:"signature,omitempty"`
	DDURL              string              `json:"dd_url,omitempty" validate:"omitempty,url"`
	TransactionDetails *TransactionDetails `json:"transaction_details,omitempty"`
	Declaration        *Declaration        `json:"declaration,omitempty"`

	Status      ApplicationStatus `json:"status"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
}

// ApplyDefaults fills optional fields the schema expects to be present
func (p *PersonalDetails) ApplyDefaults() {
	if p.ProgrammeType == "" {
		p.ProgrammeType = "Ph.D."
	}
	if p.CurrentAddress.Country == "" {
		p.CurrentAddress.Country = "India"
	}
	if p.PermanentAddress.Country == "" {
		p.PermanentAddress.Country = "India"
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
}

// FullName joins first, middle and last name
func (p *PersonalDetails) FullName() string {
	name := p.FirstName
	if p.MiddleName != "" {
		name += " " + p.MiddleName
	}
	return name + " " + p.LastName
}
