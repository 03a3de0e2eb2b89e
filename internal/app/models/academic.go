package models

import "strconv"

// Document types addressable by the academic upload endpoint
const (
	DocumentQualification = "qualification"
	DocumentExperience    = "experience"
	DocumentPublication   = "publication"
)

// Eligibility exam types. The NET type covers every national test other than GATE.
const (
	ExamGATE = "GATE"
	ExamNET  = "NET/CSIR/UGC/JRF/Lectureship/NBHM/Other"
)

// ResearchBranches are the branches an applicant can apply under
var ResearchBranches = []string{"CSE", "ECE", "EIE", "EEE", "ME"}

// ResearchInterest is the intended research branch and area
type ResearchInterest struct {
	Branch string `json:"branch" validate:"required,oneof=CSE ECE EIE EEE ME"`
	Area   string `json:"area" validate:"required"`
}

// SemesterResult is one semester row of a results table
type SemesterResult struct {
	Marks string `json:"marks,omitempty"`
	Class string `json:"class,omitempty"`
}

// NamedSemesterResult is a semester row of a free-form degree
type NamedSemesterResult struct {
	Semester string `json:"semester"`
	Marks    string `json:"marks,omitempty"`
	Class    string `json:"class,omitempty"`
}

// AggregateResult is the overall result of a degree
type AggregateResult struct {
	CGPA       string `json:"cgpa,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage string `json:"percentage,omitempty"`
}

// DegreeResults holds semester-wise results keyed by semester label
type DegreeResults struct {
	Branch    string                    `json:"branch,omitempty"`
	Semesters map[string]SemesterResult `json:"semesters,omitempty"`
	Aggregate *AggregateResult          `json:"aggregate,omitempty"`
}

// OtherDegreeResults holds results of a degree that is neither UG nor PG
type OtherDegreeResults struct {
	DegreeName string                `json:"degree_name,omitempty"`
	Branch     string                `json:"branch,omitempty"`
	Semesters  []NamedSemesterResult `json:"semesters,omitempty"`
	Aggregate  *AggregateResult      `json:"aggregate,omitempty"`
}

// ExaminationResults groups the semester tables of a qualification
type ExaminationResults struct {
	UG    *DegreeResults      `json:"ug,omitempty"`
	PG    *DegreeResults      `json:"pg,omitempty"`
	Other *OtherDegreeResults `json:"other,omitempty"`
}

// Qualification is one completed degree or school certificate
type Qualification struct {
	Standard              string              `json:"standard" validate:"required,oneof=10th 12th UG PG PhD"`
	DegreeName            string              `json:"degree_name" validate:"required"`
	University            string              `json:"university" validate:"required"`
	YearOfCompletion      int                 `json:"year_of_completion" validate:"required,min=1900,not_future_year"`
	MarksType             string              `json:"marks_type" validate:"required,oneof=Percentage CGPA"`
	MarksObtained         float64             `json:"marks_obtained" validate:"gte=0"`
	MaxCGPA               float64             `json:"max_cgpa,omitempty" validate:"omitempty,gt=0"`
	Branch                string              `json:"branch,omitempty"`
	ProgramDurationMonths int                 `json:"program_duration_months" validate:"required,min=1"`
	DocumentURL           string              `json:"document_url,omitempty" validate:"omitempty,url"`
	ExaminationResults    *ExaminationResults `json:"examination_results,omitempty"`
}

// AdditionalQualification is a national eligibility test result
type AdditionalQualification struct {
	ExamType       string   `json:"exam_type" validate:"required,oneof=GATE NET/CSIR/UGC/JRF/Lectureship/NBHM/Other"`
	Score          *float64 `json:"score,omitempty" validate:"omitempty,gte=0"`
	QualifyingYear int      `json:"qualifying_year" validate:"required,min=1900,not_future_year"`
	DateOfExam     Date     `json:"date_of_exam"`
}

// Experience is one employment entry
type Experience struct {
	Type                     string  `json:"type,omitempty" validate:"omitempty,oneof=Industry Academia Research"`
	Organisation             string  `json:"organisation" validate:"required"`
	Place                    string  `json:"place,omitempty"`
	PeriodFrom               Date    `json:"period_from" validate:"required"`
	PeriodTo                 Date    `json:"period_to" validate:"required"`
	MonthlyCompensation      float64 `json:"monthly_compensation,omitempty" validate:"gte=0"`
	Designation              string  `json:"designation,omitempty"`
	NatureOfWork             string  `json:"nature_of_work,omitempty"`
	ExperienceCertificateURL string  `json:"experience_certificate_url,omitempty" validate:"omitempty,url"`
}

// Publication is one published paper or book
type Publication struct {
	Type           string `json:"type,omitempty" validate:"omitempty,oneof=Journal Conference Book"`
	PaperTitle     string `json:"paper_title" validate:"required"`
	Affiliation    string `json:"affiliation,omitempty"`
	AcceptanceYear int    `json:"acceptance_year,omitempty" validate:"omitempty,min=1900,not_future_year"`
	DocumentURL    string `json:"document_url,omitempty" validate:"omitempty,url"`
}

// AcademicDetails is the applicant's education and research record
type AcademicDetails struct {
	Meta

	ResearchInterest         ResearchInterest          `json:"research_interest"`
	Qualifications           []Qualification           `json:"qualifications" validate:"dive"`
	AdditionalQualifications []AdditionalQualification `json:"additional_qualifications" validate:"dive"`
	Experience               []Experience              `json:"experience" validate:"dive"`
	Publications             []Publication             `json:"publications" validate:"dive"`
}

// ApplyDefaults fills defaults and normalises the PG branch
func (a *AcademicDetails) ApplyDefaults() {
	if a.Qualifications == nil {
		a.Qualifications = []Qualification{}
	}
	if a.AdditionalQualifications == nil {
		a.AdditionalQualifications = []AdditionalQualification{}
	}
	if a.Experience == nil {
		a.Experience = []Experience{}
	}
	if a.Publications == nil {
		a.Publications = []Publication{}
	}

	for i := range a.Qualifications {
		q := &a.Qualifications[i]
		if q.MarksType == "CGPA" && q.MaxCGPA == 0 {
			q.MaxCGPA = 10
		}
		if q.Standard == "PG" && q.ExaminationResults != nil && q.ExaminationResults.PG != nil {
			q.ExaminationResults.PG.Branch = a.pgBranch(q.Branch)
		}
	}
}

// pgBranch prefers a recognised qualification branch, then the research branch
func (a *AcademicDetails) pgBranch(branch string) string {
	for _, b := range ResearchBranches {
		if b == branch {
			return branch
		}
	}
	return a.ResearchInterest.Branch
}

// DocumentPath returns the JSON path of the URL field of an indexed sub-document
func DocumentPath(documentType string, index int) ([]string, bool) {
	switch documentType {
	case DocumentQualification:
		return []string{"qualifications", strconv.Itoa(index), "document_url"}, true
	case DocumentExperience:
		return []string{"experience", strconv.Itoa(index), "experience_certificate_url"}, true
	case DocumentPublication:
		return []string{"publications", strconv.Itoa(index), "document_url"}, true
	default:
		return nil, false
	}
}

// Len reports the number of entries of a document type
func (a *AcademicDetails) Len(documentType string) int {
	switch documentType {
	case DocumentQualification:
		return len(a.Qualifications)
	case DocumentExperience:
		return len(a.Experience)
	case DocumentPublication:
		return len(a.Publications)
	default:
		return 0
	}
}

// SetDocumentURL writes url into the indexed sub-document
func (a *AcademicDetails) SetDocumentURL(documentType string, index int, url string) bool {
	if index < 0 || index >= a.Len(documentType) {
		return false
	}
	switch documentType {
	case DocumentQualification:
		a.Qualifications[index].DocumentURL = url
	case DocumentExperience:
		a.Experience[index].ExperienceCertificateURL = url
	case DocumentPublication:
		a.Publications[index].DocumentURL = url
	}
	return true
}
