package models

import "time"

// EnclosureFlags is the checklist of documents attached to the application
type EnclosureFlags struct {
	TransactionDetails   bool `json:"transaction_details"`
	Matriculation        bool `json:"matriculation"`
	Intermediate         bool `json:"intermediate"`
	Bachelors            bool `json:"bachelors"`
	Masters              bool `json:"masters"`
	GateNet              bool `json:"gate_net"`
	DoctorsCertificate   bool `json:"doctors_certificate"`
	CommunityCertificate bool `json:"community_certificate"`
	ExperienceLetter     bool `json:"experience_letter"`
	GovernmentID         bool `json:"government_id"`
	ResearchPublications bool `json:"research_publications"`
}

// Enclosure is the applicant's enclosure checklist and declaration
type Enclosure struct {
	Meta

	Enclosures     EnclosureFlags `json:"enclosures"`
	AdditionalInfo string         `json:"additional_info"`
	Declaration    Declaration    `json:"declaration"`
}

// DefaultEnclosure is returned when the applicant has not saved the checklist yet
func DefaultEnclosure(userID int64, now time.Time) *Enclosure {
	return &Enclosure{
		Meta:        Meta{UserID: userID},
		Declaration: Declaration{Date: NewDate(now)},
	}
}
