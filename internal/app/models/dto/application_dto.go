package dto

import (
	"time"

	"github.com/nitn/phd-admission/internal/app/models"
)

// StepStatus reports whether one wizard step has been saved
type StepStatus struct {
	Name     string `json:"name" example:"personal"`
	Complete bool   `json:"complete"`
}

// ApplicationStatusResponse summarises the applicant's progress
type ApplicationStatusResponse struct {
	ApplicationID string                   `json:"applicationId" example:"NITN/Phd/000001"`
	Status        models.ApplicationStatus `json:"status" example:"draft"`
	SubmittedAt   *time.Time               `json:"submittedAt,omitempty"`
	Steps         []StepStatus             `json:"steps"`
	NextStep      string                   `json:"nextStep" example:"academic"`
}
