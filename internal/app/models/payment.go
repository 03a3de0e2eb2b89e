package models

import "time"

// PaymentStatus is the verification state of a fee payment
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// Payment is the applicant's fee transaction
type Payment struct {
	Meta

	TransactionID   string     `json:"transaction_id" validate:"required"`
	TransactionDate Date       `json:"transaction_date" validate:"required"`
	IssuedBank      string     `json:"issued_bank" validate:"required"`
	Amount          float64    `json:"amount" validate:"required,gte=0"`
	Screenshot      StoredFile `json:"screenshot"`

	Status          PaymentStatus `json:"status" validate:"oneof=pending verified rejected"`
	VerifiedBy      string        `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time    `json:"verified_at,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
}
