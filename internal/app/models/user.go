package models

import (
	"time"
)

// User defines the applicant account stored in the 'users' table
type User struct {
	ID            int64     `json:"id" db:"id" example:"1"`
	ApplicationID string    `json:"applicationId" db:"application_id" example:"NITN/Phd/000001"`
	Email         string    `json:"email" db:"email" example:"alice@x.com"`
	FullName      string    `json:"fullName" db:"full_name" example:"Alice Doe"`
	Password      string    `json:"-" db:"password"`
	RefreshToken  *string   `json:"-" db:"refresh_token"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Sanitized returns a copy without credential material
func (u *User) Sanitized() *User {
	c := *u
	c.Password = ""
	c.RefreshToken = nil
	return &c
}
