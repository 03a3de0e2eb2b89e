package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// Meta holds the row-level fields every form record carries.
// They are owned by the server and never taken from a request body.
type Meta struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Metadata exposes the embedded Meta to repositories
func (m *Meta) Metadata() *Meta {
	return m
}

// Document is a form record persisted as one JSON document per applicant
type Document interface {
	Metadata() *Meta
}

// Date is a calendar date that accepts "2006-01-02" or RFC 3339 input
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the zero date as null
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON leaves the value untouched on null
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = Date{}
		return nil
	}

	for _, layout := range []string{DateLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			*d = NewDate(t)
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}

// StoredFile references an object in the document store
type StoredFile struct {
	URL      string `json:"url" validate:"omitempty,url"`
	PublicID string `json:"public_id,omitempty"`
}

// Declaration is the applicant's signed place and date
type Declaration struct {
	Place string `json:"place" validate:"required"`
	Date  Date   `json:"date" validate:"required"`
}
