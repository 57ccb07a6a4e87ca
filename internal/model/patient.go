package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/lib/pq"
)

// SurgeryEvent is one past surgery on the patient chart.
type SurgeryEvent struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// TraumaEvent is one recent trauma on the patient chart.
type TraumaEvent struct {
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// PatientChart is the engine's read model of a patient: demographics plus
// the structured lists the evidence extractor consumes. The full patient
// record lives in the practice-management store; this is the slice the
// decision support engine needs.
type PatientChart struct {
	Base
	OrganizationID uuid.UUID      `json:"organization_id" db:"organization_id"`
	FirstName      string         `json:"first_name" db:"first_name"`
	LastName       string         `json:"last_name" db:"last_name"`
	DateOfBirth    time.Time      `json:"date_of_birth" db:"date_of_birth"`
	Conditions     pq.StringArray `json:"conditions" db:"conditions"`
	Medications    pq.StringArray `json:"medications" db:"medications"`
	Allergies      pq.StringArray `json:"allergies" db:"allergies"`
	Surgeries      []SurgeryEvent `json:"surgeries" db:"-"`
	Traumas        []TraumaEvent  `json:"traumas" db:"-"`
	ChartNotes     string         `json:"chart_notes" db:"chart_notes"`
}

// Age returns the patient's age in whole years at the reference time.
func (p *PatientChart) Age(at time.Time) int {
	years := at.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

// ChartOverrides lets a caller supplement or replace chart fields for a
// single engine call without mutating the stored chart.
type ChartOverrides struct {
	Conditions  []string       `json:"conditions,omitempty"`
	Medications []string       `json:"medications,omitempty"`
	Surgeries   []SurgeryEvent `json:"surgeries,omitempty"`
	Traumas     []TraumaEvent  `json:"traumas,omitempty"`
	Age         *int           `json:"age,omitempty"`
}
