package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertType distinguishes what raised a clinical alert.
type AlertType string

const (
	AlertTypeRedFlag          AlertType = "RED_FLAG"
	AlertTypeContraindication AlertType = "CONTRAINDICATION"
	AlertTypeOutcome          AlertType = "OUTCOME_ALERT"
)

// AlertStatus is the lifecycle state of an alert.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "ACTIVE"
	AlertStatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertStatusResolved     AlertStatus = "RESOLVED"
)

// ClinicalAlert is a patient-facing safety record created alongside
// high-severity findings.
type ClinicalAlert struct {
	Base
	OrganizationID uuid.UUID     `json:"organization_id" db:"organization_id"`
	PatientID      uuid.UUID     `json:"patient_id" db:"patient_id"`
	FindingID      *uuid.UUID    `json:"finding_id,omitempty" db:"finding_id"`
	Type           AlertType     `json:"type" db:"type"`
	Severity       AlertSeverity `json:"severity" db:"severity"`
	Status         AlertStatus   `json:"status" db:"status"`
	Message        string        `json:"message" db:"message"`
	Recommendation string        `json:"recommendation" db:"recommendation"`
	ProcedureName  string        `json:"procedure_name,omitempty" db:"procedure_name"`
	ResolutionNote string        `json:"resolution_note,omitempty" db:"resolution_note"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty" db:"resolved_at"`
}
