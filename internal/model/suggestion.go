package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/lib/pq"
)

// SuggestionStatus is the tri-state lifecycle of a diagnosis suggestion.
// Accepted and rejected are terminal and mutually exclusive.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionAccepted SuggestionStatus = "accepted"
	SuggestionRejected SuggestionStatus = "rejected"
)

// DiagnosisSuggestion is a persisted candidate diagnosis for an encounter.
type DiagnosisSuggestion struct {
	Base
	OrganizationID     uuid.UUID        `json:"organization_id" db:"organization_id"`
	PatientID          uuid.UUID        `json:"patient_id" db:"patient_id"`
	EncounterID        *uuid.UUID       `json:"encounter_id,omitempty" db:"encounter_id"`
	Code               string           `json:"code" db:"code"`
	Description        string           `json:"description" db:"description"`
	Confidence         int              `json:"confidence" db:"confidence"`
	Reasoning          string           `json:"reasoning" db:"reasoning"`
	SupportingEvidence pq.StringArray   `json:"supporting_evidence" db:"supporting_evidence"`
	HasRedFlags        bool             `json:"has_red_flags" db:"has_red_flags"`
	EvidenceLevel      string           `json:"evidence_level" db:"evidence_level"`
	SuggestionSource   string           `json:"suggestion_source" db:"suggestion_source"`
	Status             SuggestionStatus `json:"status" db:"status"`
	RejectionReason    string           `json:"rejection_reason,omitempty" db:"rejection_reason"`
	DiagnosisID        *uuid.UUID       `json:"diagnosis_id,omitempty" db:"diagnosis_id"`
	DecidedAt          *time.Time       `json:"decided_at,omitempty" db:"decided_at"`
	DecidedBy          *uuid.UUID       `json:"decided_by,omitempty" db:"decided_by"`
}

// Diagnosis is the permanent record created when a suggestion is accepted.
type Diagnosis struct {
	Base
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	PatientID      uuid.UUID  `json:"patient_id" db:"patient_id"`
	EncounterID    *uuid.UUID `json:"encounter_id,omitempty" db:"encounter_id"`
	Code           string     `json:"code" db:"code"`
	Description    string     `json:"description" db:"description"`
	Sequence       int        `json:"sequence" db:"sequence"`
	IsPrimary      bool       `json:"is_primary" db:"is_primary"`
}

// SuggestDiagnosisRequest carries text/structured overrides for scoring.
type SuggestDiagnosisRequest struct {
	EncounterID    *uuid.UUID `json:"encounter_id"`
	ChiefComplaint string     `json:"chief_complaint"`
	Subjective     string     `json:"subjective"`
	Objective      string     `json:"objective"`
	ClinicalNotes  string     `json:"clinical_notes"`
	Limit          int        `json:"limit"`
}

// AcceptSuggestionRequest marks a pending suggestion accepted.
type AcceptSuggestionRequest struct {
	IsPrimary bool `json:"is_primary"`
}

// RejectSuggestionRequest terminally rejects a pending suggestion.
type RejectSuggestionRequest struct {
	Reason string `json:"reason" binding:"required"`
}
