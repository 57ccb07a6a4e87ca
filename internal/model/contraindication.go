package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/lib/pq"
)

// ContraindicationFinding is a persisted, patient-scoped safety finding.
// Findings are soft deleted only so the audit trail survives deactivation.
type ContraindicationFinding struct {
	Base
	OrganizationID  uuid.UUID      `json:"organization_id" db:"organization_id"`
	PatientID       uuid.UUID      `json:"patient_id" db:"patient_id"`
	EncounterID     *uuid.UUID     `json:"encounter_id,omitempty" db:"encounter_id"`
	RuleID          *string        `json:"rule_id,omitempty" db:"rule_id"`
	ProcedureName   string         `json:"procedure_name" db:"procedure_name"`
	ProcedureCode   string         `json:"procedure_code,omitempty" db:"procedure_code"`
	Type            RuleType       `json:"type" db:"type"`
	Severity        AlertSeverity  `json:"severity" db:"severity"`
	Reason          string         `json:"reason" db:"reason"`
	Source          string         `json:"source" db:"source"`
	MatchedKeywords pq.StringArray `json:"matched_keywords" db:"matched_keywords"`
	IsPermanent     bool           `json:"is_permanent" db:"is_permanent"`
	ExpiresAt       *time.Time     `json:"expires_at,omitempty" db:"expires_at"`
	ReviewDate      *time.Time     `json:"review_date,omitempty" db:"review_date"`
	IsOverridden    bool           `json:"is_overridden" db:"is_overridden"`
	OverrideReason  string         `json:"override_reason,omitempty" db:"override_reason"`
	OverriddenAt    *time.Time     `json:"overridden_at,omitempty" db:"overridden_at"`
	OverriddenBy    *uuid.UUID     `json:"overridden_by,omitempty" db:"overridden_by"`
	IsActive        bool           `json:"is_active" db:"is_active"`
	DeactivateNote  string         `json:"deactivate_note,omitempty" db:"deactivate_note"`
}

// OverrideRequest documents a provider decision to proceed despite a
// non-absolute contraindication.
type OverrideRequest struct {
	Reason                 string   `json:"reason" binding:"required"`
	RiskAcknowledged       bool     `json:"risk_acknowledged"`
	PatientConsent         bool     `json:"patient_consent"`
	ConsideredAlternatives []string `json:"considered_alternatives,omitempty"`
}

// DeactivateRequest retires a finding whose underlying condition resolved.
type DeactivateRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AddContraindicationRequest creates a manually authored finding.
type AddContraindicationRequest struct {
	ProcedureName string        `json:"procedure_name" binding:"required"`
	ProcedureCode string        `json:"procedure_code"`
	Type          RuleType      `json:"type" binding:"required,ruletype"`
	Severity      AlertSeverity `json:"severity" binding:"required,severity"`
	Reason        string        `json:"reason" binding:"required"`
	IsPermanent   bool          `json:"is_permanent"`
	ExpiresAt     *time.Time    `json:"expires_at"`
}

// SafetyCheckRequest asks whether a procedure is safe for a patient.
type SafetyCheckRequest struct {
	EncounterID    *uuid.UUID     `json:"encounter_id"`
	ProcedureName  string         `json:"procedure_name" binding:"required"`
	ProcedureCode  string         `json:"procedure_code"`
	ChiefComplaint string         `json:"chief_complaint"`
	ClinicalNotes  string         `json:"clinical_notes"`
	Overrides      ChartOverrides `json:"overrides"`
}

// SafetyStatus is the aggregate outcome of a contraindication check.
type SafetyStatus string

const (
	SafetyStatusAbsolute   SafetyStatus = "ABSOLUTE"
	SafetyStatusRelative   SafetyStatus = "RELATIVE"
	SafetyStatusPrecaution SafetyStatus = "PRECAUTION"
	SafetyStatusClear      SafetyStatus = "CLEAR"
)

// FiredRule is one clinical rule that matched during a check.
type FiredRule struct {
	Rule            ClinicalRule `json:"rule"`
	MatchedKeywords []string     `json:"matched_keywords"`
	MatchSource     string       `json:"match_source"`
}

// RedFlagFinding is one red flag raised from raw encounter text.
type RedFlagFinding struct {
	Flag            RedFlag  `json:"flag"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// SafetyCheckResult is the full outcome of checkContraindications.
type SafetyCheckResult struct {
	ProcedureName    string                     `json:"procedure_name"`
	ProcedureCode    string                     `json:"procedure_code,omitempty"`
	Status           SafetyStatus               `json:"safety_status"`
	CanProceed       bool                       `json:"can_proceed"`
	FiredRules       []FiredRule                `json:"fired_rules"`
	RedFlags         []RedFlagFinding           `json:"red_flags"`
	ExistingFindings []*ContraindicationFinding `json:"existing_findings,omitempty"`
	NewFindings      []*ContraindicationFinding `json:"new_findings,omitempty"`
	AlertsCreated    []*ClinicalAlert           `json:"alerts_created,omitempty"`
	AdvisoryNotes    []string                   `json:"advisory_notes,omitempty"`
	KnowledgeVersion string                     `json:"knowledge_version"`
}
