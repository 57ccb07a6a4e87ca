package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/lib/pq"
)

// TreatmentResponse buckets expected improvement into patient-facing bands.
type TreatmentResponse string

const (
	ResponseExcellent TreatmentResponse = "EXCELLENT"
	ResponseGood      TreatmentResponse = "GOOD"
	ResponseModerate  TreatmentResponse = "MODERATE"
	ResponsePoor      TreatmentResponse = "POOR"
)

// PredictionStatus mirrors the suggestion workflow for predictions.
type PredictionStatus string

const (
	PredictionPending  PredictionStatus = "pending"
	PredictionAccepted PredictionStatus = "accepted"
	PredictionRejected PredictionStatus = "rejected"
)

// SimilarCaseStats snapshots the empirical evidence used by a prediction.
type SimilarCaseStats struct {
	CaseCount        int     `json:"case_count"`
	AvgImprovement   float64 `json:"avg_improvement"`
	AgeBandApplied   bool    `json:"age_band_applied"`
	DurationMatched  bool    `json:"duration_matched"`
	DurationClass    string  `json:"duration_class"`
	BlendWeightRules float64 `json:"blend_weight_rules"`
}

// OutcomePrediction is a persisted prognosis for one patient and condition.
// The actual-outcome fields are write-once.
type OutcomePrediction struct {
	Base
	OrganizationID       uuid.UUID         `json:"organization_id" db:"organization_id"`
	PatientID            uuid.UUID         `json:"patient_id" db:"patient_id"`
	EncounterID          *uuid.UUID        `json:"encounter_id,omitempty" db:"encounter_id"`
	ConditionCode        string            `json:"condition_code" db:"condition_code"`
	ConditionDescription string            `json:"condition_description" db:"condition_description"`
	TreatmentApproach    string            `json:"treatment_approach" db:"treatment_approach"`
	PredictedOutcome     string            `json:"predicted_outcome" db:"predicted_outcome"`
	Confidence           int               `json:"confidence" db:"confidence"`
	ExpectedImprovement  int               `json:"expected_improvement" db:"expected_improvement"`
	ChronicityRisk       int               `json:"chronicity_risk" db:"chronicity_risk"`
	TreatmentResponse    TreatmentResponse `json:"treatment_response" db:"treatment_response"`
	Timeline             string            `json:"timeline" db:"timeline"`
	FavorableFactors     pq.StringArray    `json:"favorable_factors" db:"favorable_factors"`
	UnfavorableFactors   pq.StringArray    `json:"unfavorable_factors" db:"unfavorable_factors"`
	NeutralFactors       pq.StringArray    `json:"neutral_factors" db:"neutral_factors"`
	Explanation          string            `json:"explanation" db:"explanation"`
	ExpectationPoints    pq.StringArray    `json:"expectation_points" db:"expectation_points"`
	SimilarCases         json.RawMessage   `json:"similar_cases" db:"similar_cases"`
	Status               PredictionStatus  `json:"status" db:"status"`
	RejectionReason      string            `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ActualImprovement    *int              `json:"actual_improvement,omitempty" db:"actual_improvement"`
	ActualOutcomeNote    string            `json:"actual_outcome_note,omitempty" db:"actual_outcome_note"`
	WasAccurate          *bool             `json:"was_accurate,omitempty" db:"was_accurate"`
	OutcomeRecordedAt    *time.Time        `json:"outcome_recorded_at,omitempty" db:"outcome_recorded_at"`
}

// CaseOutcome is one historical treated case feeding the empirical blend.
type CaseOutcome struct {
	Base
	OrganizationID    uuid.UUID `json:"organization_id" db:"organization_id"`
	ConditionCode     string    `json:"condition_code" db:"condition_code"`
	AgeAtOnset        int       `json:"age_at_onset" db:"age_at_onset"`
	DurationClass     string    `json:"duration_class" db:"duration_class"`
	ActualImprovement int       `json:"actual_improvement" db:"actual_improvement"`
}

// PredictOutcomeRequest carries the prediction inputs and overrides.
type PredictOutcomeRequest struct {
	EncounterID     *uuid.UUID `json:"encounter_id"`
	ConditionCode   string     `json:"condition_code" binding:"required"`
	SymptomDuration string     `json:"symptom_duration"`
	ClinicalNotes   string     `json:"clinical_notes"`
	RiskFactors     []string   `json:"risk_factors"`
	Comorbidities   []string   `json:"comorbidities"`
}

// RejectPredictionRequest terminally rejects a pending prediction.
type RejectPredictionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RecordOutcomeRequest records the real-world result for a prediction.
type RecordOutcomeRequest struct {
	ActualImprovement int    `json:"actual_improvement" binding:"min=0,max=100"`
	Note              string `json:"note"`
}
