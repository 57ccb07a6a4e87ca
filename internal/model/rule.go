package model

// RuleType classifies how strongly a clinical rule restricts a procedure.
type RuleType string

const (
	RuleTypeAbsolute   RuleType = "ABSOLUTE"
	RuleTypeRelative   RuleType = "RELATIVE"
	RuleTypePrecaution RuleType = "PRECAUTION"
)

// AlertSeverity orders findings from most to least urgent.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "CRITICAL"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityModerate AlertSeverity = "MODERATE"
	SeverityLow      AlertSeverity = "LOW"
)

// SeverityRank returns the sort rank of a severity, most urgent first.
// Unknown severities sort last.
func SeverityRank(s AlertSeverity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// EvidenceSource selects which part of the extracted evidence a rule
// matches against. Adding a source requires extending the matcher switch
// in the safety service, which the compiler checks via the default branch
// test there.
type EvidenceSource string

const (
	SourceCondition  EvidenceSource = "condition"
	SourceMedication EvidenceSource = "medication"
	SourceAge        EvidenceSource = "age"
	SourceSurgery    EvidenceSource = "surgery"
	SourceTrauma     EvidenceSource = "trauma"
	SourceRedFlag    EvidenceSource = "red_flag"
	SourceGeneral    EvidenceSource = "general"
)

// ProcedureWildcard matches every manual therapy procedure.
const ProcedureWildcard = "All Manual Therapies"

// ClinicalRule is an immutable contraindication rule authored by domain
// experts. The catalog is versioned as a whole and never mutated per patient.
type ClinicalRule struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	Type                  RuleType       `json:"type"`
	Severity              AlertSeverity  `json:"severity"`
	AffectedProcedures    []string       `json:"affected_procedures"`
	Source                EvidenceSource `json:"source"`
	Keywords              []string       `json:"keywords"`
	Reason                string         `json:"reason"`
	Recommendation        string         `json:"recommendation"`
	Overridable           bool           `json:"overridable"`
	DocumentationRequired bool           `json:"documentation_required"`
	ReviewPeriodDays      int            `json:"review_period_days,omitempty"`
}

// RedFlag is a keyword-triggered signal of potentially serious underlying
// pathology. Same shape as a red_flag rule but checked against raw text only.
type RedFlag struct {
	Type           string        `json:"type"`
	Severity       AlertSeverity `json:"severity"`
	Keywords       []string      `json:"keywords"`
	Message        string        `json:"message"`
	Recommendation string        `json:"recommendation"`
}

// CatalogEntry is a diagnosis code the scorer can suggest.
type CatalogEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	BodyRegion  string `json:"body_region"`
	Common      bool   `json:"common"`
}

// TreatmentProtocol describes the expected course of care for a condition,
// looked up by diagnosis code prefix.
type TreatmentProtocol struct {
	Condition         string   `json:"condition"`
	Codes             []string `json:"codes"`
	PrimaryTechniques []string `json:"primary_techniques"`
	AdjunctTherapies  []string `json:"adjunct_therapies"`
	Exercises         []string `json:"exercises"`
	ExpectedOutcome   string   `json:"expected_outcome"`
	TypicalDuration   string   `json:"typical_duration"`
	Prognosis         string   `json:"prognosis"`
	EvidenceLevel     string   `json:"evidence_level"`
	Alternatives      []string `json:"alternatives"`
	Contraindications []string `json:"contraindications"`
}

// OutcomeBaseline is a prognosis starting point for a diagnosis code prefix.
type OutcomeBaseline struct {
	CodePrefix          string `json:"code_prefix"`
	Condition           string `json:"condition"`
	ExpectedImprovement int    `json:"expected_improvement"`
	TimelineValue       int    `json:"timeline_value"`
	TimelineUnit        string `json:"timeline_unit"`
	Description         string `json:"description"`
}

// VisitFrequency is the recommended schedule for an acuity class.
type VisitFrequency struct {
	Acuity         string `json:"acuity"`
	VisitsPerWeek  string `json:"visits_per_week"`
	TypicalCourse  string `json:"typical_course"`
	ReassessVisits int    `json:"reassess_visits"`
}

// Guideline is a published care guideline reference served read-only.
type Guideline struct {
	Name      string   `json:"name"`
	Condition string   `json:"condition"`
	Summary   string   `json:"summary"`
	Citations []string `json:"citations"`
}
