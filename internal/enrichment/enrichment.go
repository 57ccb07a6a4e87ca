// Package enrichment wraps the optional generative text service that can
// augment rule-based output. The contract is fail-soft: every failure
// degrades to "no enrichment" and the caller continues with rule-based
// results only. Enrichment is advisory and may never remove or weaken a
// rule-based finding.
package enrichment

import (
	"context"
)

// Suggestion is one diagnosis candidate proposed by the external model.
type Suggestion struct {
	Code       string `json:"code"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// Caution is an additional advisory contraindication note. Cautions are
// merged as advisory text only; they never change a computed safety status.
type Caution struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// CaseContext is the de-identified clinical summary sent to the service.
type CaseContext struct {
	ChiefComplaint string   `json:"chief_complaint"`
	Conditions     []string `json:"conditions"`
	Medications    []string `json:"medications"`
	Age            int      `json:"age"`
	ProcedureName  string   `json:"procedure_name,omitempty"`
	ConditionCode  string   `json:"condition_code,omitempty"`
}

// Enricher is the capability interface for external enrichment. A nil-safe
// Noop implementation backs environments without the service.
type Enricher interface {
	SuggestDiagnoses(ctx context.Context, cc CaseContext) ([]Suggestion, error)
	ExtraContraindications(ctx context.Context, cc CaseContext) ([]Caution, error)
	RefineTreatment(ctx context.Context, cc CaseContext, plan string) (string, error)
	RefineNarrative(ctx context.Context, cc CaseContext, narrative string) (string, error)
}

// Noop satisfies Enricher and always returns empty results.
type Noop struct{}

func (Noop) SuggestDiagnoses(context.Context, CaseContext) ([]Suggestion, error) {
	return nil, nil
}

func (Noop) ExtraContraindications(context.Context, CaseContext) ([]Caution, error) {
	return nil, nil
}

func (Noop) RefineTreatment(_ context.Context, _ CaseContext, plan string) (string, error) {
	return plan, nil
}

func (Noop) RefineNarrative(_ context.Context, _ CaseContext, narrative string) (string, error) {
	return narrative, nil
}
