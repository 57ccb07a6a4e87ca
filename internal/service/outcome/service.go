// Package outcome predicts treatment outcomes from condition baselines,
// patient factors and the practice's own historical results, and manages
// the prediction accept/reject/record workflow.
package outcome

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/cds-engine/internal/enrichment"
	"github.com/jwalitptl/cds-engine/internal/extractor"
	"github.com/jwalitptl/cds-engine/internal/knowledge"
	"github.com/jwalitptl/cds-engine/internal/model"
	"github.com/jwalitptl/cds-engine/internal/repository"
	"github.com/jwalitptl/cds-engine/internal/service/audit"
	apperrors "github.com/jwalitptl/cds-engine/pkg/errors"
	"github.com/jwalitptl/cds-engine/pkg/metrics"
)

// AgeBandYears bounds the similar-case age filter.
const AgeBandYears = 10

type Service struct {
	catalog     *knowledge.Catalog
	patients    repository.PatientRepository
	predictions repository.PredictionRepository
	cases       repository.CaseOutcomeRepository
	alerts      repository.AlertRepository
	outbox      repository.OutboxRepository
	enricher    enrichment.Enricher
	auditor     *audit.Service
	metrics     *metrics.Metrics

	enrichTimeout time.Duration
}

func NewService(
	catalog *knowledge.Catalog,
	patients repository.PatientRepository,
	predictions repository.PredictionRepository,
	cases repository.CaseOutcomeRepository,
	alerts repository.AlertRepository,
	outbox repository.OutboxRepository,
	enricher enrichment.Enricher,
	auditor *audit.Service,
	m *metrics.Metrics,
	enrichTimeout time.Duration,
) *Service {
	if enricher == nil {
		enricher = enrichment.Noop{}
	}
	return &Service{
		catalog:       catalog,
		patients:      patients,
		predictions:   predictions,
		cases:         cases,
		alerts:        alerts,
		outbox:        outbox,
		enricher:      enricher,
		auditor:       auditor,
		metrics:       m,
		enrichTimeout: enrichTimeout,
	}
}

// Predict produces a persisted pending outcome prediction for one patient
// and condition.
func (s *Service) Predict(ctx context.Context, orgID, userID, patientID uuid.UUID, req *model.PredictOutcomeRequest) (*model.OutcomePrediction, error) {
	start := time.Now()
	defer func() {
		s.metrics.EngineLatency.WithLabelValues("predict_outcome").Observe(time.Since(start).Seconds())
	}()

	chart, err := s.patients.Get(ctx, orgID, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient chart: %w", err)
	}

	age := chart.Age(time.Now())
	duration := classifyRequestDuration(req)
	baseline := s.catalog.BaselineFor(req.ConditionCode)

	history, err := s.loadHistory(ctx, orgID, baseline.CodePrefix, age, duration)
	if err != nil {
		return nil, err
	}

	out := predict(s.catalog, predictionInput{
		Code:          req.ConditionCode,
		Duration:      duration,
		Age:           age,
		RiskFactors:   req.RiskFactors,
		Comorbidities: req.Comorbidities,
		History:       history,
	})

	approach := "Manual therapy with graded activity"
	if protocol, ok := s.catalog.ProtocolFor(req.ConditionCode); ok {
		approach = strings.Join(protocol.PrimaryTechniques, ", ")
	}
	approach, explanation := s.refineNarratives(ctx, chart, req, approach, out.Explanation)

	statsJSON, err := json.Marshal(out.Stats)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal similar case stats: %w", err)
	}

	now := time.Now()
	pred := &model.OutcomePrediction{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID:       orgID,
		PatientID:            patientID,
		EncounterID:          req.EncounterID,
		ConditionCode:        req.ConditionCode,
		ConditionDescription: out.Baseline.Condition,
		TreatmentApproach:    approach,
		PredictedOutcome:     out.Baseline.Description,
		Confidence:           out.Confidence,
		ExpectedImprovement:  out.Improvement,
		ChronicityRisk:       out.ChronicityRisk,
		TreatmentResponse:    out.Response,
		Timeline:             out.Timeline,
		FavorableFactors:     out.Favorable,
		UnfavorableFactors:   out.Unfavorable,
		NeutralFactors:       out.Neutral,
		Explanation:          explanation,
		ExpectationPoints:    out.ExpectationPoints,
		SimilarCases:         statsJSON,
		Status:               model.PredictionPending,
	}
	if err := s.predictions.Create(ctx, pred); err != nil {
		return nil, fmt.Errorf("failed to persist prediction: %w", err)
	}

	if out.ChronicityRisk > chronicityAlertCutoff {
		if err := s.raiseChronicityAlert(ctx, pred); err != nil {
			log.Warn().Err(err).Str("prediction_id", pred.ID.String()).Msg("failed to raise chronicity alert")
		}
	}

	s.auditor.Log(ctx, userID, orgID, model.AuditActionCreate, model.AuditEntityPrediction, pred.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{
			"condition_code":       req.ConditionCode,
			"expected_improvement": out.Improvement,
			"chronicity_risk":      out.ChronicityRisk,
			"knowledge_version":    s.catalog.Version,
		},
	})

	return pred, nil
}

// Accept marks a pending prediction accepted.
func (s *Service) Accept(ctx context.Context, orgID, userID, predictionID uuid.UUID) (*model.OutcomePrediction, error) {
	pred, err := s.predictions.Get(ctx, orgID, predictionID)
	if err != nil {
		return nil, err
	}
	if pred.Status != model.PredictionPending {
		return nil, apperrors.NewInvalidState(fmt.Sprintf("prediction is already %s", pred.Status))
	}

	pred.Status = model.PredictionAccepted
	pred.UpdatedAt = time.Now()
	if err := s.predictions.Update(ctx, pred); err != nil {
		return nil, fmt.Errorf("failed to update prediction: %w", err)
	}

	s.auditor.Log(ctx, userID, orgID, model.AuditActionAccept, model.AuditEntityPrediction, pred.ID, nil)
	return pred, nil
}

// Reject terminally rejects a pending prediction with a documented reason.
func (s *Service) Reject(ctx context.Context, orgID, userID, predictionID uuid.UUID, req *model.RejectPredictionRequest) (*model.OutcomePrediction, error) {
	if req.Reason == "" {
		return nil, apperrors.NewValidation("rejection reason is required")
	}

	pred, err := s.predictions.Get(ctx, orgID, predictionID)
	if err != nil {
		return nil, err
	}
	if pred.Status != model.PredictionPending {
		return nil, apperrors.NewInvalidState(fmt.Sprintf("prediction is already %s", pred.Status))
	}

	pred.Status = model.PredictionRejected
	pred.RejectionReason = req.Reason
	pred.UpdatedAt = time.Now()
	if err := s.predictions.Update(ctx, pred); err != nil {
		return nil, fmt.Errorf("failed to update prediction: %w", err)
	}

	s.auditor.Log(ctx, userID, orgID, model.AuditActionReject, model.AuditEntityPrediction, pred.ID, &audit.LogOptions{
		Changes: map[string]interface{}{"reason": req.Reason},
	})
	return pred, nil
}

// RecordOutcome stores the real-world result for a prediction. The actual
// outcome is write-once; the recorded case feeds future empirical blends.
func (s *Service) RecordOutcome(ctx context.Context, orgID, userID, predictionID uuid.UUID, req *model.RecordOutcomeRequest) (*model.OutcomePrediction, error) {
	if req.ActualImprovement < 0 || req.ActualImprovement > 100 {
		return nil, apperrors.NewValidation("actual improvement must be between 0 and 100")
	}

	pred, err := s.predictions.Get(ctx, orgID, predictionID)
	if err != nil {
		return nil, err
	}
	if pred.OutcomeRecordedAt != nil {
		return nil, apperrors.NewInvalidState("an actual outcome is already recorded for this prediction")
	}

	now := time.Now()
	actual := req.ActualImprovement
	diff := actual - pred.ExpectedImprovement
	if diff < 0 {
		diff = -diff
	}
	accurate := diff <= accuracyTolerancePoints

	pred.ActualImprovement = &actual
	pred.ActualOutcomeNote = req.Note
	pred.WasAccurate = &accurate
	pred.OutcomeRecordedAt = &now
	pred.UpdatedAt = now
	if err := s.predictions.Update(ctx, pred); err != nil {
		return nil, fmt.Errorf("failed to update prediction: %w", err)
	}

	if err := s.appendCase(ctx, orgID, pred, actual); err != nil {
		log.Warn().Err(err).Str("prediction_id", pred.ID.String()).Msg("failed to append case outcome")
	}

	s.metrics.PredictionAccuracy.WithLabelValues(strconv.FormatBool(accurate)).Inc()
	s.writeOutbox(ctx, model.EventOutcomeRecorded, pred)
	s.auditor.Log(ctx, userID, orgID, model.AuditActionUpdate, model.AuditEntityPrediction, pred.ID, &audit.LogOptions{
		Changes: map[string]interface{}{
			"actual_improvement": actual,
			"was_accurate":       accurate,
		},
	})

	return pred, nil
}

// ListForPatient returns every prediction recorded for the patient.
func (s *Service) ListForPatient(ctx context.Context, orgID, patientID uuid.UUID) ([]*model.OutcomePrediction, error) {
	return s.predictions.ListForPatient(ctx, orgID, patientID)
}

// loadHistory finds similar treated cases for the empirical blend. The
// filtered query runs first; with no filtered matches the prefix alone is
// retried so sparse practices still benefit from their history.
func (s *Service) loadHistory(ctx context.Context, orgID uuid.UUID, prefix string, age int, duration extractor.DurationClass) (*historyStats, error) {
	filters := repository.CaseFilters{
		AgeCenter:     age,
		AgeBand:       AgeBandYears,
		DurationClass: string(duration),
	}
	cases, err := s.cases.ListByConditionPrefix(ctx, orgID, prefix, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load similar cases: %w", err)
	}
	filtered := len(cases) > 0
	if !filtered {
		cases, err = s.cases.ListByConditionPrefix(ctx, orgID, prefix, repository.CaseFilters{})
		if err != nil {
			return nil, fmt.Errorf("failed to load similar cases: %w", err)
		}
	}
	if len(cases) == 0 {
		return nil, nil
	}

	sum := 0
	for _, c := range cases {
		sum += c.ActualImprovement
	}
	return &historyStats{
		CaseCount:       len(cases),
		AvgImprovement:  float64(sum) / float64(len(cases)),
		AgeBandApplied:  filtered,
		DurationMatched: filtered,
	}, nil
}

func (s *Service) appendCase(ctx context.Context, orgID uuid.UUID, pred *model.OutcomePrediction, actual int) error {
	chart, err := s.patients.Get(ctx, orgID, pred.PatientID)
	if err != nil {
		return err
	}

	var stats model.SimilarCaseStats
	if len(pred.SimilarCases) > 0 {
		// Lenient: a stats snapshot that fails to parse costs only the
		// duration class on the recorded case.
		_ = json.Unmarshal(pred.SimilarCases, &stats)
	}

	now := time.Now()
	c := &model.CaseOutcome{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID:    orgID,
		ConditionCode:     pred.ConditionCode,
		AgeAtOnset:        chart.Age(pred.CreatedAt),
		DurationClass:     stats.DurationClass,
		ActualImprovement: actual,
	}
	return s.cases.Create(ctx, c)
}

func (s *Service) raiseChronicityAlert(ctx context.Context, pred *model.OutcomePrediction) error {
	now := time.Now()
	alert := &model.ClinicalAlert{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: pred.OrganizationID,
		PatientID:      pred.PatientID,
		Type:           model.AlertTypeOutcome,
		Severity:       model.SeverityModerate,
		Status:         model.AlertStatusActive,
		Message:        fmt.Sprintf("Elevated chronicity risk (%d%%) for %s", pred.ChronicityRisk, pred.ConditionDescription),
		Recommendation: "Prioritize early intervention and track progress against the predicted timeline",
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return err
	}
	s.metrics.AlertsCreated.WithLabelValues(string(alert.Type)).Inc()
	s.writeOutbox(ctx, model.EventAlertCreated, alert)
	return nil
}

// refineNarratives gives the enrichment service one chance to polish the
// patient-facing text. Failures keep the rule-generated narrative.
func (s *Service) refineNarratives(ctx context.Context, chart *model.PatientChart, req *model.PredictOutcomeRequest, approach, explanation string) (string, string) {
	ectx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
	defer cancel()

	cc := enrichment.CaseContext{
		Conditions:    chart.Conditions,
		Medications:   chart.Medications,
		Age:           chart.Age(time.Now()),
		ConditionCode: req.ConditionCode,
	}
	if refined, err := s.enricher.RefineTreatment(ectx, cc, approach); err == nil && refined != "" {
		approach = refined
	} else if err != nil {
		log.Debug().Err(err).Msg("treatment enrichment unavailable, keeping rule-based plan")
	}
	if refined, err := s.enricher.RefineNarrative(ectx, cc, explanation); err == nil && refined != "" {
		explanation = refined
	} else if err != nil {
		log.Debug().Err(err).Msg("narrative enrichment unavailable, keeping rule-based text")
	}
	return approach, explanation
}

func (s *Service) writeOutbox(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal outbox payload")
		return
	}
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   body,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to append outbox event")
	}
}

// classifyRequestDuration honors an explicit duration class in the request
// and otherwise classifies the free-text duration and notes.
func classifyRequestDuration(req *model.PredictOutcomeRequest) extractor.DurationClass {
	switch extractor.DurationClass(strings.ToLower(strings.TrimSpace(req.SymptomDuration))) {
	case extractor.DurationAcute:
		return extractor.DurationAcute
	case extractor.DurationSubacute:
		return extractor.DurationSubacute
	case extractor.DurationChronic:
		return extractor.DurationChronic
	}
	text := strings.ToLower(strings.TrimSpace(req.SymptomDuration + " " + req.ClinicalNotes))
	return extractor.ClassifyDuration(text)
}
