// Package diagnosis scores the diagnosis catalog against extracted
// encounter evidence and manages the suggestion accept/reject workflow.
package diagnosis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/cds-engine/internal/enrichment"
	"github.com/jwalitptl/cds-engine/internal/extractor"
	"github.com/jwalitptl/cds-engine/internal/knowledge"
	"github.com/jwalitptl/cds-engine/internal/model"
	"github.com/jwalitptl/cds-engine/internal/repository"
	"github.com/jwalitptl/cds-engine/internal/service/audit"
	"github.com/jwalitptl/cds-engine/internal/service/safety"
	apperrors "github.com/jwalitptl/cds-engine/pkg/errors"
	"github.com/jwalitptl/cds-engine/pkg/metrics"
)

const (
	DefaultSuggestionLimit = 10
	MaxSuggestionLimit     = 20
)

// Suggestion sources persisted on each row.
const (
	sourceRules    = "rules"
	sourceExternal = "external"
	sourceHybrid   = "hybrid"
)

type Service struct {
	catalog     *knowledge.Catalog
	patients    repository.PatientRepository
	suggestions repository.SuggestionRepository
	diagnoses   repository.DiagnosisRepository
	enricher    enrichment.Enricher
	auditor     *audit.Service
	metrics     *metrics.Metrics

	enrichTimeout time.Duration
}

func NewService(
	catalog *knowledge.Catalog,
	patients repository.PatientRepository,
	suggestions repository.SuggestionRepository,
	diagnoses repository.DiagnosisRepository,
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
		suggestions:   suggestions,
		diagnoses:     diagnoses,
		enricher:      enricher,
		auditor:       auditor,
		metrics:       m,
		enrichTimeout: enrichTimeout,
	}
}

// Suggest scores the diagnosis catalog for a patient encounter, merges in
// optional external suggestions and persists the result as pending
// suggestions.
func (s *Service) Suggest(ctx context.Context, orgID, userID, patientID uuid.UUID, req *model.SuggestDiagnosisRequest) ([]*model.DiagnosisSuggestion, error) {
	start := time.Now()
	defer func() {
		s.metrics.EngineLatency.WithLabelValues("suggest_diagnoses").Observe(time.Since(start).Seconds())
	}()

	chart, err := s.patients.Get(ctx, orgID, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient chart: %w", err)
	}

	ev := extractor.Extract(extractor.Input{
		ChiefComplaint: req.ChiefComplaint,
		Subjective:     req.Subjective,
		Objective:      req.Objective,
		ClinicalNotes:  req.ClinicalNotes,
		Conditions:     chart.Conditions,
		Medications:    chart.Medications,
		Allergies:      chart.Allergies,
		Surgeries:      chart.Surgeries,
		Traumas:        chart.Traumas,
		Age:            chart.Age(time.Now()),
	})

	scored := scoreCatalog(s.catalog, req.ChiefComplaint, &ev)
	hasRedFlags := len(safety.MatchRedFlags(s.catalog.RedFlags, &ev)) > 0

	scored = s.mergeExternal(ctx, scored, chart, req.ChiefComplaint, &ev)

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		limit = MaxSuggestionLimit
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	now := time.Now()
	result := make([]*model.DiagnosisSuggestion, 0, len(scored))
	for _, sc := range scored {
		sug := &model.DiagnosisSuggestion{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			OrganizationID:     orgID,
			PatientID:          patientID,
			EncounterID:        req.EncounterID,
			Code:               sc.Entry.Code,
			Description:        sc.Entry.Description,
			Confidence:         sc.Confidence,
			Reasoning:          sc.Reasoning,
			SupportingEvidence: sc.Evidence,
			HasRedFlags:        hasRedFlags,
			EvidenceLevel:      evidenceLevel(sc.Entry.Code, s.catalog),
			SuggestionSource:   sc.Source,
			Status:             model.SuggestionPending,
		}
		if err := s.suggestions.Create(ctx, sug); err != nil {
			return nil, fmt.Errorf("failed to persist suggestion: %w", err)
		}
		result = append(result, sug)
	}

	s.metrics.SuggestionsScored.Observe(float64(len(result)))
	s.auditor.Log(ctx, userID, orgID, model.AuditActionCreate, model.AuditEntitySuggestion, patientID, &audit.LogOptions{
		Metadata: map[string]interface{}{
			"suggestion_count":  len(result),
			"has_red_flags":     hasRedFlags,
			"knowledge_version": s.catalog.Version,
		},
	})

	return result, nil
}

// Accept converts a pending suggestion into a permanent diagnosis record.
func (s *Service) Accept(ctx context.Context, orgID, userID, suggestionID uuid.UUID, req *model.AcceptSuggestionRequest) (*model.Diagnosis, error) {
	sug, err := s.suggestions.Get(ctx, orgID, suggestionID)
	if err != nil {
		return nil, err
	}
	if sug.Status != model.SuggestionPending {
		return nil, apperrors.NewInvalidState(fmt.Sprintf("suggestion is already %s", sug.Status))
	}

	seq, err := s.diagnoses.NextSequence(ctx, orgID, sug.PatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate diagnosis sequence: %w", err)
	}
	if req.IsPrimary {
		if err := s.diagnoses.ClearPrimary(ctx, orgID, sug.PatientID); err != nil {
			return nil, fmt.Errorf("failed to clear primary diagnosis: %w", err)
		}
	}

	now := time.Now()
	diag := &model.Diagnosis{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: orgID,
		PatientID:      sug.PatientID,
		EncounterID:    sug.EncounterID,
		Code:           sug.Code,
		Description:    sug.Description,
		Sequence:       seq,
		IsPrimary:      req.IsPrimary,
	}
	if err := s.diagnoses.Create(ctx, diag); err != nil {
		return nil, fmt.Errorf("failed to create diagnosis: %w", err)
	}

	sug.Status = model.SuggestionAccepted
	sug.DiagnosisID = &diag.ID
	sug.DecidedAt = &now
	sug.DecidedBy = &userID
	sug.UpdatedAt = now
	if err := s.suggestions.Update(ctx, sug); err != nil {
		return nil, fmt.Errorf("failed to update suggestion: %w", err)
	}

	s.auditor.Log(ctx, userID, orgID, model.AuditActionAccept, model.AuditEntitySuggestion, sug.ID, &audit.LogOptions{
		Changes: map[string]interface{}{
			"diagnosis_id": diag.ID,
			"code":         diag.Code,
			"is_primary":   diag.IsPrimary,
		},
	})

	return diag, nil
}

// Reject terminally rejects a pending suggestion with a documented reason.
func (s *Service) Reject(ctx context.Context, orgID, userID, suggestionID uuid.UUID, req *model.RejectSuggestionRequest) (*model.DiagnosisSuggestion, error) {
	if req.Reason == "" {
		return nil, apperrors.NewValidation("rejection reason is required")
	}

	sug, err := s.suggestions.Get(ctx, orgID, suggestionID)
	if err != nil {
		return nil, err
	}
	if sug.Status != model.SuggestionPending {
		return nil, apperrors.NewInvalidState(fmt.Sprintf("suggestion is already %s", sug.Status))
	}

	now := time.Now()
	sug.Status = model.SuggestionRejected
	sug.RejectionReason = req.Reason
	sug.DecidedAt = &now
	sug.DecidedBy = &userID
	sug.UpdatedAt = now
	if err := s.suggestions.Update(ctx, sug); err != nil {
		return nil, fmt.Errorf("failed to update suggestion: %w", err)
	}

	s.auditor.Log(ctx, userID, orgID, model.AuditActionReject, model.AuditEntitySuggestion, sug.ID, &audit.LogOptions{
		Changes: map[string]interface{}{"reason": req.Reason},
	})

	return sug, nil
}

// ListForPatient returns every suggestion recorded for the patient.
func (s *Service) ListForPatient(ctx context.Context, orgID, patientID uuid.UUID) ([]*model.DiagnosisSuggestion, error) {
	return s.suggestions.ListForPatient(ctx, orgID, patientID)
}

// mergeExternal folds external model suggestions into the rule-scored set.
// On any enrichment failure the rule-scored set is returned untouched.
func (s *Service) mergeExternal(ctx context.Context, scored []scoredEntry, chart *model.PatientChart, complaint string, ev *extractor.Evidence) []scoredEntry {
	ectx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
	defer cancel()

	external, err := s.enricher.SuggestDiagnoses(ectx, enrichment.CaseContext{
		ChiefComplaint: complaint,
		Conditions:     ev.Conditions,
		Medications:    ev.Medications,
		Age:            ev.Age,
	})
	if err != nil {
		log.Debug().Err(err).Msg("diagnosis enrichment unavailable, continuing rule-based")
		return scored
	}
	if len(external) == 0 {
		return scored
	}

	byCode := make(map[string]int, len(scored))
	for i := range scored {
		byCode[scored[i].Entry.Code] = i
	}

	for _, ext := range external {
		conf := ext.Confidence
		if conf > maxConfidence {
			conf = maxConfidence
		}
		if conf < 0 {
			conf = 0
		}
		if i, ok := byCode[ext.Code]; ok {
			// Same code from both sources: keep the higher confidence and
			// prefer the external reasoning text.
			if conf > scored[i].Confidence {
				scored[i].Confidence = conf
			}
			if ext.Reasoning != "" {
				scored[i].Reasoning = ext.Reasoning
			}
			scored[i].Source = sourceHybrid
			continue
		}
		if conf <= discardThreshold {
			continue
		}
		entry := model.CatalogEntry{Code: ext.Code, Description: ext.Reasoning}
		if known, ok := catalogEntryFor(s.catalog, ext.Code); ok {
			entry = known
		}
		scored = append(scored, scoredEntry{
			Entry:      entry,
			Confidence: conf,
			Reasoning:  ext.Reasoning,
			Source:     sourceExternal,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})
	return scored
}

func catalogEntryFor(cat *knowledge.Catalog, code string) (model.CatalogEntry, bool) {
	for _, e := range cat.Diagnoses {
		if e.Code == code {
			return e, true
		}
	}
	return model.CatalogEntry{}, false
}

// evidenceLevel reports the protocol evidence grade backing a code, if a
// protocol covers it.
func evidenceLevel(code string, cat *knowledge.Catalog) string {
	if p, ok := cat.ProtocolFor(code); ok {
		return p.EvidenceLevel
	}
	return ""
}
