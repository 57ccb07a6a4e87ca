// Package safety evaluates the contraindication rule catalog and red flag
// definitions against a patient chart, persists findings and alerts, and
// runs the override and deactivation workflows.
package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
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

// MinOverrideReasonLen is the shortest acceptable override justification.
const MinOverrideReasonLen = 10

type Service struct {
	catalog  *knowledge.Catalog
	patients repository.PatientRepository
	findings repository.FindingRepository
	alerts   repository.AlertRepository
	outbox   repository.OutboxRepository
	enricher enrichment.Enricher
	auditor  *audit.Service
	metrics  *metrics.Metrics

	enrichTimeout time.Duration
}

func NewService(
	catalog *knowledge.Catalog,
	patients repository.PatientRepository,
	findings repository.FindingRepository,
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
		findings:      findings,
		alerts:        alerts,
		outbox:        outbox,
		enricher:      enricher,
		auditor:       auditor,
		metrics:       m,
		enrichTimeout: enrichTimeout,
	}
}

// Check runs the full contraindication and red flag screen for one
// procedure. High-severity results persist findings and alerts as a side
// effect; the check itself is idempotent against existing active findings.
func (s *Service) Check(ctx context.Context, orgID, userID, patientID uuid.UUID, req *model.SafetyCheckRequest) (*model.SafetyCheckResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.EngineLatency.WithLabelValues("safety_check").Observe(time.Since(start).Seconds())
	}()

	chart, err := s.patients.Get(ctx, orgID, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient chart: %w", err)
	}

	ev := s.buildEvidence(chart, req)

	var fired []model.FiredRule
	for _, rule := range s.catalog.Rules {
		if !ruleApplies(rule, req.ProcedureName) {
			continue
		}
		matched, matchSource, ok := matchRule(rule, &ev, req.ProcedureName)
		if !ok {
			continue
		}
		fired = append(fired, model.FiredRule{
			Rule:            rule,
			MatchedKeywords: matched,
			MatchSource:     matchSource,
		})
		s.metrics.RulesFired.WithLabelValues(rule.ID, string(rule.Severity)).Inc()
	}
	sort.SliceStable(fired, func(i, j int) bool {
		return model.SeverityRank(fired[i].Rule.Severity) < model.SeverityRank(fired[j].Rule.Severity)
	})

	redFlags := MatchRedFlags(s.catalog.RedFlags, &ev)

	existing, err := s.findings.ListForPatient(ctx, orgID, patientID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing findings: %w", err)
	}
	var relevant []*model.ContraindicationFinding
	for _, f := range existing {
		if findingCoversProcedure(f, req.ProcedureName) {
			relevant = append(relevant, f)
		}
	}

	result := &model.SafetyCheckResult{
		ProcedureName:    req.ProcedureName,
		ProcedureCode:    req.ProcedureCode,
		FiredRules:       fired,
		RedFlags:         redFlags,
		ExistingFindings: relevant,
		KnowledgeVersion: s.catalog.Version,
	}
	result.Status = computeStatus(fired, relevant)
	result.CanProceed = result.Status != model.SafetyStatusAbsolute

	if err := s.persistCheckResults(ctx, orgID, patientID, req, result); err != nil {
		return nil, err
	}

	s.appendAdvisories(ctx, chart, req, result)

	s.metrics.SafetyChecks.WithLabelValues(string(result.Status)).Inc()
	s.auditor.Log(ctx, userID, orgID, model.AuditActionCreate, model.AuditEntitySafetyCheck, patientID, &audit.LogOptions{
		Metadata: map[string]interface{}{
			"procedure":         req.ProcedureName,
			"status":            result.Status,
			"rules_fired":       len(fired),
			"red_flags":         len(redFlags),
			"knowledge_version": s.catalog.Version,
		},
	})

	return result, nil
}

// Override documents a provider decision to proceed despite a relative
// contraindication or precaution. Absolute findings can never be overridden.
func (s *Service) Override(ctx context.Context, orgID, userID, findingID uuid.UUID, req *model.OverrideRequest) (*model.ContraindicationFinding, error) {
	finding, err := s.findings.Get(ctx, orgID, findingID)
	if err != nil {
		return nil, err
	}

	if !finding.IsActive {
		return nil, apperrors.NewInvalidState("finding is no longer active")
	}
	if finding.IsOverridden {
		return nil, apperrors.NewInvalidState("finding is already overridden")
	}
	if finding.Type == model.RuleTypeAbsolute {
		return nil, apperrors.NewInvalidState("absolute contraindications cannot be overridden")
	}
	if finding.RuleID != nil {
		if rule, ok := s.catalog.RuleByID(*finding.RuleID); ok && !rule.Overridable {
			return nil, apperrors.NewValidation(fmt.Sprintf("rule %s does not permit overrides", rule.ID))
		}
	}
	if !req.RiskAcknowledged {
		return nil, apperrors.NewValidation("risk acknowledgement is required to override")
	}
	if len(strings.TrimSpace(req.Reason)) < MinOverrideReasonLen {
		return nil, apperrors.NewValidation(fmt.Sprintf("override reason must be at least %d characters", MinOverrideReasonLen))
	}

	now := time.Now()
	finding.IsOverridden = true
	finding.OverrideReason = req.Reason
	finding.OverriddenAt = &now
	finding.OverriddenBy = &userID
	finding.UpdatedAt = now
	if err := s.findings.Update(ctx, finding); err != nil {
		return nil, fmt.Errorf("failed to update finding: %w", err)
	}

	if err := s.resolveAlertsForProcedure(ctx, orgID, finding.PatientID, finding.ProcedureName, "contraindication overridden"); err != nil {
		log.Warn().Err(err).Str("finding_id", finding.ID.String()).Msg("failed to resolve alerts after override")
	}

	s.writeOutbox(ctx, model.EventFindingOverridden, finding)
	s.auditor.Log(ctx, userID, orgID, model.AuditActionOverride, model.AuditEntityFinding, finding.ID, &audit.LogOptions{
		Changes: map[string]interface{}{
			"reason":            req.Reason,
			"risk_acknowledged": req.RiskAcknowledged,
		},
		Metadata: map[string]interface{}{
			"patient_consent":         req.PatientConsent,
			"considered_alternatives": req.ConsideredAlternatives,
		},
	})

	return finding, nil
}

// Add creates a manually authored contraindication finding.
func (s *Service) Add(ctx context.Context, orgID, userID, patientID uuid.UUID, req *model.AddContraindicationRequest) (*model.ContraindicationFinding, error) {
	if _, err := s.patients.Get(ctx, orgID, patientID); err != nil {
		return nil, err
	}

	now := time.Now()
	finding := &model.ContraindicationFinding{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: orgID,
		PatientID:      patientID,
		ProcedureName:  req.ProcedureName,
		ProcedureCode:  req.ProcedureCode,
		Type:           req.Type,
		Severity:       req.Severity,
		Reason:         req.Reason,
		Source:         "manual entry",
		IsPermanent:    req.IsPermanent,
		ExpiresAt:      req.ExpiresAt,
		IsActive:       true,
	}
	if err := s.findings.Create(ctx, finding); err != nil {
		return nil, fmt.Errorf("failed to create finding: %w", err)
	}

	if req.Severity == model.SeverityCritical || req.Severity == model.SeverityHigh {
		alert := s.alertForFinding(finding, req.Reason, "")
		if err := s.alerts.Create(ctx, alert); err != nil {
			return nil, fmt.Errorf("failed to create alert: %w", err)
		}
		s.metrics.AlertsCreated.WithLabelValues(string(alert.Type)).Inc()
		s.writeOutbox(ctx, model.EventAlertCreated, alert)
	}

	s.writeOutbox(ctx, model.EventFindingCreated, finding)
	s.auditor.Log(ctx, userID, orgID, model.AuditActionCreate, model.AuditEntityFinding, finding.ID, &audit.LogOptions{
		Changes: finding,
	})

	return finding, nil
}

// Deactivate retires an active finding whose underlying condition resolved.
// Deactivation is independent of override state.
func (s *Service) Deactivate(ctx context.Context, orgID, userID, findingID uuid.UUID, req *model.DeactivateRequest) (*model.ContraindicationFinding, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, apperrors.NewValidation("deactivation reason is required")
	}

	finding, err := s.findings.Get(ctx, orgID, findingID)
	if err != nil {
		return nil, err
	}
	if !finding.IsActive {
		return nil, apperrors.NewInvalidState("finding is already inactive")
	}

	now := time.Now()
	finding.IsActive = false
	finding.DeactivateNote = req.Reason
	finding.UpdatedAt = now
	if err := s.findings.Update(ctx, finding); err != nil {
		return nil, fmt.Errorf("failed to update finding: %w", err)
	}

	if err := s.resolveAlertsForProcedure(ctx, orgID, finding.PatientID, finding.ProcedureName, "contraindication deactivated"); err != nil {
		log.Warn().Err(err).Str("finding_id", finding.ID.String()).Msg("failed to resolve alerts after deactivation")
	}

	s.auditor.Log(ctx, userID, orgID, model.AuditActionDeactivate, model.AuditEntityFinding, finding.ID, &audit.LogOptions{
		Changes: map[string]interface{}{"reason": req.Reason},
	})

	return finding, nil
}

// ListContraindications returns the patient's findings, optionally only
// active ones.
func (s *Service) ListContraindications(ctx context.Context, orgID, patientID uuid.UUID, activeOnly bool) ([]*model.ContraindicationFinding, error) {
	return s.findings.ListForPatient(ctx, orgID, patientID, activeOnly)
}

// ListAlerts returns the patient's alerts filtered by status. An empty
// status returns all.
func (s *Service) ListAlerts(ctx context.Context, orgID, patientID uuid.UUID, status model.AlertStatus) ([]*model.ClinicalAlert, error) {
	return s.alerts.ListForPatient(ctx, orgID, patientID, status)
}

// AcknowledgeAlert marks an active alert acknowledged.
func (s *Service) AcknowledgeAlert(ctx context.Context, orgID, userID, alertID uuid.UUID) (*model.ClinicalAlert, error) {
	alert, err := s.alerts.Get(ctx, orgID, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status != model.AlertStatusActive {
		return nil, apperrors.NewInvalidState(fmt.Sprintf("alert is %s", alert.Status))
	}

	alert.Status = model.AlertStatusAcknowledged
	alert.UpdatedAt = time.Now()
	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	s.auditor.Log(ctx, userID, orgID, model.AuditActionUpdate, model.AuditEntityAlert, alert.ID, &audit.LogOptions{
		Changes: map[string]interface{}{"status": alert.Status},
	})
	return alert, nil
}

func (s *Service) buildEvidence(chart *model.PatientChart, req *model.SafetyCheckRequest) extractor.Evidence {
	in := extractor.Input{
		ChiefComplaint: req.ChiefComplaint,
		ClinicalNotes:  req.ClinicalNotes,
		Conditions:     chart.Conditions,
		Medications:    chart.Medications,
		Allergies:      chart.Allergies,
		Surgeries:      chart.Surgeries,
		Traumas:        chart.Traumas,
		Age:            chart.Age(time.Now()),
	}
	ov := req.Overrides
	if len(ov.Conditions) > 0 {
		in.Conditions = append(in.Conditions, ov.Conditions...)
	}
	if len(ov.Medications) > 0 {
		in.Medications = append(in.Medications, ov.Medications...)
	}
	if len(ov.Surgeries) > 0 {
		in.Surgeries = append(in.Surgeries, ov.Surgeries...)
	}
	if len(ov.Traumas) > 0 {
		in.Traumas = append(in.Traumas, ov.Traumas...)
	}
	if ov.Age != nil {
		in.Age = *ov.Age
	}
	return extractor.Extract(in)
}

// computeStatus aggregates fired rules and pre-existing findings into the
// overall safety status, most restrictive outcome winning.
func computeStatus(fired []model.FiredRule, existing []*model.ContraindicationFinding) model.SafetyStatus {
	for _, f := range existing {
		if f.Type == model.RuleTypeAbsolute && !f.IsOverridden {
			return model.SafetyStatusAbsolute
		}
	}
	relative := false
	for _, fr := range fired {
		switch {
		case fr.Rule.Type == model.RuleTypeAbsolute:
			return model.SafetyStatusAbsolute
		case fr.Rule.Type == model.RuleTypeRelative &&
			(fr.Rule.Severity == model.SeverityHigh || fr.Rule.Severity == model.SeverityCritical):
			relative = true
		}
	}
	if relative {
		return model.SafetyStatusRelative
	}
	if len(fired) > 0 {
		return model.SafetyStatusPrecaution
	}
	return model.SafetyStatusClear
}

// persistCheckResults writes the findings and alerts a check produces.
// Findings are deduplicated against existing active rows and alerts
// against open alerts for the procedure, so repeating a check never
// multiplies records.
func (s *Service) persistCheckResults(ctx context.Context, orgID, patientID uuid.UUID, req *model.SafetyCheckRequest, result *model.SafetyCheckResult) error {
	now := time.Now()

	open, err := s.alerts.ListActiveForProcedure(ctx, orgID, patientID, req.ProcedureName)
	if err != nil {
		return fmt.Errorf("failed to load open alerts: %w", err)
	}
	openAlerts := make(map[string]struct{}, len(open))
	for _, a := range open {
		openAlerts[alertKey(a.Type, a.Message)] = struct{}{}
	}

	for _, fr := range result.FiredRules {
		needsFinding := fr.Rule.Type == model.RuleTypeAbsolute ||
			(fr.Rule.Type == model.RuleTypeRelative &&
				(fr.Rule.Severity == model.SeverityHigh || fr.Rule.Severity == model.SeverityCritical))

		var finding *model.ContraindicationFinding
		if needsFinding {
			dup, err := s.findings.FindActive(ctx, orgID, patientID, fr.Rule.ID, req.ProcedureName)
			if err != nil && !apperrors.IsNotFound(err) {
				return fmt.Errorf("failed to check for duplicate finding: %w", err)
			}
			if dup == nil {
				finding = &model.ContraindicationFinding{
					Base: model.Base{
						ID:        uuid.New(),
						CreatedAt: now,
						UpdatedAt: now,
					},
					OrganizationID:  orgID,
					PatientID:       patientID,
					EncounterID:     req.EncounterID,
					RuleID:          &fr.Rule.ID,
					ProcedureName:   req.ProcedureName,
					ProcedureCode:   req.ProcedureCode,
					Type:            fr.Rule.Type,
					Severity:        fr.Rule.Severity,
					Reason:          fr.Rule.Reason,
					Source:          fr.MatchSource,
					MatchedKeywords: fr.MatchedKeywords,
					IsActive:        true,
				}
				if fr.Rule.ReviewPeriodDays > 0 {
					review := now.AddDate(0, 0, fr.Rule.ReviewPeriodDays)
					finding.ReviewDate = &review
				}
				if err := s.findings.Create(ctx, finding); err != nil {
					return fmt.Errorf("failed to create finding: %w", err)
				}
				result.NewFindings = append(result.NewFindings, finding)
				s.writeOutbox(ctx, model.EventFindingCreated, finding)
			}
		}

		if fr.Rule.Severity == model.SeverityCritical || fr.Rule.Severity == model.SeverityHigh {
			if _, dup := openAlerts[alertKey(model.AlertTypeContraindication, fr.Rule.Reason)]; dup {
				continue
			}
			alert := &model.ClinicalAlert{
				Base: model.Base{
					ID:        uuid.New(),
					CreatedAt: now,
					UpdatedAt: now,
				},
				OrganizationID: orgID,
				PatientID:      patientID,
				Type:           model.AlertTypeContraindication,
				Severity:       fr.Rule.Severity,
				Status:         model.AlertStatusActive,
				Message:        fr.Rule.Reason,
				Recommendation: fr.Rule.Recommendation,
				ProcedureName:  req.ProcedureName,
			}
			if finding != nil {
				alert.FindingID = &finding.ID
			}
			if err := s.alerts.Create(ctx, alert); err != nil {
				return fmt.Errorf("failed to create alert: %w", err)
			}
			openAlerts[alertKey(alert.Type, alert.Message)] = struct{}{}
			result.AlertsCreated = append(result.AlertsCreated, alert)
			s.metrics.AlertsCreated.WithLabelValues(string(alert.Type)).Inc()
			s.writeOutbox(ctx, model.EventAlertCreated, alert)
		}
	}

	for _, rf := range result.RedFlags {
		if rf.Flag.Severity != model.SeverityCritical && rf.Flag.Severity != model.SeverityHigh {
			continue
		}
		if _, dup := openAlerts[alertKey(model.AlertTypeRedFlag, rf.Flag.Message)]; dup {
			continue
		}
		alert := &model.ClinicalAlert{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			OrganizationID: orgID,
			PatientID:      patientID,
			Type:           model.AlertTypeRedFlag,
			Severity:       rf.Flag.Severity,
			Status:         model.AlertStatusActive,
			Message:        rf.Flag.Message,
			Recommendation: rf.Flag.Recommendation,
			ProcedureName:  req.ProcedureName,
		}
		if err := s.alerts.Create(ctx, alert); err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
		openAlerts[alertKey(alert.Type, alert.Message)] = struct{}{}
		result.AlertsCreated = append(result.AlertsCreated, alert)
		s.metrics.AlertsCreated.WithLabelValues(string(alert.Type)).Inc()
		s.writeOutbox(ctx, model.EventAlertCreated, alert)
	}

	return nil
}

// alertKey identifies an alert for deduplication within one procedure:
// re-running a check must not multiply open alerts.
func alertKey(t model.AlertType, message string) string {
	return string(t) + "|" + message
}

// appendAdvisories asks the enrichment service for additional cautions.
// Cautions arrive as advisory notes only; they never change the computed
// status.
func (s *Service) appendAdvisories(ctx context.Context, chart *model.PatientChart, req *model.SafetyCheckRequest, result *model.SafetyCheckResult) {
	ectx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
	defer cancel()

	cautions, err := s.enricher.ExtraContraindications(ectx, enrichment.CaseContext{
		ChiefComplaint: req.ChiefComplaint,
		Conditions:     chart.Conditions,
		Medications:    chart.Medications,
		Age:            chart.Age(time.Now()),
		ProcedureName:  req.ProcedureName,
	})
	if err != nil {
		log.Debug().Err(err).Msg("safety enrichment unavailable, continuing rule-based")
		return
	}
	for _, c := range cautions {
		note := c.Title
		if c.Detail != "" {
			note = fmt.Sprintf("%s: %s", c.Title, c.Detail)
		}
		result.AdvisoryNotes = append(result.AdvisoryNotes, note)
	}
}

func (s *Service) alertForFinding(finding *model.ContraindicationFinding, message, recommendation string) *model.ClinicalAlert {
	now := time.Now()
	return &model.ClinicalAlert{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: finding.OrganizationID,
		PatientID:      finding.PatientID,
		FindingID:      &finding.ID,
		Type:           model.AlertTypeContraindication,
		Severity:       finding.Severity,
		Status:         model.AlertStatusActive,
		Message:        message,
		Recommendation: recommendation,
		ProcedureName:  finding.ProcedureName,
	}
}

func (s *Service) resolveAlertsForProcedure(ctx context.Context, orgID, patientID uuid.UUID, procedure, note string) error {
	alerts, err := s.alerts.ListActiveForProcedure(ctx, orgID, patientID, procedure)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, a := range alerts {
		a.Status = model.AlertStatusResolved
		a.ResolutionNote = note
		a.ResolvedAt = &now
		a.UpdatedAt = now
		if err := s.alerts.Update(ctx, a); err != nil {
			return err
		}
		s.writeOutbox(ctx, model.EventAlertResolved, a)
	}
	return nil
}

// writeOutbox appends a downstream event; failures are logged and do not
// fail the clinical operation.
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

// findingCoversProcedure mirrors the rule applicability test for persisted
// findings.
func findingCoversProcedure(f *model.ContraindicationFinding, procedure string) bool {
	if f.ProcedureName == model.ProcedureWildcard {
		return true
	}
	a := strings.ToLower(f.ProcedureName)
	b := strings.ToLower(strings.TrimSpace(procedure))
	if b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
