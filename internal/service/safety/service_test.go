package safety

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/cds-engine/internal/enrichment"
	"github.com/jwalitptl/cds-engine/internal/knowledge"
	"github.com/jwalitptl/cds-engine/internal/model"
	"github.com/jwalitptl/cds-engine/internal/service/audit"
	apperrors "github.com/jwalitptl/cds-engine/pkg/errors"
	"github.com/jwalitptl/cds-engine/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "safety")

type fakePatientRepo struct {
	charts map[uuid.UUID]*model.PatientChart
}

func (f *fakePatientRepo) Get(_ context.Context, orgID, id uuid.UUID) (*model.PatientChart, error) {
	c, ok := f.charts[id]
	if !ok || c.OrganizationID != orgID {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	return c, nil
}

type fakeFindingRepo struct {
	rows map[uuid.UUID]*model.ContraindicationFinding
}

func (f *fakeFindingRepo) Create(_ context.Context, finding *model.ContraindicationFinding) error {
	cp := *finding
	f.rows[finding.ID] = &cp
	return nil
}

func (f *fakeFindingRepo) Get(_ context.Context, orgID, id uuid.UUID) (*model.ContraindicationFinding, error) {
	finding, ok := f.rows[id]
	if !ok || finding.OrganizationID != orgID {
		return nil, apperrors.NewNotFound("finding", nil)
	}
	cp := *finding
	return &cp, nil
}

func (f *fakeFindingRepo) Update(_ context.Context, finding *model.ContraindicationFinding) error {
	if _, ok := f.rows[finding.ID]; !ok {
		return apperrors.NewNotFound("finding", nil)
	}
	cp := *finding
	f.rows[finding.ID] = &cp
	return nil
}

func (f *fakeFindingRepo) ListForPatient(_ context.Context, orgID, patientID uuid.UUID, activeOnly bool) ([]*model.ContraindicationFinding, error) {
	var out []*model.ContraindicationFinding
	for _, finding := range f.rows {
		if finding.OrganizationID != orgID || finding.PatientID != patientID {
			continue
		}
		if activeOnly && !finding.IsActive {
			continue
		}
		cp := *finding
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeFindingRepo) FindActive(_ context.Context, orgID, patientID uuid.UUID, ruleID, procedure string) (*model.ContraindicationFinding, error) {
	for _, finding := range f.rows {
		if finding.OrganizationID != orgID || finding.PatientID != patientID || !finding.IsActive {
			continue
		}
		if finding.RuleID == nil || *finding.RuleID != ruleID || finding.ProcedureName != procedure {
			continue
		}
		cp := *finding
		return &cp, nil
	}
	return nil, nil
}

type fakeAlertRepo struct {
	rows map[uuid.UUID]*model.ClinicalAlert
}

func (f *fakeAlertRepo) Create(_ context.Context, alert *model.ClinicalAlert) error {
	cp := *alert
	f.rows[alert.ID] = &cp
	return nil
}

func (f *fakeAlertRepo) Get(_ context.Context, orgID, id uuid.UUID) (*model.ClinicalAlert, error) {
	alert, ok := f.rows[id]
	if !ok || alert.OrganizationID != orgID {
		return nil, apperrors.NewNotFound("alert", nil)
	}
	cp := *alert
	return &cp, nil
}

func (f *fakeAlertRepo) Update(_ context.Context, alert *model.ClinicalAlert) error {
	if _, ok := f.rows[alert.ID]; !ok {
		return apperrors.NewNotFound("alert", nil)
	}
	cp := *alert
	f.rows[alert.ID] = &cp
	return nil
}

func (f *fakeAlertRepo) ListForPatient(_ context.Context, orgID, patientID uuid.UUID, status model.AlertStatus) ([]*model.ClinicalAlert, error) {
	var out []*model.ClinicalAlert
	for _, alert := range f.rows {
		if alert.OrganizationID != orgID || alert.PatientID != patientID {
			continue
		}
		if status != "" && alert.Status != status {
			continue
		}
		cp := *alert
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAlertRepo) ListActiveForProcedure(_ context.Context, orgID, patientID uuid.UUID, procedure string) ([]*model.ClinicalAlert, error) {
	var out []*model.ClinicalAlert
	for _, alert := range f.rows {
		if alert.OrganizationID != orgID || alert.PatientID != patientID {
			continue
		}
		if alert.Status != model.AlertStatusActive || alert.ProcedureName != procedure {
			continue
		}
		cp := *alert
		out = append(out, &cp)
	}
	return out, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(context.Context, int) ([]*model.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeOutboxRepo) UpdateStatus(context.Context, uuid.UUID, model.OutboxStatus, *string) error {
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeAuditRepo struct {
	logs []*model.AuditLog
}

func (f *fakeAuditRepo) Create(_ context.Context, l *model.AuditLog) error {
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ uuid.UUID, _ string, _ int) ([]*model.AuditLog, error) {
	return f.logs, nil
}

type stubEnricher struct {
	enrichment.Noop
	cautions []enrichment.Caution
	err      error
}

func (s *stubEnricher) ExtraContraindications(context.Context, enrichment.CaseContext) ([]enrichment.Caution, error) {
	return s.cautions, s.err
}

type fixture struct {
	svc       *Service
	patients  *fakePatientRepo
	findings  *fakeFindingRepo
	alerts    *fakeAlertRepo
	outbox    *fakeOutboxRepo
	auditRepo *fakeAuditRepo
	orgID     uuid.UUID
	userID    uuid.UUID
	patientID uuid.UUID
}

func newFixture(t *testing.T, enricher enrichment.Enricher) *fixture {
	t.Helper()

	orgID := uuid.New()
	patientID := uuid.New()
	chart := &model.PatientChart{
		Base:           model.Base{ID: patientID},
		OrganizationID: orgID,
		DateOfBirth:    time.Now().AddDate(-45, 0, 0),
	}

	f := &fixture{
		patients:  &fakePatientRepo{charts: map[uuid.UUID]*model.PatientChart{patientID: chart}},
		findings:  &fakeFindingRepo{rows: map[uuid.UUID]*model.ContraindicationFinding{}},
		alerts:    &fakeAlertRepo{rows: map[uuid.UUID]*model.ClinicalAlert{}},
		outbox:    &fakeOutboxRepo{},
		auditRepo: &fakeAuditRepo{},
		orgID:     orgID,
		userID:    uuid.New(),
		patientID: patientID,
	}
	f.svc = NewService(
		knowledge.New(),
		f.patients,
		f.findings,
		f.alerts,
		f.outbox,
		enricher,
		audit.NewService(f.auditRepo),
		testMetrics,
		time.Second,
	)
	return f
}

func (f *fixture) chart() *model.PatientChart {
	return f.patients.charts[f.patientID]
}

func firedRuleIDs(result *model.SafetyCheckResult) []string {
	ids := make([]string, 0, len(result.FiredRules))
	for _, fr := range result.FiredRules {
		ids = append(ids, fr.Rule.ID)
	}
	return ids
}

func TestCheckAbsoluteCaudaEquina(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName: "Diversified Technique",
		ClinicalNotes: "reports saddle anesthesia and bladder dysfunction since yesterday",
	})
	require.NoError(t, err)

	assert.Equal(t, model.SafetyStatusAbsolute, result.Status)
	assert.False(t, result.CanProceed)
	assert.Contains(t, firedRuleIDs(result), "ci-cauda-equina")

	require.NotEmpty(t, result.RedFlags)
	assert.Equal(t, "cauda_equina", result.RedFlags[0].Flag.Type)

	require.Len(t, result.NewFindings, 1)
	finding := result.NewFindings[0]
	assert.Equal(t, model.RuleTypeAbsolute, finding.Type)
	assert.Equal(t, model.SeverityCritical, finding.Severity)
	require.NotNil(t, finding.RuleID)
	assert.Equal(t, "ci-cauda-equina", *finding.RuleID)

	// One contraindication alert for the fired rule, one red flag alert.
	types := make(map[model.AlertType]int)
	for _, a := range result.AlertsCreated {
		types[a.Type]++
	}
	assert.Equal(t, 1, types[model.AlertTypeContraindication])
	assert.Equal(t, 1, types[model.AlertTypeRedFlag])

	assert.NotEmpty(t, f.outbox.events)
	assert.NotEmpty(t, f.auditRepo.logs)
}

func TestCheckIsIdempotentAgainstExistingFindings(t *testing.T) {
	f := newFixture(t, nil)
	req := &model.SafetyCheckRequest{
		ProcedureName: "Diversified Technique",
		ClinicalNotes: "saddle anesthesia with urinary retention",
	}

	first, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, req)
	require.NoError(t, err)
	require.Len(t, first.NewFindings, 1)

	second, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, req)
	require.NoError(t, err)
	assert.Empty(t, second.NewFindings)
	assert.Equal(t, model.SafetyStatusAbsolute, second.Status)
	assert.NotEmpty(t, second.ExistingFindings)
}

func TestCheckDoesNotDuplicateOpenAlerts(t *testing.T) {
	f := newFixture(t, nil)
	req := &model.SafetyCheckRequest{
		ProcedureName: "Diversified Technique",
		ClinicalNotes: "saddle anesthesia with urinary retention",
	}

	first, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, req)
	require.NoError(t, err)
	require.NotEmpty(t, first.AlertsCreated)

	second, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, req)
	require.NoError(t, err)
	assert.Empty(t, second.AlertsCreated)
	assert.Len(t, f.alerts.rows, len(first.AlertsCreated))

	// Acknowledged or resolved alerts no longer suppress a fresh one.
	for _, a := range first.AlertsCreated {
		_, err := f.svc.AcknowledgeAlert(context.Background(), f.orgID, f.userID, a.ID)
		require.NoError(t, err)
	}
	third, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, req)
	require.NoError(t, err)
	assert.Len(t, third.AlertsCreated, len(first.AlertsCreated))
}

func TestCheckAnticoagulantIsRelative(t *testing.T) {
	f := newFixture(t, nil)
	f.chart().Medications = []string{"Warfarin 5mg daily"}

	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName:  "Activator Method",
		ChiefComplaint: "low back pain",
	})
	require.NoError(t, err)

	assert.Equal(t, model.SafetyStatusRelative, result.Status)
	assert.True(t, result.CanProceed)
	assert.Contains(t, firedRuleIDs(result), "ci-anticoagulant")

	require.Len(t, result.NewFindings, 1)
	finding := result.NewFindings[0]
	assert.Equal(t, model.RuleTypeRelative, finding.Type)
	assert.Equal(t, "medication list", finding.Source)
	require.NotNil(t, finding.ReviewDate)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 90), *finding.ReviewDate, time.Hour)

	require.Len(t, result.AlertsCreated, 1)
	assert.Equal(t, model.SeverityHigh, result.AlertsCreated[0].Severity)
}

func TestCheckElderlyIsPrecautionOnly(t *testing.T) {
	f := newFixture(t, nil)
	f.chart().DateOfBirth = time.Now().AddDate(-80, 0, 0)

	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName:  "Diversified Technique",
		ChiefComplaint: "low back pain",
	})
	require.NoError(t, err)

	assert.Equal(t, model.SafetyStatusPrecaution, result.Status)
	assert.True(t, result.CanProceed)
	assert.Contains(t, firedRuleIDs(result), "ci-elderly-general")
	assert.Empty(t, result.NewFindings)
	assert.Empty(t, result.AlertsCreated)
}

func TestCheckClear(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName:  "Diversified Technique",
		ChiefComplaint: "mild low back stiffness after gardening",
	})
	require.NoError(t, err)

	assert.Equal(t, model.SafetyStatusClear, result.Status)
	assert.True(t, result.CanProceed)
	assert.Empty(t, result.FiredRules)
	assert.Empty(t, result.NewFindings)
}

func TestCheckSortsFiredRulesBySeverity(t *testing.T) {
	f := newFixture(t, nil)
	f.chart().DateOfBirth = time.Now().AddDate(-80, 0, 0)
	f.chart().Medications = []string{"warfarin"}

	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName:  "Diversified Technique",
		ChiefComplaint: "low back pain with saddle anesthesia",
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(result.FiredRules), 3)

	for i := 1; i < len(result.FiredRules); i++ {
		prev := model.SeverityRank(result.FiredRules[i-1].Rule.Severity)
		cur := model.SeverityRank(result.FiredRules[i].Rule.Severity)
		assert.LessOrEqual(t, prev, cur)
	}
	assert.Equal(t, "ci-cauda-equina", result.FiredRules[0].Rule.ID)
}

func TestCheckExistingAbsoluteFindingBlocks(t *testing.T) {
	f := newFixture(t, nil)
	ruleID := "ci-spinal-malignancy"
	now := time.Now()
	require.NoError(t, f.findings.Create(context.Background(), &model.ContraindicationFinding{
		Base:           model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: f.orgID,
		PatientID:      f.patientID,
		RuleID:         &ruleID,
		ProcedureName:  model.ProcedureWildcard,
		Type:           model.RuleTypeAbsolute,
		Severity:       model.SeverityCritical,
		Reason:         "active spinal metastasis",
		IsActive:       true,
	}))

	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName:  "Diversified Technique",
		ChiefComplaint: "mild low back stiffness",
	})
	require.NoError(t, err)

	assert.Equal(t, model.SafetyStatusAbsolute, result.Status)
	assert.False(t, result.CanProceed)
	assert.Empty(t, result.FiredRules)
	require.Len(t, result.ExistingFindings, 1)
}

func TestCheckAdvisoryNotesNeverChangeStatus(t *testing.T) {
	enricher := &stubEnricher{cautions: []enrichment.Caution{
		{Title: "Recent dental surgery", Detail: "confirm antibiotic prophylaxis completed"},
	}}
	f := newFixture(t, enricher)

	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName:  "Diversified Technique",
		ChiefComplaint: "mild low back stiffness",
	})
	require.NoError(t, err)

	assert.Equal(t, model.SafetyStatusClear, result.Status)
	require.Len(t, result.AdvisoryNotes, 1)
	assert.Equal(t, "Recent dental surgery: confirm antibiotic prophylaxis completed", result.AdvisoryNotes[0])
}

func TestCheckEnrichmentFailureIsSoft(t *testing.T) {
	f := newFixture(t, &stubEnricher{err: assert.AnError})

	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName:  "Diversified Technique",
		ChiefComplaint: "mild low back stiffness",
	})
	require.NoError(t, err)
	assert.Empty(t, result.AdvisoryNotes)
}

func TestCheckUnknownPatient(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Check(context.Background(), f.orgID, f.userID, uuid.New(), &model.SafetyCheckRequest{
		ProcedureName: "Diversified Technique",
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func relativeFinding(t *testing.T, f *fixture) *model.ContraindicationFinding {
	t.Helper()
	f.chart().Medications = []string{"warfarin"}
	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName:  "Activator Method",
		ChiefComplaint: "low back pain",
	})
	require.NoError(t, err)
	require.Len(t, result.NewFindings, 1)
	return result.NewFindings[0]
}

func TestOverrideRequiresRiskAcknowledgement(t *testing.T) {
	f := newFixture(t, nil)
	finding := relativeFinding(t, f)

	_, err := f.svc.Override(context.Background(), f.orgID, f.userID, finding.ID, &model.OverrideRequest{
		Reason: "INR stable for six months, low-force technique planned",
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestOverrideRequiresSubstantiveReason(t *testing.T) {
	f := newFixture(t, nil)
	finding := relativeFinding(t, f)

	_, err := f.svc.Override(context.Background(), f.orgID, f.userID, finding.ID, &model.OverrideRequest{
		Reason:           "ok",
		RiskAcknowledged: true,
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestOverrideResolvesAlerts(t *testing.T) {
	f := newFixture(t, nil)
	finding := relativeFinding(t, f)

	got, err := f.svc.Override(context.Background(), f.orgID, f.userID, finding.ID, &model.OverrideRequest{
		Reason:           "INR stable for six months, low-force technique planned",
		RiskAcknowledged: true,
		PatientConsent:   true,
	})
	require.NoError(t, err)

	assert.True(t, got.IsOverridden)
	require.NotNil(t, got.OverriddenBy)
	assert.Equal(t, f.userID, *got.OverriddenBy)
	assert.NotNil(t, got.OverriddenAt)

	for _, a := range f.alerts.rows {
		if a.ProcedureName == finding.ProcedureName {
			assert.Equal(t, model.AlertStatusResolved, a.Status)
			assert.Equal(t, "contraindication overridden", a.ResolutionNote)
		}
	}
}

func TestOverrideIsTerminal(t *testing.T) {
	f := newFixture(t, nil)
	finding := relativeFinding(t, f)
	req := &model.OverrideRequest{
		Reason:           "INR stable for six months, low-force technique planned",
		RiskAcknowledged: true,
	}

	_, err := f.svc.Override(context.Background(), f.orgID, f.userID, finding.ID, req)
	require.NoError(t, err)

	_, err = f.svc.Override(context.Background(), f.orgID, f.userID, finding.ID, req)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestOverrideAbsoluteRefused(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.svc.Check(context.Background(), f.orgID, f.userID, f.patientID, &model.SafetyCheckRequest{
		ProcedureName: "Diversified Technique",
		ClinicalNotes: "saddle anesthesia and bladder dysfunction",
	})
	require.NoError(t, err)
	require.Len(t, result.NewFindings, 1)

	_, err = f.svc.Override(context.Background(), f.orgID, f.userID, result.NewFindings[0].ID, &model.OverrideRequest{
		Reason:           "patient insists on being treated today regardless",
		RiskAcknowledged: true,
	})
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestOverrideNonOverridableRuleIsValidation(t *testing.T) {
	f := newFixture(t, nil)

	// A non-absolute finding whose source rule forbids overrides still
	// refuses them, as rejected input rather than a state conflict.
	ruleID := "ci-vbi-cervical"
	now := time.Now()
	finding := &model.ContraindicationFinding{
		Base:           model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: f.orgID,
		PatientID:      f.patientID,
		RuleID:         &ruleID,
		ProcedureName:  "Cervical Manipulation",
		Type:           model.RuleTypeRelative,
		Severity:       model.SeverityHigh,
		Reason:         "vascular risk flagged on prior imaging",
		IsActive:       true,
	}
	require.NoError(t, f.findings.Create(context.Background(), finding))

	_, err := f.svc.Override(context.Background(), f.orgID, f.userID, finding.ID, &model.OverrideRequest{
		Reason:           "symptoms resolved per neurology follow-up note",
		RiskAcknowledged: true,
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestAddManualFindingCreatesAlert(t *testing.T) {
	f := newFixture(t, nil)

	finding, err := f.svc.Add(context.Background(), f.orgID, f.userID, f.patientID, &model.AddContraindicationRequest{
		ProcedureName: "Cervical Manipulation",
		Type:          model.RuleTypeRelative,
		Severity:      model.SeverityHigh,
		Reason:        "documented vertebral artery anomaly on MRA",
	})
	require.NoError(t, err)

	assert.Equal(t, "manual entry", finding.Source)
	assert.True(t, finding.IsActive)

	alerts, err := f.alerts.ListForPatient(context.Background(), f.orgID, f.patientID, model.AlertStatusActive)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.NotNil(t, alerts[0].FindingID)
	assert.Equal(t, finding.ID, *alerts[0].FindingID)
}

func TestAddManualLowSeverityNoAlert(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Add(context.Background(), f.orgID, f.userID, f.patientID, &model.AddContraindicationRequest{
		ProcedureName: "Thompson Drop Table",
		Type:          model.RuleTypePrecaution,
		Severity:      model.SeverityLow,
		Reason:        "patient prefers low-force techniques",
	})
	require.NoError(t, err)
	assert.Empty(t, f.alerts.rows)
}

func TestDeactivateFinding(t *testing.T) {
	f := newFixture(t, nil)
	finding := relativeFinding(t, f)

	_, err := f.svc.Deactivate(context.Background(), f.orgID, f.userID, finding.ID, &model.DeactivateRequest{})
	assert.True(t, apperrors.IsValidation(err))

	got, err := f.svc.Deactivate(context.Background(), f.orgID, f.userID, finding.ID, &model.DeactivateRequest{
		Reason: "anticoagulation discontinued by cardiology",
	})
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "anticoagulation discontinued by cardiology", got.DeactivateNote)

	_, err = f.svc.Deactivate(context.Background(), f.orgID, f.userID, finding.ID, &model.DeactivateRequest{
		Reason: "anticoagulation discontinued by cardiology",
	})
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestDeactivatedFindingNoLongerBlocks(t *testing.T) {
	f := newFixture(t, nil)
	finding := relativeFinding(t, f)

	_, err := f.svc.Deactivate(context.Background(), f.orgID, f.userID, finding.ID, &model.DeactivateRequest{
		Reason: "anticoagulation discontinued by cardiology",
	})
	require.NoError(t, err)

	active, err := f.svc.ListContraindications(context.Background(), f.orgID, f.patientID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.svc.ListContraindications(context.Background(), f.orgID, f.patientID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAcknowledgeAlert(t *testing.T) {
	f := newFixture(t, nil)
	relativeFinding(t, f)

	alerts, err := f.svc.ListAlerts(context.Background(), f.orgID, f.patientID, model.AlertStatusActive)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	got, err := f.svc.AcknowledgeAlert(context.Background(), f.orgID, f.userID, alerts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusAcknowledged, got.Status)

	_, err = f.svc.AcknowledgeAlert(context.Background(), f.orgID, f.userID, alerts[0].ID)
	assert.True(t, apperrors.IsInvalidState(err))
}
