package outcome

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
	"github.com/jwalitptl/cds-engine/internal/repository"
	"github.com/jwalitptl/cds-engine/internal/service/audit"
	apperrors "github.com/jwalitptl/cds-engine/pkg/errors"
	"github.com/jwalitptl/cds-engine/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "outcome")

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

type fakePredictionRepo struct {
	rows map[uuid.UUID]*model.OutcomePrediction
}

func (f *fakePredictionRepo) Create(_ context.Context, p *model.OutcomePrediction) error {
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePredictionRepo) Get(_ context.Context, orgID, id uuid.UUID) (*model.OutcomePrediction, error) {
	p, ok := f.rows[id]
	if !ok || p.OrganizationID != orgID {
		return nil, apperrors.NewNotFound("prediction", nil)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePredictionRepo) Update(_ context.Context, p *model.OutcomePrediction) error {
	if _, ok := f.rows[p.ID]; !ok {
		return apperrors.NewNotFound("prediction", nil)
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePredictionRepo) ListForPatient(_ context.Context, orgID, patientID uuid.UUID) ([]*model.OutcomePrediction, error) {
	var out []*model.OutcomePrediction
	for _, p := range f.rows {
		if p.OrganizationID == orgID && p.PatientID == patientID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeCaseRepo serves the filtered query from filtered and the unfiltered
// fallback from all.
type fakeCaseRepo struct {
	filtered []*model.CaseOutcome
	all      []*model.CaseOutcome
	created  []*model.CaseOutcome
}

func (f *fakeCaseRepo) Create(_ context.Context, c *model.CaseOutcome) error {
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCaseRepo) ListByConditionPrefix(_ context.Context, _ uuid.UUID, _ string, filters repository.CaseFilters) ([]*model.CaseOutcome, error) {
	if filters.AgeBand > 0 || filters.DurationClass != "" {
		return f.filtered, nil
	}
	return f.all, nil
}

type fakeAlertRepo struct {
	rows []*model.ClinicalAlert
}

func (f *fakeAlertRepo) Create(_ context.Context, alert *model.ClinicalAlert) error {
	cp := *alert
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeAlertRepo) Get(_ context.Context, _, _ uuid.UUID) (*model.ClinicalAlert, error) {
	return nil, apperrors.NewNotFound("alert", nil)
}

func (f *fakeAlertRepo) Update(context.Context, *model.ClinicalAlert) error { return nil }

func (f *fakeAlertRepo) ListForPatient(_ context.Context, _, _ uuid.UUID, _ model.AlertStatus) ([]*model.ClinicalAlert, error) {
	return f.rows, nil
}

func (f *fakeAlertRepo) ListActiveForProcedure(_ context.Context, _, _ uuid.UUID, _ string) ([]*model.ClinicalAlert, error) {
	return nil, nil
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
	treatment string
	narrative string
	err       error
}

func (s *stubEnricher) RefineTreatment(_ context.Context, _ enrichment.CaseContext, plan string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.treatment == "" {
		return plan, nil
	}
	return s.treatment, nil
}

func (s *stubEnricher) RefineNarrative(_ context.Context, _ enrichment.CaseContext, narrative string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.narrative == "" {
		return narrative, nil
	}
	return s.narrative, nil
}

type fixture struct {
	svc         *Service
	patients    *fakePatientRepo
	predictions *fakePredictionRepo
	cases       *fakeCaseRepo
	alerts      *fakeAlertRepo
	outbox      *fakeOutboxRepo
	auditRepo   *fakeAuditRepo
	orgID       uuid.UUID
	userID      uuid.UUID
	patientID   uuid.UUID
}

func newFixture(t *testing.T, enricher enrichment.Enricher) *fixture {
	t.Helper()

	orgID := uuid.New()
	patientID := uuid.New()
	chart := &model.PatientChart{
		Base:           model.Base{ID: patientID},
		OrganizationID: orgID,
		DateOfBirth:    time.Now().AddDate(-35, 0, 0),
	}

	f := &fixture{
		patients:    &fakePatientRepo{charts: map[uuid.UUID]*model.PatientChart{patientID: chart}},
		predictions: &fakePredictionRepo{rows: map[uuid.UUID]*model.OutcomePrediction{}},
		cases:       &fakeCaseRepo{},
		alerts:      &fakeAlertRepo{},
		outbox:      &fakeOutboxRepo{},
		auditRepo:   &fakeAuditRepo{},
		orgID:       orgID,
		userID:      uuid.New(),
		patientID:   patientID,
	}
	f.svc = NewService(
		knowledge.New(),
		f.patients,
		f.predictions,
		f.cases,
		f.alerts,
		f.outbox,
		enricher,
		audit.NewService(f.auditRepo),
		testMetrics,
		time.Second,
	)
	return f
}

func TestPredictPersistsPendingPrediction(t *testing.T) {
	f := newFixture(t, nil)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)

	assert.Equal(t, model.PredictionPending, pred.Status)
	assert.Equal(t, "Low back pain", pred.ConditionDescription)
	assert.Equal(t, improvementCeil, pred.ExpectedImprovement)
	assert.Equal(t, confidenceAcute, pred.Confidence)
	assert.Equal(t, model.ResponseExcellent, pred.TreatmentResponse)
	assert.Equal(t, "4 weeks", pred.Timeline)
	assert.NotEmpty(t, pred.TreatmentApproach)
	assert.NotEmpty(t, pred.Explanation)
	assert.NotEmpty(t, pred.ExpectationPoints)

	assert.Len(t, f.predictions.rows, 1)
	assert.NotEmpty(t, f.auditRepo.logs)
	assert.Empty(t, f.alerts.rows, "low chronicity risk raises no alert")
}

func TestPredictExplicitDurationClassWins(t *testing.T) {
	f := newFixture(t, nil)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "chronic",
		ClinicalNotes:   "pain started this week",
	})
	require.NoError(t, err)
	assert.Equal(t, "12 weeks", pred.Timeline)
}

func TestPredictHighChronicityRaisesAlert(t *testing.T) {
	f := newFixture(t, nil)
	f.patients.charts[f.patientID].DateOfBirth = time.Now().AddDate(-60, 0, 0)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M51.26",
		SymptomDuration: "chronic",
	})
	require.NoError(t, err)
	require.Greater(t, pred.ChronicityRisk, chronicityAlertCutoff)

	require.Len(t, f.alerts.rows, 1)
	alert := f.alerts.rows[0]
	assert.Equal(t, model.AlertTypeOutcome, alert.Type)
	assert.Equal(t, model.SeverityModerate, alert.Severity)
	assert.Equal(t, model.AlertStatusActive, alert.Status)
	assert.NotEmpty(t, f.outbox.events)
}

func TestPredictBlendsFilteredHistory(t *testing.T) {
	f := newFixture(t, nil)
	f.cases.filtered = []*model.CaseOutcome{
		{ActualImprovement: 40},
		{ActualImprovement: 60},
	}

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)

	// 0.7*100 + 0.3*50 = 85 with the history confidence bonus.
	assert.Equal(t, 85, pred.ExpectedImprovement)
	assert.Equal(t, confidenceAcute+historyConfBonus, pred.Confidence)
}

func TestPredictFallsBackToUnfilteredHistory(t *testing.T) {
	f := newFixture(t, nil)
	f.cases.all = []*model.CaseOutcome{
		{ActualImprovement: 50},
	}

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)
	assert.Equal(t, 85, pred.ExpectedImprovement)
}

func TestPredictEnrichmentRefinesNarratives(t *testing.T) {
	enricher := &stubEnricher{
		treatment: "Flexion-distraction with graded walking program",
		narrative: "Plain-language outlook for the patient",
	}
	f := newFixture(t, enricher)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)
	assert.Equal(t, "Flexion-distraction with graded walking program", pred.TreatmentApproach)
	assert.Equal(t, "Plain-language outlook for the patient", pred.Explanation)
}

func TestPredictEnrichmentFailureKeepsRuleNarratives(t *testing.T) {
	f := newFixture(t, &stubEnricher{err: assert.AnError})

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pred.TreatmentApproach)
	assert.Contains(t, pred.Explanation, "excellent")
}

func TestPredictUnknownPatient(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Predict(context.Background(), f.orgID, f.userID, uuid.New(), &model.PredictOutcomeRequest{
		ConditionCode: "M54.5",
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAcceptAndRejectArePendingOnly(t *testing.T) {
	f := newFixture(t, nil)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)

	accepted, err := f.svc.Accept(context.Background(), f.orgID, f.userID, pred.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PredictionAccepted, accepted.Status)

	_, err = f.svc.Accept(context.Background(), f.orgID, f.userID, pred.ID)
	assert.True(t, apperrors.IsInvalidState(err))

	_, err = f.svc.Reject(context.Background(), f.orgID, f.userID, pred.ID, &model.RejectPredictionRequest{Reason: "changed plan"})
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t, nil)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), f.orgID, f.userID, pred.ID, &model.RejectPredictionRequest{})
	assert.True(t, apperrors.IsValidation(err))

	rejected, err := f.svc.Reject(context.Background(), f.orgID, f.userID, pred.ID, &model.RejectPredictionRequest{
		Reason: "clinical picture changed after imaging",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PredictionRejected, rejected.Status)
	assert.Equal(t, "clinical picture changed after imaging", rejected.RejectionReason)
}

func TestRecordOutcomeMarksAccuracy(t *testing.T) {
	f := newFixture(t, nil)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)
	require.Equal(t, improvementCeil, pred.ExpectedImprovement)

	got, err := f.svc.RecordOutcome(context.Background(), f.orgID, f.userID, pred.ID, &model.RecordOutcomeRequest{
		ActualImprovement: pred.ExpectedImprovement - accuracyTolerancePoints,
		Note:              "discharged with home program",
	})
	require.NoError(t, err)

	require.NotNil(t, got.ActualImprovement)
	assert.Equal(t, pred.ExpectedImprovement-accuracyTolerancePoints, *got.ActualImprovement)
	require.NotNil(t, got.WasAccurate)
	assert.True(t, *got.WasAccurate)
	assert.NotNil(t, got.OutcomeRecordedAt)
}

func TestRecordOutcomeOutsideToleranceIsInaccurate(t *testing.T) {
	f := newFixture(t, nil)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)

	got, err := f.svc.RecordOutcome(context.Background(), f.orgID, f.userID, pred.ID, &model.RecordOutcomeRequest{
		ActualImprovement: pred.ExpectedImprovement - accuracyTolerancePoints - 1,
	})
	require.NoError(t, err)
	require.NotNil(t, got.WasAccurate)
	assert.False(t, *got.WasAccurate)
}

func TestRecordOutcomeIsWriteOnce(t *testing.T) {
	f := newFixture(t, nil)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)

	_, err = f.svc.RecordOutcome(context.Background(), f.orgID, f.userID, pred.ID, &model.RecordOutcomeRequest{ActualImprovement: 80})
	require.NoError(t, err)

	_, err = f.svc.RecordOutcome(context.Background(), f.orgID, f.userID, pred.ID, &model.RecordOutcomeRequest{ActualImprovement: 90})
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestRecordOutcomeValidatesRange(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.RecordOutcome(context.Background(), f.orgID, f.userID, uuid.New(), &model.RecordOutcomeRequest{ActualImprovement: 101})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.RecordOutcome(context.Background(), f.orgID, f.userID, uuid.New(), &model.RecordOutcomeRequest{ActualImprovement: -1})
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecordOutcomeAppendsCaseWithDurationClass(t *testing.T) {
	f := newFixture(t, nil)

	pred, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)

	_, err = f.svc.RecordOutcome(context.Background(), f.orgID, f.userID, pred.ID, &model.RecordOutcomeRequest{ActualImprovement: 82})
	require.NoError(t, err)

	require.Len(t, f.cases.created, 1)
	c := f.cases.created[0]
	assert.Equal(t, "M54.5", c.ConditionCode)
	assert.Equal(t, "acute", c.DurationClass)
	assert.Equal(t, 82, c.ActualImprovement)
	assert.Equal(t, 35, c.AgeAtOnset)
}

func TestListForPatient(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Predict(context.Background(), f.orgID, f.userID, f.patientID, &model.PredictOutcomeRequest{
		ConditionCode:   "M54.5",
		SymptomDuration: "3 days",
	})
	require.NoError(t, err)

	preds, err := f.svc.ListForPatient(context.Background(), f.orgID, f.patientID)
	require.NoError(t, err)
	assert.Len(t, preds, 1)
}
