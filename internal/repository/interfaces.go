package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/cds-engine/internal/model"
)

// All repository interfaces in one file
type (
	// PatientRepository reads the engine's view of the patient chart.
	PatientRepository interface {
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.PatientChart, error)
	}

	// FindingRepository persists contraindication findings. Findings are
	// soft deleted only; deactivation flips is_active.
	FindingRepository interface {
		Create(ctx context.Context, finding *model.ContraindicationFinding) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.ContraindicationFinding, error)
		Update(ctx context.Context, finding *model.ContraindicationFinding) error
		ListForPatient(ctx context.Context, orgID, patientID uuid.UUID, activeOnly bool) ([]*model.ContraindicationFinding, error)
		FindActive(ctx context.Context, orgID, patientID uuid.UUID, ruleID, procedure string) (*model.ContraindicationFinding, error)
	}

	AlertRepository interface {
		Create(ctx context.Context, alert *model.ClinicalAlert) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.ClinicalAlert, error)
		Update(ctx context.Context, alert *model.ClinicalAlert) error
		ListForPatient(ctx context.Context, orgID, patientID uuid.UUID, status model.AlertStatus) ([]*model.ClinicalAlert, error)
		ListActiveForProcedure(ctx context.Context, orgID, patientID uuid.UUID, procedure string) ([]*model.ClinicalAlert, error)
	}

	SuggestionRepository interface {
		Create(ctx context.Context, s *model.DiagnosisSuggestion) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.DiagnosisSuggestion, error)
		Update(ctx context.Context, s *model.DiagnosisSuggestion) error
		ListForPatient(ctx context.Context, orgID, patientID uuid.UUID) ([]*model.DiagnosisSuggestion, error)
	}

	DiagnosisRepository interface {
		Create(ctx context.Context, d *model.Diagnosis) error
		NextSequence(ctx context.Context, orgID, patientID uuid.UUID) (int, error)
		ClearPrimary(ctx context.Context, orgID, patientID uuid.UUID) error
	}

	PredictionRepository interface {
		Create(ctx context.Context, p *model.OutcomePrediction) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.OutcomePrediction, error)
		Update(ctx context.Context, p *model.OutcomePrediction) error
		ListForPatient(ctx context.Context, orgID, patientID uuid.UUID) ([]*model.OutcomePrediction, error)
	}

	// CaseFilters narrows similar-case lookups for the empirical blend.
	CaseFilters struct {
		AgeCenter     int
		AgeBand       int
		DurationClass string
	}

	CaseOutcomeRepository interface {
		Create(ctx context.Context, c *model.CaseOutcome) error
		ListByConditionPrefix(ctx context.Context, orgID uuid.UUID, prefix string, filters CaseFilters) ([]*model.CaseOutcome, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, orgID uuid.UUID, entityType string, limit int) ([]*model.AuditLog, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
