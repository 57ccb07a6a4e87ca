package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/cds-engine/internal/model"
	"github.com/jwalitptl/cds-engine/internal/repository"
	apperrors "github.com/jwalitptl/cds-engine/pkg/errors"
)

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, a *model.ClinicalAlert) error {
	query := `
		INSERT INTO clinical_alerts (
			id, organization_id, patient_id, finding_id, type, severity,
			status, message, recommendation, procedure_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.OrganizationID, a.PatientID, a.FindingID, a.Type, a.Severity,
		a.Status, a.Message, a.Recommendation, a.ProcedureName, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *alertRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.ClinicalAlert, error) {
	query := `SELECT * FROM clinical_alerts WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`
	var alert model.ClinicalAlert
	err := r.db.GetContext(ctx, &alert, query, id, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("clinical alert", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

func (r *alertRepository) Update(ctx context.Context, a *model.ClinicalAlert) error {
	query := `
		UPDATE clinical_alerts SET
			status = $1, resolution_note = $2, resolved_at = $3, updated_at = $4
		WHERE id = $5 AND organization_id = $6
	`
	a.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		a.Status, a.ResolutionNote, a.ResolvedAt, a.UpdatedAt, a.ID, a.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperrors.NewNotFound("clinical alert", nil)
	}
	return nil
}

func (r *alertRepository) ListForPatient(ctx context.Context, orgID, patientID uuid.UUID, status model.AlertStatus) ([]*model.ClinicalAlert, error) {
	query := `
		SELECT * FROM clinical_alerts
		WHERE organization_id = $1 AND patient_id = $2 AND deleted_at IS NULL
	`
	args := []interface{}{orgID, patientID}
	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var alerts []*model.ClinicalAlert
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) ListActiveForProcedure(ctx context.Context, orgID, patientID uuid.UUID, procedure string) ([]*model.ClinicalAlert, error) {
	query := `
		SELECT * FROM clinical_alerts
		WHERE organization_id = $1 AND patient_id = $2 AND procedure_name = $3
		  AND status = $4 AND deleted_at IS NULL
	`
	var alerts []*model.ClinicalAlert
	err := r.db.SelectContext(ctx, &alerts, query, orgID, patientID, procedure, model.AlertStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	return alerts, nil
}
