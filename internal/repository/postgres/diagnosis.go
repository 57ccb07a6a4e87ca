package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/cds-engine/internal/model"
	"github.com/jwalitptl/cds-engine/internal/repository"
)

type diagnosisRepository struct {
	db *sqlx.DB
}

func NewDiagnosisRepository(db *sqlx.DB) repository.DiagnosisRepository {
	return &diagnosisRepository{db: db}
}

func (r *diagnosisRepository) Create(ctx context.Context, d *model.Diagnosis) error {
	query := `
		INSERT INTO diagnoses (
			id, organization_id, patient_id, encounter_id, code, description,
			sequence, is_primary, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.OrganizationID, d.PatientID, d.EncounterID, d.Code, d.Description,
		d.Sequence, d.IsPrimary, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create diagnosis: %w", err)
	}
	return nil
}

func (r *diagnosisRepository) NextSequence(ctx context.Context, orgID, patientID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(MAX(sequence), 0) + 1 FROM diagnoses
		WHERE organization_id = $1 AND patient_id = $2 AND deleted_at IS NULL
	`
	var seq int
	if err := r.db.GetContext(ctx, &seq, query, orgID, patientID); err != nil {
		return 0, fmt.Errorf("failed to get next diagnosis sequence: %w", err)
	}
	return seq, nil
}

func (r *diagnosisRepository) ClearPrimary(ctx context.Context, orgID, patientID uuid.UUID) error {
	query := `
		UPDATE diagnoses SET is_primary = false, updated_at = now()
		WHERE organization_id = $1 AND patient_id = $2 AND is_primary = true AND deleted_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, orgID, patientID); err != nil {
		return fmt.Errorf("failed to clear primary diagnosis: %w", err)
	}
	return nil
}
