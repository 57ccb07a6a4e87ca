package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/cds-engine/internal/model"
	"github.com/jwalitptl/cds-engine/internal/repository"
	apperrors "github.com/jwalitptl/cds-engine/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

type patientRow struct {
	model.PatientChart
	SurgeriesJSON json.RawMessage `db:"surgeries"`
	TraumasJSON   json.RawMessage `db:"traumas"`
}

func (r *patientRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.PatientChart, error) {
	query := `
		SELECT id, organization_id, first_name, last_name, date_of_birth,
		       conditions, medications, allergies, surgeries, traumas,
		       chart_notes, created_at, updated_at, deleted_at
		FROM patient_charts
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	var row patientRow
	err := r.db.GetContext(ctx, &row, query, id, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient chart: %w", err)
	}

	chart := row.PatientChart
	if len(row.SurgeriesJSON) > 0 {
		if err := json.Unmarshal(row.SurgeriesJSON, &chart.Surgeries); err != nil {
			return nil, fmt.Errorf("failed to decode surgeries: %w", err)
		}
	}
	if len(row.TraumasJSON) > 0 {
		if err := json.Unmarshal(row.TraumasJSON, &chart.Traumas); err != nil {
			return nil, fmt.Errorf("failed to decode traumas: %w", err)
		}
	}
	return &chart, nil
}
