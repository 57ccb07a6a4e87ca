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

type predictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) repository.PredictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) Create(ctx context.Context, p *model.OutcomePrediction) error {
	query := `
		INSERT INTO outcome_predictions (
			id, organization_id, patient_id, encounter_id,
			condition_code, condition_description, treatment_approach,
			predicted_outcome, confidence, expected_improvement,
			chronicity_risk, treatment_response, timeline,
			favorable_factors, unfavorable_factors, neutral_factors,
			explanation, expectation_points, similar_cases, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
	`
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.OrganizationID, p.PatientID, p.EncounterID,
		p.ConditionCode, p.ConditionDescription, p.TreatmentApproach,
		p.PredictedOutcome, p.Confidence, p.ExpectedImprovement,
		p.ChronicityRisk, p.TreatmentResponse, p.Timeline,
		p.FavorableFactors, p.UnfavorableFactors, p.NeutralFactors,
		p.Explanation, p.ExpectationPoints, p.SimilarCases, p.Status,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}
	return nil
}

func (r *predictionRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.OutcomePrediction, error) {
	query := `SELECT * FROM outcome_predictions WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`
	var p model.OutcomePrediction
	err := r.db.GetContext(ctx, &p, query, id, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("outcome prediction", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return &p, nil
}

func (r *predictionRepository) Update(ctx context.Context, p *model.OutcomePrediction) error {
	query := `
		UPDATE outcome_predictions SET
			status = $1, rejection_reason = $2, actual_improvement = $3,
			actual_outcome_note = $4, was_accurate = $5, outcome_recorded_at = $6,
			updated_at = $7
		WHERE id = $8 AND organization_id = $9
	`
	p.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		p.Status, p.RejectionReason, p.ActualImprovement,
		p.ActualOutcomeNote, p.WasAccurate, p.OutcomeRecordedAt,
		p.UpdatedAt, p.ID, p.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prediction: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperrors.NewNotFound("outcome prediction", nil)
	}
	return nil
}

func (r *predictionRepository) ListForPatient(ctx context.Context, orgID, patientID uuid.UUID) ([]*model.OutcomePrediction, error) {
	query := `
		SELECT * FROM outcome_predictions
		WHERE organization_id = $1 AND patient_id = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	var predictions []*model.OutcomePrediction
	if err := r.db.SelectContext(ctx, &predictions, query, orgID, patientID); err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return predictions, nil
}
