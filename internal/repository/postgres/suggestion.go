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

type suggestionRepository struct {
	db *sqlx.DB
}

func NewSuggestionRepository(db *sqlx.DB) repository.SuggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) Create(ctx context.Context, s *model.DiagnosisSuggestion) error {
	query := `
		INSERT INTO diagnosis_suggestions (
			id, organization_id, patient_id, encounter_id, code, description,
			confidence, reasoning, supporting_evidence, has_red_flags,
			evidence_level, suggestion_source, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.OrganizationID, s.PatientID, s.EncounterID, s.Code, s.Description,
		s.Confidence, s.Reasoning, s.SupportingEvidence, s.HasRedFlags,
		s.EvidenceLevel, s.SuggestionSource, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create suggestion: %w", err)
	}
	return nil
}

func (r *suggestionRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.DiagnosisSuggestion, error) {
	query := `SELECT * FROM diagnosis_suggestions WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`
	var s model.DiagnosisSuggestion
	err := r.db.GetContext(ctx, &s, query, id, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("diagnosis suggestion", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	return &s, nil
}

func (r *suggestionRepository) Update(ctx context.Context, s *model.DiagnosisSuggestion) error {
	query := `
		UPDATE diagnosis_suggestions SET
			status = $1, rejection_reason = $2, diagnosis_id = $3,
			decided_at = $4, decided_by = $5, updated_at = $6
		WHERE id = $7 AND organization_id = $8
	`
	s.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		s.Status, s.RejectionReason, s.DiagnosisID,
		s.DecidedAt, s.DecidedBy, s.UpdatedAt, s.ID, s.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update suggestion: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperrors.NewNotFound("diagnosis suggestion", nil)
	}
	return nil
}

func (r *suggestionRepository) ListForPatient(ctx context.Context, orgID, patientID uuid.UUID) ([]*model.DiagnosisSuggestion, error) {
	query := `
		SELECT * FROM diagnosis_suggestions
		WHERE organization_id = $1 AND patient_id = $2 AND deleted_at IS NULL
		ORDER BY confidence DESC, created_at DESC
	`
	var suggestions []*model.DiagnosisSuggestion
	if err := r.db.SelectContext(ctx, &suggestions, query, orgID, patientID); err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return suggestions, nil
}
