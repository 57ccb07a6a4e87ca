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

type findingRepository struct {
	db *sqlx.DB
}

func NewFindingRepository(db *sqlx.DB) repository.FindingRepository {
	return &findingRepository{db: db}
}

func (r *findingRepository) Create(ctx context.Context, f *model.ContraindicationFinding) error {
	query := `
		INSERT INTO contraindication_findings (
			id, organization_id, patient_id, encounter_id, rule_id,
			procedure_name, procedure_code, type, severity, reason, source,
			matched_keywords, is_permanent, expires_at, review_date,
			is_overridden, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19
		)
	`
	f.CreatedAt = time.Now()
	f.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.OrganizationID, f.PatientID, f.EncounterID, f.RuleID,
		f.ProcedureName, f.ProcedureCode, f.Type, f.Severity, f.Reason, f.Source,
		f.MatchedKeywords, f.IsPermanent, f.ExpiresAt, f.ReviewDate,
		f.IsOverridden, f.IsActive, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create finding: %w", err)
	}
	return nil
}

func (r *findingRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.ContraindicationFinding, error) {
	query := `
		SELECT * FROM contraindication_findings
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	var finding model.ContraindicationFinding
	err := r.db.GetContext(ctx, &finding, query, id, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("contraindication finding", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get finding: %w", err)
	}
	return &finding, nil
}

func (r *findingRepository) Update(ctx context.Context, f *model.ContraindicationFinding) error {
	query := `
		UPDATE contraindication_findings SET
			is_overridden = $1, override_reason = $2, overridden_at = $3, overridden_by = $4,
			is_active = $5, deactivate_note = $6, expires_at = $7, review_date = $8,
			updated_at = $9
		WHERE id = $10 AND organization_id = $11
	`
	f.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		f.IsOverridden, f.OverrideReason, f.OverriddenAt, f.OverriddenBy,
		f.IsActive, f.DeactivateNote, f.ExpiresAt, f.ReviewDate,
		f.UpdatedAt, f.ID, f.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update finding: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperrors.NewNotFound("contraindication finding", nil)
	}
	return nil
}

func (r *findingRepository) ListForPatient(ctx context.Context, orgID, patientID uuid.UUID, activeOnly bool) ([]*model.ContraindicationFinding, error) {
	query := `
		SELECT * FROM contraindication_findings
		WHERE organization_id = $1 AND patient_id = $2 AND deleted_at IS NULL
	`
	if activeOnly {
		query += ` AND is_active = true AND (expires_at IS NULL OR expires_at > now())`
	}
	query += ` ORDER BY created_at DESC`

	var findings []*model.ContraindicationFinding
	if err := r.db.SelectContext(ctx, &findings, query, orgID, patientID); err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	return findings, nil
}

func (r *findingRepository) FindActive(ctx context.Context, orgID, patientID uuid.UUID, ruleID, procedure string) (*model.ContraindicationFinding, error) {
	query := `
		SELECT * FROM contraindication_findings
		WHERE organization_id = $1 AND patient_id = $2
		  AND rule_id = $3 AND procedure_name = $4
		  AND is_active = true AND deleted_at IS NULL
		  AND (expires_at IS NULL OR expires_at > now())
		LIMIT 1
	`
	var finding model.ContraindicationFinding
	err := r.db.GetContext(ctx, &finding, query, orgID, patientID, ruleID, procedure)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active finding: %w", err)
	}
	return &finding, nil
}
