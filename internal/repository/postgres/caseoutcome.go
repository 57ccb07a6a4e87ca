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

type caseOutcomeRepository struct {
	db *sqlx.DB
}

func NewCaseOutcomeRepository(db *sqlx.DB) repository.CaseOutcomeRepository {
	return &caseOutcomeRepository{db: db}
}

func (r *caseOutcomeRepository) Create(ctx context.Context, c *model.CaseOutcome) error {
	query := `
		INSERT INTO case_outcomes (
			id, organization_id, condition_code, age_at_onset, duration_class,
			actual_improvement, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.OrganizationID, c.ConditionCode, c.AgeAtOnset, c.DurationClass,
		c.ActualImprovement, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create case outcome: %w", err)
	}
	return nil
}

func (r *caseOutcomeRepository) ListByConditionPrefix(ctx context.Context, orgID uuid.UUID, prefix string, filters repository.CaseFilters) ([]*model.CaseOutcome, error) {
	query := `
		SELECT * FROM case_outcomes
		WHERE organization_id = $1 AND condition_code LIKE $2 || '%' AND deleted_at IS NULL
	`
	args := []interface{}{orgID, prefix}
	idx := 3
	if filters.AgeBand > 0 {
		query += fmt.Sprintf(` AND age_at_onset BETWEEN $%d AND $%d`, idx, idx+1)
		args = append(args, filters.AgeCenter-filters.AgeBand, filters.AgeCenter+filters.AgeBand)
		idx += 2
	}
	if filters.DurationClass != "" {
		query += fmt.Sprintf(` AND duration_class = $%d`, idx)
		args = append(args, filters.DurationClass)
	}

	var cases []*model.CaseOutcome
	if err := r.db.SelectContext(ctx, &cases, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list case outcomes: %w", err)
	}
	return cases, nil
}
