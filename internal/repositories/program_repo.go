package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProgramRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error)
	GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Program, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Program, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type programRepo struct {
	db Database
}

func NewProgramRepo(db Database) ProgramRepository {
	return &programRepo{db: db}
}

const programColumns = `id, tenant_id, slug, name, program_type, credential, total_hours, created_at, updated_at`

func (r *programRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	program := &models.Program{}
	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&program.ID, &program.TenantID, &program.Slug,
		&program.Name, &program.Type, &program.Credential, &program.TotalHours,
		&program.CreatedAt, &program.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return program, nil
}

func (r *programRepo) GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Program, error) {
	program := &models.Program{}
	query := `SELECT ` + programColumns + ` FROM programs WHERE tenant_id = $1 AND slug = $2`
	err := r.db.QueryRow(ctx, query, tenantID, slug).Scan(&program.ID, &program.TenantID,
		&program.Slug, &program.Name, &program.Type, &program.Credential, &program.TotalHours,
		&program.CreatedAt, &program.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return program, nil
}

func (r *programRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Program, error) {
	query := `
		SELECT ` + programColumns + `
		FROM programs
		WHERE tenant_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []*models.Program
	for rows.Next() {
		program := &models.Program{}
		if err := rows.Scan(&program.ID, &program.TenantID, &program.Slug, &program.Name,
			&program.Type, &program.Credential, &program.TotalHours,
			&program.CreatedAt, &program.UpdatedAt); err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	return programs, rows.Err()
}

func (r *programRepo) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM programs WHERE tenant_id = $1`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&count)
	return count, err
}
