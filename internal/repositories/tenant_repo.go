package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db Database
}

func NewTenantRepo(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, domain, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.Domain, tenant.Status)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, name, domain, status, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.Domain,
		&tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, name, domain, status, created_at, updated_at
		FROM tenants
		WHERE domain = $1
	`
	err := r.db.QueryRow(ctx, query, domain).Scan(&tenant.ID, &tenant.Name, &tenant.Domain,
		&tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, domain = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, tenant.Name, tenant.Domain, tenant.Status, tenant.ID)
	return err
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `
		SELECT id, name, domain, status, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.Domain, &tenant.Status,
			&tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}
