package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PartnerRepository interface {
	GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	GetSite(ctx context.Context, id uuid.UUID) (*models.Site, error)
}

type partnerRepo struct {
	db Database
}

func NewPartnerRepo(db Database) PartnerRepository {
	return &partnerRepo{db: db}
}

func (r *partnerRepo) GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	partner := &models.Partner{}
	query := `
		SELECT id, tenant_id, name, status, created_at
		FROM partners
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&partner.ID, &partner.TenantID, &partner.Name,
		&partner.Status, &partner.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return partner, nil
}

func (r *partnerRepo) GetSite(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	site := &models.Site{}
	query := `
		SELECT id, tenant_id, partner_id, name, is_approved, created_at
		FROM training_sites
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&site.ID, &site.TenantID, &site.PartnerID,
		&site.Name, &site.Approved, &site.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return site, nil
}
