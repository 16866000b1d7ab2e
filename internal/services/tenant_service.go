package services

import (
	"context"
	"errors"
	"strings"

	"elevate2/internal/caching"
	"elevate2/internal/models"
	"elevate2/internal/repositories"

	"github.com/google/uuid"
)

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	Update(ctx context.Context, req *UpdateTenantRequest) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	cache      caching.CacheService
}

func NewTenantService(tenantRepo repositories.TenantRepository, cache caching.CacheService) TenantService {
	return &tenantService{tenantRepo: tenantRepo, cache: cache}
}

type CreateTenantRequest struct {
	Name   string `json:"name" validate:"required"`
	Domain string `json:"domain" validate:"required"`
}

type UpdateTenantRequest struct {
	ID     uuid.UUID
	Name   string `json:"name" validate:"required"`
	Domain string `json:"domain" validate:"required"`
	Status string `json:"status" validate:"required"`
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	if req.Name == "" || req.Domain == "" {
		return nil, errors.New("name and domain are required")
	}
	if strings.TrimSpace(req.Domain) != req.Domain {
		return nil, errors.New("domain cannot have spaces")
	}

	tenant := &models.Tenant{
		ID:     uuid.New(),
		Name:   req.Name,
		Domain: req.Domain,
		Status: "active",
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	if domain == "" {
		return nil, errors.New("domain is required")
	}
	return s.tenantRepo.GetByDomain(ctx, domain)
}

func (s *tenantService) Update(ctx context.Context, req *UpdateTenantRequest) error {
	existing, err := s.tenantRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.Domain = req.Domain
	existing.Status = req.Status

	if err := s.tenantRepo.Update(ctx, existing); err != nil {
		return err
	}

	// A status flip must not keep serving through the cached license.
	_ = s.cache.DeleteLicense(ctx, req.ID)
	return nil
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.tenantRepo.List(ctx, limit, offset)
}
