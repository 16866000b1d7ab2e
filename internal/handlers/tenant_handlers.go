package handlers

import (
	"net/http"

	"elevate2/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TenantHandlers handles tenant-related HTTP requests
type TenantHandlers struct {
	tenantService services.TenantService
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// ListTenantsRequest represents query parameters for listing tenants
type ListTenantsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListTenants handles getting a list of tenants (admin only)
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	var req ListTenantsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	tenants, err := h.tenantService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list tenants")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"limit":   req.Limit,
		"offset":  req.Offset,
	})
}

// CreateTenantRequest represents the tenant creation request payload
type CreateTenantRequest struct {
	Name   string `json:"name" validate:"required"`
	Domain string `json:"domain" validate:"required"`
}

// CreateTenant handles creating a new tenant (admin only)
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	var req CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Name == "" || req.Domain == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and domain are required")
	}
	if len(req.Domain) < 3 {
		return echo.NewHTTPError(http.StatusBadRequest, "Domain must be at least 3 characters long")
	}

	tenant, err := h.tenantService.Create(c.Request().Context(), &services.CreateTenantRequest{
		Name:   req.Name,
		Domain: req.Domain,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create tenant")
	}

	return c.JSON(http.StatusCreated, tenant)
}

// GetTenant handles getting tenant details by ID
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tenant ID format")
	}

	tenant, err := h.tenantService.GetByID(c.Request().Context(), tenantID)
	if err != nil || tenant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenantRequest represents the tenant update request payload
type UpdateTenantRequest struct {
	Name   *string `json:"name"`
	Domain *string `json:"domain"`
	Status *string `json:"status"`
}

// UpdateTenant handles updating tenant details (admin only)
func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tenant ID format")
	}

	var req UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	existing, err := h.tenantService.GetByID(c.Request().Context(), tenantID)
	if err != nil || existing == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	updateReq := &services.UpdateTenantRequest{
		ID:     tenantID,
		Name:   existing.Name,
		Domain: existing.Domain,
		Status: existing.Status,
	}
	if req.Name != nil {
		updateReq.Name = *req.Name
	}
	if req.Domain != nil {
		updateReq.Domain = *req.Domain
	}
	if req.Status != nil {
		updateReq.Status = *req.Status
	}

	if err := h.tenantService.Update(c.Request().Context(), updateReq); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update tenant")
	}

	updated, err := h.tenantService.GetByID(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Tenant updated but failed to retrieve")
	}

	return c.JSON(http.StatusOK, updated)
}

// GetTenantByDomain handles resolving a tenant from its domain
func (h *TenantHandlers) GetTenantByDomain(c echo.Context) error {
	domain := c.Param("domain")
	if domain == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Domain is required")
	}

	tenant, err := h.tenantService.GetByDomain(c.Request().Context(), domain)
	if err != nil || tenant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	return c.JSON(http.StatusOK, tenant)
}
