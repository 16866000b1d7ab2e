package handlers

import (
	"net/http"

	"elevate2/internal/common"
	"elevate2/internal/models"
	"elevate2/internal/services"

	"github.com/labstack/echo/v4"
)

// DocumentHandlers handles compliance document HTTP requests
type DocumentHandlers struct {
	documentService services.DocumentService
}

// NewDocumentHandlers creates a new document handlers instance
func NewDocumentHandlers(documentService services.DocumentService) *DocumentHandlers {
	return &DocumentHandlers{documentService: documentService}
}

var validDocumentTypes = map[string]bool{
	models.DocumentTypeTBTest:          true,
	models.DocumentTypeBackgroundCheck: true,
	models.DocumentTypeGovernmentID:    true,
}

// UploadDocument handles a multipart compliance document upload
func (h *DocumentHandlers) UploadDocument(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	programSlug := c.FormValue("program_slug")
	if err := common.ValidateRequiredString(programSlug, "program_slug"); err != nil {
		return common.SendValidationError(c, "program_slug", err.Error())
	}
	documentType := c.FormValue("document_type")
	if !validDocumentTypes[documentType] {
		return common.SendValidationError(c, "document_type", "unknown document type")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer file.Close()

	document, err := h.documentService.Upload(ctx, &services.UploadDocumentRequest{
		TenantID:     tenantID,
		UserID:       userID,
		ProgramSlug:  programSlug,
		DocumentType: documentType,
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Body:         file,
	})
	if err != nil {
		return common.SendServerError(c, "Failed to upload document")
	}
	return c.JSON(http.StatusCreated, document)
}

// VerifyDocument handles staff verification of an uploaded document
func (h *DocumentHandlers) VerifyDocument(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	documentID, err := common.ValidateUUID(c.Param("id"), "document id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.documentService.Verify(ctx, tenantID, documentID); err != nil {
		return common.SendServerError(c, "Failed to verify document")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Document verified"})
}

// ListDocuments handles listing documents for an enrollment
func (h *DocumentHandlers) ListDocuments(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	enrollmentID, err := common.ValidateUUID(c.QueryParam("enrollment_id"), "enrollment_id")
	if err != nil {
		return common.SendValidationError(c, "enrollment_id", err.Error())
	}

	documents, err := h.documentService.List(ctx, tenantID, enrollmentID)
	if err != nil {
		return common.SendServerError(c, "Failed to list documents")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"documents": documents})
}

// MissingDocuments handles the missing-documents diff for the caller
func (h *DocumentHandlers) MissingDocuments(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	programSlug := c.QueryParam("program_slug")
	if err := common.ValidateRequiredString(programSlug, "program_slug"); err != nil {
		return common.SendValidationError(c, "program_slug", err.Error())
	}

	missing, err := h.documentService.Missing(ctx, userID, programSlug)
	if err != nil {
		return common.SendNotFoundError(c, "Enrollment")
	}
	return c.JSON(http.StatusOK, missing)
}
