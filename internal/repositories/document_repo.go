package repositories

import (
	"context"

	"elevate2/internal/models"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	ListByEnrollment(ctx context.Context, tenantID, enrollmentID uuid.UUID) ([]*models.Document, error)
	VerifiedTypes(ctx context.Context, enrollmentID uuid.UUID) ([]string, error)
	Verify(ctx context.Context, tenantID, id uuid.UUID) error
}

type documentRepo struct {
	db Database
}

func NewDocumentRepo(db Database) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, document *models.Document) error {
	query := `
		INSERT INTO documents (id, tenant_id, enrollment_id, document_type, file_url, verified, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, document.ID, document.TenantID, document.EnrollmentID,
		document.DocumentType, document.FileURL, document.Verified, document.UploadedBy)
	return err
}

func (r *documentRepo) ListByEnrollment(ctx context.Context, tenantID, enrollmentID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, tenant_id, enrollment_id, document_type, file_url, verified, verified_at, uploaded_by, created_at, updated_at
		FROM documents
		WHERE tenant_id = $1 AND enrollment_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, enrollmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		document := &models.Document{}
		if err := rows.Scan(&document.ID, &document.TenantID, &document.EnrollmentID,
			&document.DocumentType, &document.FileURL, &document.Verified, &document.VerifiedAt,
			&document.UploadedBy, &document.CreatedAt, &document.UpdatedAt); err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}
	return documents, rows.Err()
}

// VerifiedTypes returns the distinct document types with a verified upload
// for the enrollment. The enforcement gate diffs this against the
// program's required set.
func (r *documentRepo) VerifiedTypes(ctx context.Context, enrollmentID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT document_type
		FROM documents
		WHERE enrollment_id = $1 AND verified = true
	`
	rows, err := r.db.Query(ctx, query, enrollmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var documentType string
		if err := rows.Scan(&documentType); err != nil {
			return nil, err
		}
		types = append(types, documentType)
	}
	return types, rows.Err()
}

func (r *documentRepo) Verify(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE documents
		SET verified = true, verified_at = NOW(), updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}
