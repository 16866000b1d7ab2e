package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"elevate2/internal/models"
	"elevate2/internal/repositories"

	"github.com/google/uuid"
)

const documentURLExpiry = 15 * time.Minute

// UploadDocumentRequest carries one compliance document upload.
type UploadDocumentRequest struct {
	TenantID     uuid.UUID
	UserID       uuid.UUID
	ProgramSlug  string
	DocumentType string
	FileName     string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// MissingDocuments reports what still blocks clinical access for an
// enrollment.
type MissingDocuments struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	Required     []string  `json:"required"`
	Verified     []string  `json:"verified"`
	Missing      []string  `json:"missing"`
}

type DocumentService interface {
	Upload(ctx context.Context, req *UploadDocumentRequest) (*models.Document, error)
	Verify(ctx context.Context, tenantID, documentID uuid.UUID) error
	List(ctx context.Context, tenantID, enrollmentID uuid.UUID) ([]*models.Document, error)
	Missing(ctx context.Context, userID uuid.UUID, programSlug string) (*MissingDocuments, error)
	PresignedURL(ctx context.Context, document *models.Document) (string, error)
}

type documentService struct {
	documentRepo   repositories.DocumentRepository
	enrollmentRepo repositories.ProgramEnrollmentRepository
	storage        MinioService
	bucket         string
}

func NewDocumentService(
	documentRepo repositories.DocumentRepository,
	enrollmentRepo repositories.ProgramEnrollmentRepository,
	storage MinioService,
	bucket string,
) DocumentService {
	return &documentService{
		documentRepo:   documentRepo,
		enrollmentRepo: enrollmentRepo,
		storage:        storage,
		bucket:         bucket,
	}
}

// Upload stores the file and records the document row unverified. Once every
// required document type for the program has at least one upload, the
// enrollment's documents_submitted_at is stamped so the lifecycle can move
// past documents_pending. Verification stays a separate staff step.
func (s *documentService) Upload(ctx context.Context, req *UploadDocumentRequest) (*models.Document, error) {
	enrollment, program, err := s.enrollmentRepo.FindActiveWithProgram(ctx, req.UserID, req.ProgramSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment == nil || program == nil {
		return nil, fmt.Errorf("no active enrollment for program %s", req.ProgramSlug)
	}

	objectName := fmt.Sprintf("%s/%s/%s/%s", req.TenantID, enrollment.ID, req.DocumentType, req.FileName)
	if err := s.storage.UploadObject(ctx, s.bucket, objectName, req.ContentType, req.Body, req.Size); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	document := &models.Document{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		EnrollmentID: enrollment.ID,
		DocumentType: req.DocumentType,
		FileURL:      objectName,
		UploadedBy:   req.UserID,
	}
	if err := s.documentRepo.Create(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	if s.allTypesUploaded(ctx, enrollment.ID, program) {
		if err := s.enrollmentRepo.MarkDocumentsSubmitted(ctx, enrollment.ID); err != nil {
			return nil, fmt.Errorf("failed to mark documents submitted: %w", err)
		}
	}

	return document, nil
}

func (s *documentService) allTypesUploaded(ctx context.Context, enrollmentID uuid.UUID, program *models.Program) bool {
	required := program.RequiredDocuments()
	if len(required) == 0 {
		return true
	}
	documents, err := s.documentRepo.ListByEnrollment(ctx, program.TenantID, enrollmentID)
	if err != nil {
		return false
	}
	uploaded := make(map[string]bool, len(documents))
	for _, d := range documents {
		uploaded[d.DocumentType] = true
	}
	for _, t := range required {
		if !uploaded[t] {
			return false
		}
	}
	return true
}

func (s *documentService) Verify(ctx context.Context, tenantID, documentID uuid.UUID) error {
	return s.documentRepo.Verify(ctx, tenantID, documentID)
}

func (s *documentService) List(ctx context.Context, tenantID, enrollmentID uuid.UUID) ([]*models.Document, error) {
	return s.documentRepo.ListByEnrollment(ctx, tenantID, enrollmentID)
}

// Missing diffs the program's required document types against what has been
// verified for the student's active enrollment.
func (s *documentService) Missing(ctx context.Context, userID uuid.UUID, programSlug string) (*MissingDocuments, error) {
	enrollment, program, err := s.enrollmentRepo.FindActiveWithProgram(ctx, userID, programSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment == nil || program == nil {
		return nil, fmt.Errorf("no active enrollment for program %s", programSlug)
	}

	required := program.RequiredDocuments()
	verified, err := s.documentRepo.VerifiedTypes(ctx, enrollment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verified documents: %w", err)
	}
	have := make(map[string]bool, len(verified))
	for _, t := range verified {
		have[t] = true
	}

	result := &MissingDocuments{
		EnrollmentID: enrollment.ID,
		Required:     required,
		Verified:     verified,
	}
	for _, t := range required {
		if !have[t] {
			result.Missing = append(result.Missing, t)
		}
	}
	return result, nil
}

func (s *documentService) PresignedURL(ctx context.Context, document *models.Document) (string, error) {
	return s.storage.GetPresignedURL(s.bucket, document.FileURL, documentURLExpiry)
}
