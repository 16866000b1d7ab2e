package models

import (
	"time"

	"github.com/google/uuid"
)

// Program credentials with document requirements.
const (
	CredentialCNA    = "cna"
	CredentialBarber = "barber"
	CredentialHVAC   = "hvac"
)

// Compliance document types.
const (
	DocumentTypeTBTest          = "tb_test"
	DocumentTypeBackgroundCheck = "background_check"
	DocumentTypeGovernmentID    = "government_id"
)

type Document struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	EnrollmentID uuid.UUID  `json:"enrollment_id" db:"enrollment_id"`
	DocumentType string     `json:"document_type" db:"document_type"`
	FileURL      string     `json:"file_url" db:"file_url"`
	Verified     bool       `json:"verified" db:"verified"`
	VerifiedAt   *time.Time `json:"verified_at" db:"verified_at"`
	UploadedBy   uuid.UUID  `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
