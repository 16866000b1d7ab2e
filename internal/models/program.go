package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgramType determines which enrollment actions a program permits.
type ProgramType string

const (
	ProgramTypeInternalApprenticeship ProgramType = "internal_apprenticeship"
	ProgramTypeInternalClock          ProgramType = "internal_clock_program"
	ProgramTypeExternalLMSWrapped     ProgramType = "external_lms_wrapped"
)

// EnrollmentAction is an attempted operation against an enrollment.
type EnrollmentAction string

const (
	ActionClockIn        EnrollmentAction = "clock_in"
	ActionClockOut       EnrollmentAction = "clock_out"
	ActionLogHoursManual EnrollmentAction = "log_hours_manual"
	ActionCheckinCode    EnrollmentAction = "checkin_code"
	ActionCourseAccess   EnrollmentAction = "course_access"
)

// actionMatrix is the full program-type permission table in one place.
// Externally wrapped LMS programs get course access only; hours, timeclock
// and check-in codes live in the external system.
var actionMatrix = map[ProgramType]map[EnrollmentAction]bool{
	ProgramTypeInternalApprenticeship: {
		ActionClockIn:        true,
		ActionClockOut:       true,
		ActionLogHoursManual: true,
		ActionCheckinCode:    true,
		ActionCourseAccess:   true,
	},
	ProgramTypeInternalClock: {
		ActionClockIn:        true,
		ActionClockOut:       true,
		ActionLogHoursManual: true,
		ActionCheckinCode:    true,
		ActionCourseAccess:   true,
	},
	ProgramTypeExternalLMSWrapped: {
		ActionCourseAccess: true,
	},
}

// Allows reports whether the program type permits the action at all.
// Compliance gates (start date, documents, payment) are checked separately;
// this is the hard gate that no bypass flag can lift.
func (pt ProgramType) Allows(action EnrollmentAction) bool {
	perms, ok := actionMatrix[pt]
	if !ok {
		return false
	}
	return perms[action]
}

// IsTimeclockAction reports whether the action moves logged hours and so is
// subject to the start-date, payment and partner gates.
func IsTimeclockAction(action EnrollmentAction) bool {
	switch action {
	case ActionClockIn, ActionClockOut, ActionLogHoursManual, ActionCheckinCode:
		return true
	}
	return false
}

type Program struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	TenantID    uuid.UUID   `json:"tenant_id" db:"tenant_id"`
	Slug        string      `json:"slug" db:"slug"`
	Name        string      `json:"name" db:"name"`
	Type        ProgramType `json:"type" db:"program_type"`
	Credential  string      `json:"credential" db:"credential"`
	TotalHours  *int        `json:"total_hours" db:"total_hours"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// requiredDocuments maps a program credential to the document types that
// must be uploaded and verified before clinical/timeclock actions.
var requiredDocuments = map[string][]string{
	CredentialCNA: {DocumentTypeTBTest, DocumentTypeBackgroundCheck},
}

// RequiredDocuments returns the verified-document requirements for the
// program, nil when the credential has none.
func (p *Program) RequiredDocuments() []string {
	return requiredDocuments[p.Credential]
}
