package models

import (
	"time"

	"github.com/google/uuid"
)

// Hour entry methods.
const (
	HoursMethodTimeclock = "timeclock"
	HoursMethodManual    = "manual"
	HoursMethodCheckin   = "checkin_code"
)

// TimeclockEntry is a logged training session. ClockOut is nil while the
// session is open; manual and check-in entries are written closed.
type TimeclockEntry struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	EnrollmentID uuid.UUID  `json:"enrollment_id" db:"enrollment_id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	PartnerID    *uuid.UUID `json:"partner_id" db:"partner_id"`
	SiteID       *uuid.UUID `json:"site_id" db:"site_id"`
	Method       string     `json:"method" db:"method"`
	ClockIn      time.Time  `json:"clock_in" db:"clock_in"`
	ClockOut     *time.Time `json:"clock_out" db:"clock_out"`
	Hours        *float64   `json:"hours" db:"hours"`
	Notes        *string    `json:"notes" db:"notes"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Partner is a training partner organization. Status active means the
// partner may host timeclock sessions.
type Partner struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Site is a physical training location. Approval is explicit, separate
// from the owning partner's status.
type Site struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	PartnerID uuid.UUID `json:"partner_id" db:"partner_id"`
	Name      string    `json:"name" db:"name"`
	Approved  bool      `json:"approved" db:"is_approved"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CheckinCode is a short-lived attendance code issued by staff and redeemed
// by students. Codes live in Redis only; this is the wire shape.
type CheckinCode struct {
	Code      string     `json:"code"`
	ProgramID uuid.UUID  `json:"program_id"`
	SiteID    *uuid.UUID `json:"site_id,omitempty"`
	IssuedBy  uuid.UUID  `json:"issued_by"`
	Hours     float64    `json:"hours"`
	ExpiresAt time.Time  `json:"expires_at"`
}
