package models

import "time"

// EnrollmentState is the derived lifecycle position of a program
// enrollment. Stored state wins when present; otherwise it is derived from
// the compliance timestamps.
type EnrollmentState string

const (
	StateApplicationSubmitted       EnrollmentState = "application_submitted"
	StatePaymentPending             EnrollmentState = "payment_pending"
	StateEnrolledPendingOrientation EnrollmentState = "enrolled_pending_orientation"
	StateDocumentsPending           EnrollmentState = "documents_pending"
	StateActiveEnrolled             EnrollmentState = "active_enrolled"
	StatePaymentHold                EnrollmentState = "payment_hold"
	StateSuspended                  EnrollmentState = "suspended"
	StateCompleted                  EnrollmentState = "completed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s EnrollmentState) Valid() bool {
	switch s {
	case StateApplicationSubmitted, StatePaymentPending, StateEnrolledPendingOrientation,
		StateDocumentsPending, StateActiveEnrolled, StatePaymentHold, StateSuspended, StateCompleted:
		return true
	}
	return false
}

// StateSnapshot is the input to DeriveState: the enrollment row plus the
// payment facts loaded alongside it.
type StateSnapshot struct {
	Status                 string
	StoredState            *string
	OrientationCompletedAt *time.Time
	DocumentsSubmittedAt   *time.Time
	PaymentPastDueDays     int
	PaymentGraceDays       int
}

// DeriveState resolves the current lifecycle state for an enrollment.
// Terminal stored states (suspended, completed) always win. A payment past
// due beyond the grace window puts an otherwise-active enrollment on hold.
func DeriveState(s StateSnapshot) EnrollmentState {
	if s.StoredState != nil {
		switch EnrollmentState(*s.StoredState) {
		case StateSuspended:
			return StateSuspended
		case StateCompleted:
			return StateCompleted
		}
	}

	switch s.Status {
	case EnrollmentStatusCompleted:
		return StateCompleted
	case "suspended":
		return StateSuspended
	case "pending_payment":
		return StatePaymentPending
	case "applied":
		return StateApplicationSubmitted
	}

	if s.PaymentPastDueDays > s.PaymentGraceDays {
		return StatePaymentHold
	}
	if s.OrientationCompletedAt == nil {
		return StateEnrolledPendingOrientation
	}
	if s.DocumentsSubmittedAt == nil {
		return StateDocumentsPending
	}
	return StateActiveEnrolled
}
