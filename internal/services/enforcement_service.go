package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"elevate2/internal/models"
	"elevate2/internal/repositories"

	"github.com/google/uuid"
)

// Denial codes returned on enforcement decisions. Clients branch on these,
// so they are part of the API contract.
const (
	DenyActionNotAllowed      = "ACTION_NOT_ALLOWED"
	DenyNoEnrollment          = "NO_ENROLLMENT"
	DenyEnrollmentSuspended   = "ENROLLMENT_SUSPENDED"
	DenyEnrollmentCompleted   = "ENROLLMENT_COMPLETED"
	DenyPaymentRequired       = "PAYMENT_REQUIRED"
	DenyPaymentPending        = "PAYMENT_PENDING"
	DenyPaymentHold           = "PAYMENT_HOLD"
	DenyOrientationRequired   = "ORIENTATION_REQUIRED"
	DenyDocumentsRequired     = "DOCUMENTS_REQUIRED"
	DenyCNATBTestRequired     = "CNA_TB_TEST_REQUIRED"
	DenyCNABackgroundRequired = "CNA_BACKGROUND_CHECK_REQUIRED"
	DenyStartDateMissing      = "START_DATE_MISSING"
	DenyStartDateNotReached   = "START_DATE_NOT_REACHED"
	DenyPartnerNotApproved    = "PARTNER_NOT_APPROVED"
	DenySiteNotApproved       = "SITE_NOT_APPROVED"
	DenyStateViolation        = "STATE_VIOLATION"
)

// WarnPaymentPastDue flags a past-due subscription still inside the grace
// window. The action proceeds.
const WarnPaymentPastDue = "PAYMENT_PAST_DUE"

// nonOverridable lists the denial codes no admin override can lift. These
// are compliance gates: training hours logged against a future start date,
// missing clinical documents or an unapproved site are regulatory problems,
// not customer-service ones.
var nonOverridable = map[string]bool{
	DenyActionNotAllowed:      true,
	DenyNoEnrollment:          true,
	DenyEnrollmentCompleted:   true,
	DenyOrientationRequired:   true,
	DenyDocumentsRequired:     true,
	DenyCNATBTestRequired:     true,
	DenyCNABackgroundRequired: true,
	DenyStartDateMissing:      true,
	DenyStartDateNotReached:   true,
	DenyPartnerNotApproved:    true,
	DenySiteNotApproved:       true,
}

// AuthorizeRequest identifies the attempt being checked.
type AuthorizeRequest struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	ProgramSlug string
	Action      models.EnrollmentAction
	PartnerID   *uuid.UUID
	SiteID      *uuid.UUID
}

// Decision is the outcome of an enforcement check. Denied decisions carry
// the code and a human message; Overridden marks an admin exemption that
// converted a denial into a grant.
type Decision struct {
	Allowed        bool                   `json:"allowed"`
	Code           string                 `json:"code,omitempty"`
	Message        string                 `json:"message,omitempty"`
	State          models.EnrollmentState `json:"state,omitempty"`
	EnrollmentID   *uuid.UUID             `json:"enrollment_id,omitempty"`
	Warnings       []string               `json:"warnings,omitempty"`
	Overridden     bool                   `json:"overridden,omitempty"`
	OverrideReason string                 `json:"override_reason,omitempty"`
}

type EnforcementService interface {
	// Authorize evaluates the full gate chain for an attempted action and
	// records the decision in the audit trail.
	Authorize(ctx context.Context, req *AuthorizeRequest) (*Decision, error)
	// AuthorizeWithOverride runs Authorize and then, on an overridable
	// denial, consults active admin overrides for the user and action.
	AuthorizeWithOverride(ctx context.Context, req *AuthorizeRequest) (*Decision, error)
}

type enforcementService struct {
	enrollmentRepo   repositories.ProgramEnrollmentRepository
	subscriptionRepo repositories.SubscriptionRepository
	documentRepo     repositories.DocumentRepository
	timeclockRepo    repositories.TimeclockRepository
	partnerRepo      repositories.PartnerRepository
	overrideRepo     repositories.OverrideRepository
	auditRepo        repositories.PermissionAuditRepository
	graceDays        int
	now              func() time.Time
}

func NewEnforcementService(
	enrollmentRepo repositories.ProgramEnrollmentRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	documentRepo repositories.DocumentRepository,
	timeclockRepo repositories.TimeclockRepository,
	partnerRepo repositories.PartnerRepository,
	overrideRepo repositories.OverrideRepository,
	auditRepo repositories.PermissionAuditRepository,
	graceDays int,
) EnforcementService {
	return &enforcementService{
		enrollmentRepo:   enrollmentRepo,
		subscriptionRepo: subscriptionRepo,
		documentRepo:     documentRepo,
		timeclockRepo:    timeclockRepo,
		partnerRepo:      partnerRepo,
		overrideRepo:     overrideRepo,
		auditRepo:        auditRepo,
		graceDays:        graceDays,
		now:              time.Now,
	}
}

func (s *enforcementService) Authorize(ctx context.Context, req *AuthorizeRequest) (*Decision, error) {
	decision, err := s.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, req, decision)
	return decision, nil
}

func (s *enforcementService) AuthorizeWithOverride(ctx context.Context, req *AuthorizeRequest) (*Decision, error) {
	decision, err := s.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed && !nonOverridable[decision.Code] {
		override, err := s.overrideRepo.FindActive(ctx, req.UserID, req.Action)
		if err != nil {
			return nil, fmt.Errorf("failed to look up overrides: %w", err)
		}
		if override != nil {
			decision = &Decision{
				Allowed:        true,
				State:          decision.State,
				EnrollmentID:   decision.EnrollmentID,
				Warnings:       decision.Warnings,
				Overridden:     true,
				OverrideReason: override.Reason,
			}
		}
	}
	s.audit(ctx, req, decision)
	return decision, nil
}

// evaluate runs the gate chain without side effects. Gate order: enrollment
// existence, program-type matrix, lifecycle state, then the per-state
// compliance gates for timeclock actions.
func (s *enforcementService) evaluate(ctx context.Context, req *AuthorizeRequest) (*Decision, error) {
	enrollment, program, err := s.enrollmentRepo.FindActiveWithProgram(ctx, req.UserID, req.ProgramSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment == nil || program == nil {
		return deny(DenyNoEnrollment, "No active enrollment found for this program."), nil
	}

	// The program-type matrix is the hard gate. No state, flag or override
	// gets an LMS-wrapped student onto the timeclock.
	if !program.Type.Allows(req.Action) {
		d := deny(DenyActionNotAllowed,
			fmt.Sprintf("Action %s is not available for %s programs.", req.Action, program.Type))
		d.EnrollmentID = &enrollment.ID
		return d, nil
	}

	subscription, err := s.subscriptionRepo.GetByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	now := s.now()
	pastDueDays := subscription.PastDueDays(now)
	state := models.DeriveState(models.StateSnapshot{
		Status:                 enrollment.Status,
		StoredState:            enrollment.State,
		OrientationCompletedAt: enrollment.OrientationCompletedAt,
		DocumentsSubmittedAt:   enrollment.DocumentsSubmittedAt,
		PaymentPastDueDays:     pastDueDays,
		PaymentGraceDays:       s.graceDays,
	})

	decision := &Decision{State: state, EnrollmentID: &enrollment.ID}

	switch state {
	case models.StateSuspended:
		return denyIn(decision, DenyEnrollmentSuspended,
			"Enrollment is suspended. Contact your program administrator."), nil

	case models.StateCompleted:
		if req.Action == models.ActionCourseAccess {
			decision.Allowed = true
			return decision, nil
		}
		return denyIn(decision, DenyEnrollmentCompleted,
			"Program is complete. Hours can no longer be logged."), nil

	case models.StateApplicationSubmitted:
		return denyIn(decision, DenyPaymentRequired,
			"Application received. Complete payment to activate your enrollment."), nil

	case models.StatePaymentPending:
		return denyIn(decision, DenyPaymentPending,
			"Payment is processing. Access unlocks once it clears."), nil

	case models.StateEnrolledPendingOrientation:
		return denyIn(decision, DenyOrientationRequired,
			"Complete orientation before accessing program features."), nil

	case models.StateDocumentsPending:
		if req.Action == models.ActionCourseAccess {
			decision.Allowed = true
			return decision, nil
		}
		return s.documentGate(ctx, decision, enrollment, program)

	case models.StatePaymentHold:
		if req.Action == models.ActionCourseAccess {
			decision.Allowed = true
			return decision, nil
		}
		// A student mid-shift may always close their open session. Trapping
		// an open entry would corrupt the hours record.
		if req.Action == models.ActionClockOut {
			open, err := s.timeclockRepo.FindOpen(ctx, enrollment.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check open session: %w", err)
			}
			if open != nil {
				decision.Allowed = true
				decision.Warnings = append(decision.Warnings, DenyPaymentHold)
				return decision, nil
			}
		}
		return denyIn(decision, DenyPaymentHold,
			fmt.Sprintf("Account is %d days past due. Update payment to resume.", pastDueDays)), nil
	}

	// active_enrolled from here on.
	if !models.IsTimeclockAction(req.Action) {
		decision.Allowed = true
		return decision, nil
	}

	if enrollment.StartDate == nil {
		return denyIn(decision, DenyStartDateMissing,
			"No program start date on record. Contact your program administrator."), nil
	}
	if now.Before(*enrollment.StartDate) {
		return denyIn(decision, DenyStartDateNotReached,
			fmt.Sprintf("Program starts %s. Hours cannot be logged before then.",
				enrollment.StartDate.Format("January 2, 2006"))), nil
	}

	if d, err := s.documentGate(ctx, decision, enrollment, program); err != nil || !d.Allowed {
		return d, err
	}

	if d, err := s.partnerGate(ctx, req, decision, enrollment); err != nil || !d.Allowed {
		return d, err
	}

	if pastDueDays > 0 {
		decision.Warnings = append(decision.Warnings, WarnPaymentPastDue)
	}
	decision.Allowed = true
	return decision, nil
}

// documentGate checks that every document the program's credential requires
// has been uploaded and verified. CNA clinical documents get their own
// codes so the client can deep-link the right upload form.
func (s *enforcementService) documentGate(ctx context.Context, decision *Decision, enrollment *models.ProgramEnrollment, program *models.Program) (*Decision, error) {
	required := program.RequiredDocuments()
	if len(required) == 0 {
		decision.Allowed = true
		return decision, nil
	}

	verified, err := s.documentRepo.VerifiedTypes(ctx, enrollment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verified documents: %w", err)
	}
	have := make(map[string]bool, len(verified))
	for _, t := range verified {
		have[t] = true
	}

	for _, docType := range required {
		if have[docType] {
			continue
		}
		switch docType {
		case models.DocumentTypeTBTest:
			return denyIn(decision, DenyCNATBTestRequired,
				"A verified TB test is required before clinical hours."), nil
		case models.DocumentTypeBackgroundCheck:
			return denyIn(decision, DenyCNABackgroundRequired,
				"A verified background check is required before clinical hours."), nil
		default:
			return denyIn(decision, DenyDocumentsRequired,
				fmt.Sprintf("Required document missing: %s.", docType)), nil
		}
	}

	decision.Allowed = true
	return decision, nil
}

// partnerGate validates the partner and site when the attempt names them.
// Clocking out of an open session is exempt so a partner deactivation
// cannot strand a student mid-shift.
func (s *enforcementService) partnerGate(ctx context.Context, req *AuthorizeRequest, decision *Decision, enrollment *models.ProgramEnrollment) (*Decision, error) {
	if req.PartnerID == nil && req.SiteID == nil {
		decision.Allowed = true
		return decision, nil
	}

	midShiftExempt := false
	if req.Action == models.ActionClockOut {
		open, err := s.timeclockRepo.FindOpen(ctx, enrollment.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check open session: %w", err)
		}
		midShiftExempt = open != nil
	}

	if req.PartnerID != nil {
		partner, err := s.partnerRepo.GetPartner(ctx, *req.PartnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load partner: %w", err)
		}
		if partner == nil || partner.Status != "active" {
			if midShiftExempt {
				decision.Warnings = append(decision.Warnings, DenyPartnerNotApproved)
			} else {
				return denyIn(decision, DenyPartnerNotApproved,
					"This training partner is not currently approved."), nil
			}
		}
	}

	if req.SiteID != nil {
		site, err := s.partnerRepo.GetSite(ctx, *req.SiteID)
		if err != nil {
			return nil, fmt.Errorf("failed to load site: %w", err)
		}
		if site == nil || !site.Approved {
			if midShiftExempt {
				decision.Warnings = append(decision.Warnings, DenySiteNotApproved)
			} else {
				return denyIn(decision, DenySiteNotApproved,
					"This training site is not currently approved."), nil
			}
		}
	}

	decision.Allowed = true
	return decision, nil
}

// audit records the decision best effort. A failed write is logged and
// swallowed; enforcement outcomes never depend on the audit table.
func (s *enforcementService) audit(ctx context.Context, req *AuthorizeRequest, decision *Decision) {
	eventType := models.AuditPermissionGranted
	if !decision.Allowed {
		eventType = models.AuditPermissionDenied
	}
	details := models.JSONB{"program_slug": req.ProgramSlug}
	if decision.Code != "" {
		details["code"] = decision.Code
	}
	if decision.Overridden {
		details["overridden"] = true
		details["override_reason"] = decision.OverrideReason
	}
	var state *models.EnrollmentState
	if decision.State != "" {
		state = &decision.State
	}
	err := s.auditRepo.Create(ctx, &models.PermissionAudit{
		ID:              uuid.New(),
		TenantID:        req.TenantID,
		UserID:          req.UserID,
		EventType:       eventType,
		AttemptedAction: req.Action,
		CurrentState:    state,
		Details:         details,
	})
	if err != nil {
		log.Printf("permission audit write failed: %v", err)
	}
}

func deny(code, message string) *Decision {
	return &Decision{Code: code, Message: message}
}

func denyIn(decision *Decision, code, message string) *Decision {
	decision.Allowed = false
	decision.Code = code
	decision.Message = message
	return decision
}
