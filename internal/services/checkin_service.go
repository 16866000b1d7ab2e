package services

import (
	"context"
	"fmt"
	"time"

	"elevate2/internal/caching"
	"elevate2/internal/models"
	"elevate2/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
)

const (
	checkinCodeLength  = 8
	maxCheckinHours    = 12
	defaultCodeTTL     = 4 * time.Hour
	redeemedKeyPattern = "elevate:checkin:redeemed:%s:%s"

	// Redemption attempts are rate limited per student to stop code guessing.
	redeemAttemptLimit  = 10
	redeemAttemptWindow = time.Minute
)

// IssueCodeRequest is a staff request to mint an attendance code for a
// session. Hours is the credit each redeeming student receives.
type IssueCodeRequest struct {
	TenantID  uuid.UUID
	IssuedBy  uuid.UUID
	ProgramID uuid.UUID
	SiteID    *uuid.UUID
	Hours     float64
	TTL       time.Duration
}

// RedeemCodeRequest is a student redemption attempt.
type RedeemCodeRequest struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	ProgramSlug string
	Code        string
}

type CheckinService interface {
	IssueCode(ctx context.Context, req *IssueCodeRequest) (*models.CheckinCode, error)
	RedeemCode(ctx context.Context, req *RedeemCodeRequest) (*TimeclockResult, error)
}

type checkinService struct {
	cache         caching.CacheService
	enforcement   EnforcementService
	timeclockRepo repositories.TimeclockRepository
	codeTTL       time.Duration
	now           func() time.Time
}

func NewCheckinService(
	cache caching.CacheService,
	enforcement EnforcementService,
	timeclockRepo repositories.TimeclockRepository,
	codeTTL time.Duration,
) CheckinService {
	if codeTTL <= 0 {
		codeTTL = defaultCodeTTL
	}
	return &checkinService{
		cache:         cache,
		enforcement:   enforcement,
		timeclockRepo: timeclockRepo,
		codeTTL:       codeTTL,
		now:           time.Now,
	}
}

// IssueCode mints a short-lived attendance code. Codes are never persisted
// to Postgres; expiry is the Redis TTL.
func (s *checkinService) IssueCode(ctx context.Context, req *IssueCodeRequest) (*models.CheckinCode, error) {
	if req.Hours <= 0 || req.Hours > maxCheckinHours {
		return nil, fmt.Errorf("hours must be between 0 and %d", maxCheckinHours)
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.codeTTL
	}

	code := &models.CheckinCode{
		Code:      random.String(checkinCodeLength, random.Uppercase, random.Numeric),
		ProgramID: req.ProgramID,
		SiteID:    req.SiteID,
		IssuedBy:  req.IssuedBy,
		Hours:     req.Hours,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.cache.SetCheckinCode(ctx, code, ttl); err != nil {
		return nil, fmt.Errorf("failed to store check-in code: %w", err)
	}
	return code, nil
}

// RedeemCode exchanges a valid code for a closed hours entry. Each student
// can redeem a given code once; the redemption marker shares the code's TTL.
func (s *checkinService) RedeemCode(ctx context.Context, req *RedeemCodeRequest) (*TimeclockResult, error) {
	limited, err := s.cache.IsRateLimited(ctx, fmt.Sprintf("checkin:redeem:%s", req.UserID.String()),
		redeemAttemptLimit, redeemAttemptWindow)
	if err == nil && limited {
		return nil, fmt.Errorf("too many check-in attempts, try again shortly")
	}

	code, err := s.cache.GetCheckinCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up check-in code: %w", err)
	}
	if code == nil {
		return nil, fmt.Errorf("check-in code is invalid or expired")
	}

	redeemedKey := fmt.Sprintf(redeemedKeyPattern, req.Code, req.UserID.String())
	already, err := s.cache.GetString(ctx, redeemedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check redemption: %w", err)
	}
	if already != "" {
		return nil, fmt.Errorf("check-in code already redeemed")
	}

	decision, err := s.enforcement.AuthorizeWithOverride(ctx, &AuthorizeRequest{
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		ProgramSlug: req.ProgramSlug,
		Action:      models.ActionCheckinCode,
		SiteID:      code.SiteID,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &TimeclockResult{Decision: decision}, nil
	}

	now := s.now()
	clockIn := now.Add(-time.Duration(code.Hours * float64(time.Hour)))
	hours := code.Hours
	entry := &models.TimeclockEntry{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		EnrollmentID: *decision.EnrollmentID,
		UserID:       req.UserID,
		SiteID:       code.SiteID,
		Method:       models.HoursMethodCheckin,
		ClockIn:      clockIn,
		ClockOut:     &now,
		Hours:        &hours,
	}
	if err := s.timeclockRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record check-in hours: %w", err)
	}

	ttl := code.ExpiresAt.Sub(now)
	if ttl > 0 {
		if err := s.cache.SetString(ctx, redeemedKey, "1", ttl); err != nil {
			return nil, fmt.Errorf("failed to mark code redeemed: %w", err)
		}
	}

	return &TimeclockResult{Decision: decision, Entry: entry}, nil
}
