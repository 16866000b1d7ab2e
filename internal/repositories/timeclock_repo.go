package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TimeclockRepository interface {
	Create(ctx context.Context, entry *models.TimeclockEntry) error
	FindOpen(ctx context.Context, enrollmentID uuid.UUID) (*models.TimeclockEntry, error)
	Close(ctx context.Context, id uuid.UUID) (*models.TimeclockEntry, error)
	TotalHours(ctx context.Context, enrollmentID uuid.UUID) (float64, error)
	ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID, limit, offset int) ([]*models.TimeclockEntry, error)
}

type timeclockRepo struct {
	db Database
}

func NewTimeclockRepo(db Database) TimeclockRepository {
	return &timeclockRepo{db: db}
}

const timeclockColumns = `id, tenant_id, enrollment_id, user_id, partner_id, site_id, method, clock_in, clock_out, hours, notes, created_at`

func (r *timeclockRepo) Create(ctx context.Context, entry *models.TimeclockEntry) error {
	query := `
		INSERT INTO timeclock_entries (id, tenant_id, enrollment_id, user_id, partner_id, site_id, method, clock_in, clock_out, hours, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.TenantID, entry.EnrollmentID, entry.UserID,
		entry.PartnerID, entry.SiteID, entry.Method, entry.ClockIn, entry.ClockOut, entry.Hours, entry.Notes)
	return err
}

// FindOpen returns the enrollment's open session (clock_out is null), or
// nil when there is none.
func (r *timeclockRepo) FindOpen(ctx context.Context, enrollmentID uuid.UUID) (*models.TimeclockEntry, error) {
	entry := &models.TimeclockEntry{}
	query := `
		SELECT ` + timeclockColumns + `
		FROM timeclock_entries
		WHERE enrollment_id = $1 AND clock_out IS NULL
	`
	err := r.db.QueryRow(ctx, query, enrollmentID).Scan(
		&entry.ID, &entry.TenantID, &entry.EnrollmentID, &entry.UserID, &entry.PartnerID,
		&entry.SiteID, &entry.Method, &entry.ClockIn, &entry.ClockOut, &entry.Hours,
		&entry.Notes, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// Close stamps clock_out on an open session and computes its hours in SQL
// so concurrent closes settle on the database clock.
func (r *timeclockRepo) Close(ctx context.Context, id uuid.UUID) (*models.TimeclockEntry, error) {
	entry := &models.TimeclockEntry{}
	query := `
		UPDATE timeclock_entries
		SET clock_out = NOW(),
		    hours = EXTRACT(EPOCH FROM (NOW() - clock_in)) / 3600.0
		WHERE id = $1 AND clock_out IS NULL
		RETURNING ` + timeclockColumns + `
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&entry.ID, &entry.TenantID, &entry.EnrollmentID, &entry.UserID, &entry.PartnerID,
		&entry.SiteID, &entry.Method, &entry.ClockIn, &entry.ClockOut, &entry.Hours,
		&entry.Notes, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (r *timeclockRepo) TotalHours(ctx context.Context, enrollmentID uuid.UUID) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM timeclock_entries
		WHERE enrollment_id = $1 AND hours IS NOT NULL
	`
	err := r.db.QueryRow(ctx, query, enrollmentID).Scan(&total)
	return total, err
}

func (r *timeclockRepo) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID, limit, offset int) ([]*models.TimeclockEntry, error) {
	query := `
		SELECT ` + timeclockColumns + `
		FROM timeclock_entries
		WHERE enrollment_id = $1
		ORDER BY clock_in DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, enrollmentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.TimeclockEntry
	for rows.Next() {
		entry := &models.TimeclockEntry{}
		if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.EnrollmentID, &entry.UserID,
			&entry.PartnerID, &entry.SiteID, &entry.Method, &entry.ClockIn, &entry.ClockOut,
			&entry.Hours, &entry.Notes, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
