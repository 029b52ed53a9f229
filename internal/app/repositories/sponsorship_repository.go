package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/db"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
)

// SponsorshipRepository handles database operations for sponsorships
type SponsorshipRepository struct {
	db db.Queryer
}

// NewSponsorshipRepository creates a new SponsorshipRepository
func NewSponsorshipRepository(pool *pgxpool.Pool) *SponsorshipRepository {
	return &SponsorshipRepository{db: pool}
}

func (r *SponsorshipRepository) q(ctx context.Context) db.Queryer {
	return db.QueryerFromContext(ctx, r.db)
}

const sponsorshipColumns = `id, donor_id, student_id, application_id, amount, currency, amount_usd, reference, status, created_at, updated_at`

func scanSponsorship(row pgx.Row) (*models.Sponsorship, error) {
	var s models.Sponsorship
	err := row.Scan(
		&s.ID,
		&s.DonorID,
		&s.StudentID,
		&s.ApplicationID,
		&s.Amount,
		&s.Currency,
		&s.AmountUSD,
		&s.Reference,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new sponsorship record
func (r *SponsorshipRepository) Create(ctx context.Context, sp *models.Sponsorship) error {
	query := `
		INSERT INTO sponsorships (donor_id, student_id, application_id, amount, currency, amount_usd, reference, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		sp.DonorID,
		sp.StudentID,
		sp.ApplicationID,
		sp.Amount,
		sp.Currency,
		sp.AmountUSD,
		sp.Reference,
		sp.Status,
	).Scan(&sp.ID, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating sponsorship: %w", err)
	}
	return nil
}

// GetByID retrieves a sponsorship by its primary key
func (r *SponsorshipRepository) GetByID(ctx context.Context, id int64) (*models.Sponsorship, error) {
	query := `SELECT ` + sponsorshipColumns + ` FROM sponsorships WHERE id = $1`

	sp, err := scanSponsorship(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSponsorshipNotFound
		}
		return nil, fmt.Errorf("error retrieving sponsorship: %w", err)
	}
	return sp, nil
}

// GetByReference retrieves a sponsorship by its payment reference
func (r *SponsorshipRepository) GetByReference(ctx context.Context, reference string) (*models.Sponsorship, error) {
	query := `SELECT ` + sponsorshipColumns + ` FROM sponsorships WHERE reference = $1`

	sp, err := scanSponsorship(r.q(ctx).QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSponsorshipNotFound
		}
		return nil, fmt.Errorf("error retrieving sponsorship by reference: %w", err)
	}
	return sp, nil
}

// ListByStudent retrieves the sponsorships received by a student
func (r *SponsorshipRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Sponsorship, error) {
	return r.list(ctx, `student_id`, studentID)
}

// ListByDonor retrieves the sponsorships made by a donor
func (r *SponsorshipRepository) ListByDonor(ctx context.Context, donorID int64) ([]*models.Sponsorship, error) {
	return r.list(ctx, `donor_id`, donorID)
}

func (r *SponsorshipRepository) list(ctx context.Context, column string, id int64) ([]*models.Sponsorship, error) {
	query := `SELECT ` + sponsorshipColumns + ` FROM sponsorships WHERE ` + column + ` = $1 ORDER BY created_at DESC`

	rows, err := r.q(ctx).Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("error listing sponsorships: %w", err)
	}
	defer rows.Close()

	var sponsorships []*models.Sponsorship
	for rows.Next() {
		sp, err := scanSponsorship(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning sponsorship row: %w", err)
		}
		sponsorships = append(sponsorships, sp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sponsorship rows: %w", err)
	}

	return sponsorships, nil
}

// ExistsActivePair reports whether the donor has an active sponsorship for the student
func (r *SponsorshipRepository) ExistsActivePair(ctx context.Context, donorID, studentID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM sponsorships WHERE donor_id = $1 AND student_id = $2 AND status = $3)`

	var exists bool
	err := r.q(ctx).QueryRow(ctx, query, donorID, studentID, models.SponsorshipStatusActive).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking sponsorship pair: %w", err)
	}
	return exists, nil
}

// UpdateStatus persists a sponsorship status change
func (r *SponsorshipRepository) UpdateStatus(ctx context.Context, id int64, status models.SponsorshipStatus) error {
	query := `UPDATE sponsorships SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.q(ctx).Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("error updating sponsorship status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSponsorshipNotFound
	}
	return nil
}
