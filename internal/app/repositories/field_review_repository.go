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

// FieldReviewRepository handles database operations for field verification reviews
type FieldReviewRepository struct {
	db db.Queryer
}

// NewFieldReviewRepository creates a new FieldReviewRepository
func NewFieldReviewRepository(pool *pgxpool.Pool) *FieldReviewRepository {
	return &FieldReviewRepository{db: pool}
}

func (r *FieldReviewRepository) q(ctx context.Context) db.Queryer {
	return db.QueryerFromContext(ctx, r.db)
}

const fieldReviewColumns = `id, application_id, student_id, officer_id, status, recommendation, notes, created_at, updated_at`

func scanFieldReview(row pgx.Row) (*models.FieldReview, error) {
	var fr models.FieldReview
	err := row.Scan(
		&fr.ID,
		&fr.ApplicationID,
		&fr.StudentID,
		&fr.OfficerID,
		&fr.Status,
		&fr.Recommendation,
		&fr.Notes,
		&fr.CreatedAt,
		&fr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

// Create inserts a new field review assignment
func (r *FieldReviewRepository) Create(ctx context.Context, review *models.FieldReview) error {
	query := `
		INSERT INTO field_reviews (application_id, student_id, officer_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		review.ApplicationID,
		review.StudentID,
		review.OfficerID,
		models.FieldReviewStatusPending,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating field review: %w", err)
	}

	review.Status = models.FieldReviewStatusPending
	return nil
}

// GetByID retrieves a field review by its primary key
func (r *FieldReviewRepository) GetByID(ctx context.Context, id int64) (*models.FieldReview, error) {
	query := `SELECT ` + fieldReviewColumns + ` FROM field_reviews WHERE id = $1`

	review, err := scanFieldReview(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFieldReviewNotFound
		}
		return nil, fmt.Errorf("error retrieving field review: %w", err)
	}
	return review, nil
}

// GetLatestByApplication retrieves the most recent review attached to an
// application. Reassignment creates a new row; the newest is authoritative.
func (r *FieldReviewRepository) GetLatestByApplication(ctx context.Context, applicationID int64) (*models.FieldReview, error) {
	query := `SELECT ` + fieldReviewColumns + ` FROM field_reviews WHERE application_id = $1 ORDER BY created_at DESC LIMIT 1`

	review, err := scanFieldReview(r.q(ctx).QueryRow(ctx, query, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFieldReviewNotFound
		}
		return nil, fmt.Errorf("error retrieving field review: %w", err)
	}
	return review, nil
}

// ListByOfficer retrieves the reviews assigned to a field officer
func (r *FieldReviewRepository) ListByOfficer(ctx context.Context, officerID int64) ([]*models.FieldReview, error) {
	query := `SELECT ` + fieldReviewColumns + ` FROM field_reviews WHERE officer_id = $1 ORDER BY created_at DESC`

	rows, err := r.q(ctx).Query(ctx, query, officerID)
	if err != nil {
		return nil, fmt.Errorf("error listing field reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.FieldReview
	for rows.Next() {
		review, err := scanFieldReview(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning field review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating field review rows: %w", err)
	}

	return reviews, nil
}

// Update persists status, recommendation and notes
func (r *FieldReviewRepository) Update(ctx context.Context, review *models.FieldReview) error {
	query := `
		UPDATE field_reviews
		SET status = $2, recommendation = $3, notes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		review.ID,
		review.Status,
		review.Recommendation,
		review.Notes,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrFieldReviewNotFound
		}
		return fmt.Errorf("error updating field review: %w", err)
	}
	return nil
}

// CreateInfoRequest records the list of items an officer asked the student for
func (r *FieldReviewRepository) CreateInfoRequest(ctx context.Context, request *models.FieldReviewRequest) error {
	query := `
		INSERT INTO field_review_requests (field_review_id, items, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		request.FieldReviewID,
		request.Items,
		request.Note,
	).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating info request: %w", err)
	}
	return nil
}

// ListInfoRequests retrieves the info requests raised on a field review
func (r *FieldReviewRepository) ListInfoRequests(ctx context.Context, fieldReviewID int64) ([]models.FieldReviewRequest, error) {
	query := `
		SELECT id, field_review_id, items, note, created_at
		FROM field_review_requests
		WHERE field_review_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q(ctx).Query(ctx, query, fieldReviewID)
	if err != nil {
		return nil, fmt.Errorf("error listing info requests: %w", err)
	}
	defer rows.Close()

	var requests []models.FieldReviewRequest
	for rows.Next() {
		var req models.FieldReviewRequest
		if err := rows.Scan(&req.ID, &req.FieldReviewID, &req.Items, &req.Note, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning info request row: %w", err)
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating info request rows: %w", err)
	}

	return requests, nil
}
