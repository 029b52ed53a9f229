package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/db"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
)

// ApplicationRepository handles database operations for funding applications
type ApplicationRepository struct {
	db db.Queryer
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: pool}
}

func (r *ApplicationRepository) q(ctx context.Context) db.Queryer {
	return db.QueryerFromContext(ctx, r.db)
}

const applicationColumns = `id, student_id, term, amount_local, currency, amount_usd, fx_rate, status, notes, force_approved, approved_at, created_at, updated_at`

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(
		&a.ID,
		&a.StudentID,
		&a.Term,
		&a.AmountLocal,
		&a.Currency,
		&a.AmountUSD,
		&a.FxRate,
		&a.Status,
		&a.Notes,
		&a.ForceApproved,
		&a.ApprovedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new application in PENDING state
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (student_id, term, amount_local, currency, fx_rate, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		app.StudentID,
		app.Term,
		app.AmountLocal,
		app.Currency,
		app.FxRate,
		app.Notes,
		models.ApplicationStatusPending,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating application: %w", err)
	}

	app.Status = models.ApplicationStatusPending
	return nil
}

// GetByID retrieves an application by its primary key
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}
	return app, nil
}

// GetByIDForUpdate retrieves an application and locks the row so concurrent
// status transitions on the same application serialize.
func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`

	app, err := scanApplication(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error locking application row: %w", err)
	}
	return app, nil
}

// UpdateStatus persists the outcome of a status transition in one statement
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, app *models.Application) error {
	query := `
		UPDATE applications
		SET status = $2, notes = $3, fx_rate = $4, amount_usd = $5,
		    force_approved = $6, approved_at = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		app.ID,
		app.Status,
		app.Notes,
		app.FxRate,
		app.AmountUSD,
		app.ForceApproved,
		app.ApprovedAt,
	).Scan(&app.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrApplicationNotFound
		}
		return fmt.Errorf("error updating application status: %w", err)
	}
	return nil
}

// GetLatestApprovedByStudent returns the most recently approved application
// for a student, if any.
func (r *ApplicationRepository) GetLatestApprovedByStudent(ctx context.Context, studentID int64) (*models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE student_id = $1 AND status = $2
		ORDER BY approved_at DESC NULLS LAST
		LIMIT 1
	`

	app, err := scanApplication(r.q(ctx).QueryRow(ctx, query, studentID, models.ApplicationStatusApproved))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error retrieving approved application: %w", err)
	}
	return app, nil
}

// List retrieves applications matching the filters with pagination
func (r *ApplicationRepository) List(ctx context.Context, studentID *int64, status models.ApplicationStatus, offset uint64, limit int) ([]*models.Application, error) {
	queryBuilder := squirrel.Select(
		"id", "student_id", "term", "amount_local", "currency", "amount_usd", "fx_rate",
		"status", "notes", "force_approved", "approved_at", "created_at", "updated_at",
	).
		From("applications").
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if studentID != nil {
		queryBuilder = queryBuilder.Where("student_id = ?", *studentID)
	}
	if status != "" {
		queryBuilder = queryBuilder.Where("status = ?", status)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}

	return apps, nil
}

// Count returns the number of applications matching the filters
func (r *ApplicationRepository) Count(ctx context.Context, studentID *int64, status models.ApplicationStatus) (int64, error) {
	queryBuilder := squirrel.Select("COUNT(*)").
		From("applications").
		PlaceholderFormat(squirrel.Dollar)

	if studentID != nil {
		queryBuilder = queryBuilder.Where("student_id = ?", *studentID)
	}
	if status != "" {
		queryBuilder = queryBuilder.Where("status = ?", status)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int64
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting applications: %w", err)
	}
	return count, nil
}
