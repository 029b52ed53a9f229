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

// DisbursementRepository handles database operations for fund disbursements
type DisbursementRepository struct {
	db db.Queryer
}

// NewDisbursementRepository creates a new DisbursementRepository
func NewDisbursementRepository(pool *pgxpool.Pool) *DisbursementRepository {
	return &DisbursementRepository{db: pool}
}

func (r *DisbursementRepository) q(ctx context.Context) db.Queryer {
	return db.QueryerFromContext(ctx, r.db)
}

const disbursementColumns = `id, student_id, amount_usd, purpose, status, created_at, updated_at`

func scanDisbursement(row pgx.Row) (*models.Disbursement, error) {
	var d models.Disbursement
	err := row.Scan(
		&d.ID,
		&d.StudentID,
		&d.AmountUSD,
		&d.Purpose,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new disbursement record
func (r *DisbursementRepository) Create(ctx context.Context, d *models.Disbursement) error {
	query := `
		INSERT INTO disbursements (student_id, amount_usd, purpose, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		d.StudentID,
		d.AmountUSD,
		d.Purpose,
		d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating disbursement: %w", err)
	}
	return nil
}

// GetByID retrieves a disbursement by its primary key
func (r *DisbursementRepository) GetByID(ctx context.Context, id int64) (*models.Disbursement, error) {
	query := `SELECT ` + disbursementColumns + ` FROM disbursements WHERE id = $1`

	d, err := scanDisbursement(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDisbursementNotFound
		}
		return nil, fmt.Errorf("error retrieving disbursement: %w", err)
	}
	return d, nil
}

// ListByStudent retrieves the disbursements made to a student
func (r *DisbursementRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Disbursement, error) {
	query := `SELECT ` + disbursementColumns + ` FROM disbursements WHERE student_id = $1 ORDER BY created_at DESC`

	rows, err := r.q(ctx).Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing disbursements: %w", err)
	}
	defer rows.Close()

	var disbursements []*models.Disbursement
	for rows.Next() {
		d, err := scanDisbursement(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning disbursement row: %w", err)
		}
		disbursements = append(disbursements, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating disbursement rows: %w", err)
	}

	return disbursements, nil
}

// SumByStudent returns the total USD already disbursed to a student. Both
// initiated and completed disbursements count against the available balance.
func (r *DisbursementRepository) SumByStudent(ctx context.Context, studentID int64) (float64, error) {
	query := `SELECT COALESCE(SUM(amount_usd), 0) FROM disbursements WHERE student_id = $1`

	var total float64
	if err := r.q(ctx).QueryRow(ctx, query, studentID).Scan(&total); err != nil {
		return 0, fmt.Errorf("error summing disbursements: %w", err)
	}
	return total, nil
}

// UpdateStatus persists a disbursement status change
func (r *DisbursementRepository) UpdateStatus(ctx context.Context, id int64, status models.DisbursementStatus) error {
	query := `UPDATE disbursements SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.q(ctx).Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("error updating disbursement status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDisbursementNotFound
	}
	return nil
}
