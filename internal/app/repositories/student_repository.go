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

// StudentRepository handles database operations for students
type StudentRepository struct {
	db db.Queryer
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: pool}
}

func (r *StudentRepository) q(ctx context.Context) db.Queryer {
	return db.QueryerFromContext(ctx, r.db)
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.University,
		&s.Program,
		&s.GPA,
		&s.GraduationYear,
		&s.FundedUSD,
		&s.Sponsored,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const studentColumns = `id, user_id, university, program, gpa, graduation_year, funded_usd, sponsored, created_at, updated_at`

// GetByID retrieves a student with the owning user attached
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `
		SELECT s.id, s.user_id, s.university, s.program, s.gpa, s.graduation_year,
		       s.funded_usd, s.sponsored, s.created_at, s.updated_at,
		       u.id, u.email, u.first_name, u.last_name, u.role_type
		FROM students s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = $1
	`

	var s models.Student
	var u models.User
	err := r.q(ctx).QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.UserID,
		&s.University,
		&s.Program,
		&s.GPA,
		&s.GraduationYear,
		&s.FundedUSD,
		&s.Sponsored,
		&s.CreatedAt,
		&s.UpdatedAt,
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.RoleType,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	s.User = &u
	return &s, nil
}

// GetByUserID retrieves the student record owned by a user account
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE user_id = $1`

	student, err := scanStudent(r.q(ctx).QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student by user: %w", err)
	}
	return student, nil
}

// GetByIDForUpdate retrieves a student and locks the row for the duration of
// the surrounding transaction. The funding ledger serializes on this lock.
func (r *StudentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 FOR UPDATE`

	student, err := scanStudent(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error locking student row: %w", err)
	}
	return student, nil
}

// Create inserts a new student profile
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (user_id, university, program, gpa, graduation_year)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, funded_usd, sponsored, created_at, updated_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		student.UserID,
		student.University,
		student.Program,
		student.GPA,
		student.GraduationYear,
	).Scan(&student.ID, &student.FundedUSD, &student.Sponsored, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// UpdateProfile mutates the academic profile fields
func (r *StudentRepository) UpdateProfile(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET university = $2, program = $3, gpa = $4, graduation_year = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		student.ID,
		student.University,
		student.Program,
		student.GPA,
		student.GraduationYear,
	).Scan(&student.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("error updating student: %w", err)
	}
	return nil
}

// UpdateFunding persists the funded aggregate and the sponsored flag. Callers
// must hold the row lock taken by GetByIDForUpdate.
func (r *StudentRepository) UpdateFunding(ctx context.Context, id int64, fundedUSD float64, sponsored bool) error {
	query := `UPDATE students SET funded_usd = $2, sponsored = $3, updated_at = NOW() WHERE id = $1`

	tag, err := r.q(ctx).Exec(ctx, query, id, fundedUSD, sponsored)
	if err != nil {
		return fmt.Errorf("error updating student funding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// List retrieves students with optional filters and pagination
func (r *StudentRepository) List(ctx context.Context, sponsored *bool, search string, offset uint64, limit int) ([]*models.Student, error) {
	queryBuilder := squirrel.Select(
		"s.id", "s.user_id", "s.university", "s.program", "s.gpa", "s.graduation_year",
		"s.funded_usd", "s.sponsored", "s.created_at", "s.updated_at",
		"u.id", "u.email", "u.first_name", "u.last_name", "u.role_type",
	).
		From("students s").
		Join("users u ON s.user_id = u.id").
		OrderBy("s.created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if sponsored != nil {
		queryBuilder = queryBuilder.Where("s.sponsored = ?", *sponsored)
	}
	if search != "" {
		pattern := "%" + search + "%"
		queryBuilder = queryBuilder.Where(
			"(u.first_name ILIKE ? OR u.last_name ILIKE ? OR s.university ILIKE ? OR s.program ILIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		var s models.Student
		var u models.User
		err := rows.Scan(
			&s.ID, &s.UserID, &s.University, &s.Program, &s.GPA, &s.GraduationYear,
			&s.FundedUSD, &s.Sponsored, &s.CreatedAt, &s.UpdatedAt,
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.RoleType,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		s.User = &u
		students = append(students, &s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

// Count returns the number of students matching the filters
func (r *StudentRepository) Count(ctx context.Context, sponsored *bool, search string) (int64, error) {
	queryBuilder := squirrel.Select("COUNT(*)").
		From("students s").
		Join("users u ON s.user_id = u.id").
		PlaceholderFormat(squirrel.Dollar)

	if sponsored != nil {
		queryBuilder = queryBuilder.Where("s.sponsored = ?", *sponsored)
	}
	if search != "" {
		pattern := "%" + search + "%"
		queryBuilder = queryBuilder.Where(
			"(u.first_name ILIKE ? OR u.last_name ILIKE ? OR s.university ILIKE ? OR s.program ILIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int64
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return count, nil
}
