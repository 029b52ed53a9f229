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

// DocumentRepository handles database operations for student documents
type DocumentRepository struct {
	db db.Queryer
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func (r *DocumentRepository) q(ctx context.Context) db.Queryer {
	return db.QueryerFromContext(ctx, r.db)
}

const documentColumns = `id, student_id, application_id, document_type, file_name, file_path, file_url, file_size, mime_type, uploaded_by, created_at`

func scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	err := row.Scan(
		&d.ID,
		&d.StudentID,
		&d.ApplicationID,
		&d.DocumentType,
		&d.FileName,
		&d.FilePath,
		&d.FileURL,
		&d.FileSize,
		&d.MimeType,
		&d.UploadedBy,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts an uploaded document record
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (student_id, application_id, document_type, file_name, file_path, file_url, file_size, mime_type, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		doc.StudentID,
		doc.ApplicationID,
		doc.DocumentType,
		doc.FileName,
		doc.FilePath,
		doc.FileURL,
		doc.FileSize,
		doc.MimeType,
		doc.UploadedBy,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating document: %w", err)
	}
	return nil
}

// GetByID retrieves a document by its primary key
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving document: %w", err)
	}
	return doc, nil
}

// Delete removes a document row
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// ListByStudent retrieves every document a student has on file
func (r *DocumentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE student_id = $1 ORDER BY created_at DESC`

	rows, err := r.q(ctx).Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}

// DistinctTypesForApplication returns the set of document types the student
// has on file that count toward an application. Documents with a NULL
// application_id belong to the student generally and count for every
// application; documents attached to another application do not.
func (r *DocumentRepository) DistinctTypesForApplication(ctx context.Context, studentID, applicationID int64) ([]models.DocumentType, error) {
	query := `
		SELECT DISTINCT document_type
		FROM documents
		WHERE student_id = $1 AND (application_id IS NULL OR application_id = $2)
	`

	rows, err := r.q(ctx).Query(ctx, query, studentID, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error querying document types: %w", err)
	}
	defer rows.Close()

	var types []models.DocumentType
	for rows.Next() {
		var t models.DocumentType
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("error scanning document type: %w", err)
		}
		types = append(types, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document types: %w", err)
	}

	return types, nil
}
