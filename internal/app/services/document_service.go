package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
	"github.com/nbilal/scholarbridge/internal/pkg/filestorage"
)

// DocumentService defines the interface for the evidence ledger
type DocumentService interface {
	Upload(ctx context.Context, caller Caller, studentID int64, req *dto.UploadDocumentRequest, file *multipart.FileHeader) (*dto.DocumentResponse, error)
	ListByStudent(ctx context.Context, caller Caller, studentID int64) (*dto.DocumentListResponse, error)
	Delete(ctx context.Context, caller Caller, documentID int64) error
	CheckCompleteness(ctx context.Context, applicationID int64) (*dto.CompletenessResponse, error)
	MissingTypes(ctx context.Context, studentID, applicationID int64) ([]string, error)
}

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	Delete(ctx context.Context, id int64) error
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Document, error)
	DistinctTypesForApplication(ctx context.Context, studentID, applicationID int64) ([]models.DocumentType, error)
}

type applicationGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Application, error)
}

type studentGetter interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

// documentServiceImpl implements DocumentService
type documentServiceImpl struct {
	documentRepo    documentStore
	applicationRepo applicationGetter
	studentRepo     studentGetter
	storage         filestorage.Storage
	logger          zerolog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo documentStore,
	applicationRepo applicationGetter,
	studentRepo studentGetter,
	storage filestorage.Storage,
	logger zerolog.Logger,
) DocumentService {
	return &documentServiceImpl{
		documentRepo:    documentRepo,
		applicationRepo: applicationRepo,
		studentRepo:     studentRepo,
		storage:         storage,
		logger:          logger,
	}
}

// canActOnStudent allows staff, or a student acting on their own record
func (s *documentServiceImpl) canActOnStudent(ctx context.Context, caller Caller, studentID int64) error {
	if caller.IsStaff() {
		return nil
	}
	if caller.Role == models.RoleStudent {
		student, err := s.studentRepo.GetByUserID(ctx, caller.UserID)
		if err != nil {
			return apperrors.ErrPermissionDenied
		}
		if student.ID == studentID {
			return nil
		}
	}
	return apperrors.ErrPermissionDenied
}

// Upload stores the file and appends an immutable ledger entry. Uploading a
// new document of an already-present type adds a row; it never replaces one.
func (s *documentServiceImpl) Upload(ctx context.Context, caller Caller, studentID int64, req *dto.UploadDocumentRequest, file *multipart.FileHeader) (*dto.DocumentResponse, error) {
	if err := s.canActOnStudent(ctx, caller, studentID); err != nil {
		return nil, err
	}

	docType := models.DocumentType(req.DocumentType)
	if !models.IsValidDocumentType(docType) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown document type: %s", req.DocumentType))
	}

	if req.ApplicationID != nil {
		app, err := s.applicationRepo.GetByID(ctx, *req.ApplicationID)
		if err != nil {
			return nil, err
		}
		if app.StudentID != studentID {
			return nil, apperrors.NewValidationError("application does not belong to the student")
		}
	}

	stored, err := s.storage.Save(file, fmt.Sprintf("documents/%d", studentID))
	if err != nil {
		return nil, fmt.Errorf("error storing document file: %w", err)
	}

	doc := &models.Document{
		StudentID:     studentID,
		ApplicationID: req.ApplicationID,
		DocumentType:  docType,
		FileName:      file.Filename,
		FilePath:      stored.Path,
		FileURL:       stored.URL,
		FileSize:      stored.Size,
		MimeType:      stored.MimeType,
		UploadedBy:    caller.UserID,
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(stored.Path); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", stored.Path).Msg("Failed to clean up orphaned file")
		}
		return nil, err
	}

	resp := dto.ToDocumentResponse(doc)
	return &resp, nil
}

// ListByStudent returns the student's full ledger, newest first
func (s *documentServiceImpl) ListByStudent(ctx context.Context, caller Caller, studentID int64) (*dto.DocumentListResponse, error) {
	if err := s.canActOnStudent(ctx, caller, studentID); err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resp := &dto.DocumentListResponse{}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, dto.ToDocumentResponse(doc))
	}
	return resp, nil
}

// Delete removes a ledger entry and its stored file. Admin only; deletion is
// the one mutation the ledger allows.
func (s *documentServiceImpl) Delete(ctx context.Context, caller Caller, documentID int64) error {
	if !caller.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return err
	}

	if err := s.storage.Delete(doc.FilePath); err != nil {
		s.logger.Warn().Err(err).Str("path", doc.FilePath).Msg("Failed to delete stored file")
	}
	return nil
}

// MissingTypes returns the required document types the application does not
// cover. Presence is all that counts; file contents are never inspected.
func (s *documentServiceImpl) MissingTypes(ctx context.Context, studentID, applicationID int64) ([]string, error) {
	present, err := s.documentRepo.DistinctTypesForApplication(ctx, studentID, applicationID)
	if err != nil {
		return nil, err
	}

	have := make(map[models.DocumentType]bool, len(present))
	for _, t := range present {
		have[t] = true
	}

	var missing []string
	for _, required := range models.RequiredDocumentTypes {
		if !have[required] {
			missing = append(missing, string(required))
		}
	}
	return missing, nil
}

// CheckCompleteness reports whether the application's ledger covers every
// required type, with the exact missing list for remediation.
func (s *documentServiceImpl) CheckCompleteness(ctx context.Context, applicationID int64) (*dto.CompletenessResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	missing, err := s.MissingTypes(ctx, app.StudentID, app.ID)
	if err != nil {
		return nil, err
	}

	return &dto.CompletenessResponse{
		Complete: len(missing) == 0,
		Missing:  missing,
	}, nil
}
