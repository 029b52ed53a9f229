package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
	"github.com/nbilal/scholarbridge/internal/pkg/filestorage"
)

type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) Save(fileHeader *multipart.FileHeader, subPath string) (*filestorage.StoredFile, error) {
	return &filestorage.StoredFile{Path: subPath + "/" + fileHeader.Filename, URL: "http://files/" + fileHeader.Filename}, nil
}

func (s *fakeStorage) Delete(filePath string) error {
	s.deleted = append(s.deleted, filePath)
	return nil
}

func seedDocument(t *testing.T, store *fakeDocumentStore, studentID int64, applicationID *int64, docType models.DocumentType) *models.Document {
	t.Helper()
	doc := &models.Document{
		StudentID:     studentID,
		ApplicationID: applicationID,
		DocumentType:  docType,
		FileName:      string(docType) + ".pdf",
		FilePath:      "documents/x.pdf",
		UploadedBy:    30,
	}
	require.NoError(t, store.Create(context.Background(), doc))
	return doc
}

func newDocumentFixture(t *testing.T) (DocumentService, *fakeDocumentStore, *fakeStorage) {
	t.Helper()
	student := &models.Student{ID: 3, UserID: 30}
	app := &models.Application{ID: 1, StudentID: 3, Status: models.ApplicationStatusPending}
	docs := &fakeDocumentStore{}
	storage := &fakeStorage{}
	svc := NewDocumentService(docs, newFakeApplicationStore(app), newFakeStudentStore(student), storage, zerolog.Nop())
	return svc, docs, storage
}

func TestMissingTypes(t *testing.T) {
	ctx := context.Background()

	t.Run("empty ledger misses every required type", func(t *testing.T) {
		svc, _, _ := newDocumentFixture(t)

		missing, err := svc.MissingTypes(ctx, 3, 1)
		require.NoError(t, err)
		assert.Len(t, missing, len(models.RequiredDocumentTypes))
	})

	t.Run("student-level documents count for any application", func(t *testing.T) {
		svc, docs, _ := newDocumentFixture(t)
		for _, dt := range models.RequiredDocumentTypes {
			seedDocument(t, docs, 3, nil, dt)
		}

		missing, err := svc.MissingTypes(ctx, 3, 1)
		require.NoError(t, err)
		assert.Empty(t, missing)

		missing, err = svc.MissingTypes(ctx, 3, 42)
		require.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("documents scoped to another application do not count", func(t *testing.T) {
		svc, docs, _ := newDocumentFixture(t)
		otherApp := int64(99)
		seedDocument(t, docs, 3, &otherApp, models.DocumentTypeIncomeCertificate)

		missing, err := svc.MissingTypes(ctx, 3, 1)
		require.NoError(t, err)
		assert.Contains(t, missing, string(models.DocumentTypeIncomeCertificate))
	})

	t.Run("duplicate types satisfy the requirement once", func(t *testing.T) {
		svc, docs, _ := newDocumentFixture(t)
		seedDocument(t, docs, 3, nil, models.DocumentTypePhoto)
		seedDocument(t, docs, 3, nil, models.DocumentTypePhoto)

		missing, err := svc.MissingTypes(ctx, 3, 1)
		require.NoError(t, err)
		assert.NotContains(t, missing, string(models.DocumentTypePhoto))
		assert.Len(t, missing, len(models.RequiredDocumentTypes)-1)
	})
}

func TestCheckCompleteness(t *testing.T) {
	ctx := context.Background()
	svc, docs, _ := newDocumentFixture(t)

	resp, err := svc.CheckCompleteness(ctx, 1)
	require.NoError(t, err)
	assert.False(t, resp.Complete)
	assert.Len(t, resp.Missing, len(models.RequiredDocumentTypes))

	for _, dt := range models.RequiredDocumentTypes {
		seedDocument(t, docs, 3, nil, dt)
	}

	resp, err = svc.CheckCompleteness(ctx, 1)
	require.NoError(t, err)
	assert.True(t, resp.Complete)
	assert.Empty(t, resp.Missing)
}

func TestDocumentDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes the row and the stored file", func(t *testing.T) {
		svc, docs, storage := newDocumentFixture(t)
		doc := seedDocument(t, docs, 3, nil, models.DocumentTypePhoto)

		err := svc.Delete(ctx, Caller{UserID: 1, Role: models.RoleAdmin}, doc.ID)
		require.NoError(t, err)

		_, err = docs.GetByID(ctx, doc.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
		assert.Equal(t, []string{doc.FilePath}, storage.deleted)
	})

	t.Run("non-admins cannot delete", func(t *testing.T) {
		svc, docs, _ := newDocumentFixture(t)
		doc := seedDocument(t, docs, 3, nil, models.DocumentTypePhoto)

		err := svc.Delete(ctx, Caller{UserID: 30, Role: models.RoleStudent}, doc.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		err = svc.Delete(ctx, Caller{UserID: 2, Role: models.RoleSubAdmin}, doc.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestDocumentListAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, docs, _ := newDocumentFixture(t)
	seedDocument(t, docs, 3, nil, models.DocumentTypePhoto)

	t.Run("student lists their own ledger", func(t *testing.T) {
		resp, err := svc.ListByStudent(ctx, Caller{UserID: 30, Role: models.RoleStudent}, 3)
		require.NoError(t, err)
		assert.Len(t, resp.Documents, 1)
	})

	t.Run("another student is rejected", func(t *testing.T) {
		_, err := svc.ListByStudent(ctx, Caller{UserID: 99, Role: models.RoleStudent}, 3)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}
