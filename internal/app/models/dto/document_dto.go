package dto

import (
	"time"

	"github.com/nbilal/scholarbridge/internal/app/models"
)

// UploadDocumentRequest represents the multipart form fields accompanying an
// evidence upload. The file itself arrives as the "file" form part.
type UploadDocumentRequest struct {
	DocumentType  string `form:"documentType" binding:"required,doctype"`
	ApplicationID *int64 `form:"applicationId" binding:"omitempty,gt=0"`
}

// DocumentResponse represents a ledger entry as returned by the API
type DocumentResponse struct {
	ID            int64     `json:"id"`
	StudentID     int64     `json:"studentId"`
	ApplicationID *int64    `json:"applicationId,omitempty"`
	DocumentType  string    `json:"documentType"`
	FileName      string    `json:"fileName"`
	FileURL       string    `json:"fileUrl"`
	FileSize      int64     `json:"fileSize"`
	MimeType      string    `json:"mimeType"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DocumentListResponse represents a student's document ledger
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// ToDocumentResponse converts a model to its API representation
func ToDocumentResponse(d *models.Document) DocumentResponse {
	if d == nil {
		return DocumentResponse{}
	}
	return DocumentResponse{
		ID:            d.ID,
		StudentID:     d.StudentID,
		ApplicationID: d.ApplicationID,
		DocumentType:  string(d.DocumentType),
		FileName:      d.FileName,
		FileURL:       d.FileURL,
		FileSize:      d.FileSize,
		MimeType:      d.MimeType,
		CreatedAt:     d.CreatedAt,
	}
}
