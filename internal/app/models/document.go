package models

import "time"

// DocumentType classifies a piece of uploaded evidence
type DocumentType string

const (
	DocumentTypeIdentityCard         DocumentType = "IDENTITY_CARD"
	DocumentTypeGuardianIdentityCard DocumentType = "GUARDIAN_IDENTITY_CARD"
	DocumentTypeAcademicResult       DocumentType = "ACADEMIC_RESULT"
	DocumentTypePhoto                DocumentType = "PHOTO"
	DocumentTypeFeeInvoice           DocumentType = "FEE_INVOICE"
	DocumentTypeIncomeCertificate    DocumentType = "INCOME_CERTIFICATE"
	DocumentTypeUtilityBill          DocumentType = "UTILITY_BILL"
	DocumentTypeInstitutionCard      DocumentType = "INSTITUTION_CARD"
	DocumentTypeEnrollmentProof      DocumentType = "ENROLLMENT_PROOF"
	DocumentTypeTranscript           DocumentType = "TRANSCRIPT"
)

// RequiredDocumentTypes is the fixed set an application must cover before it
// can be approved without an override.
var RequiredDocumentTypes = []DocumentType{
	DocumentTypeIdentityCard,
	DocumentTypeGuardianIdentityCard,
	DocumentTypeAcademicResult,
	DocumentTypePhoto,
	DocumentTypeFeeInvoice,
	DocumentTypeIncomeCertificate,
	DocumentTypeUtilityBill,
	DocumentTypeInstitutionCard,
	DocumentTypeEnrollmentProof,
	DocumentTypeTranscript,
}

// IsValidDocumentType reports whether the value is a known document type
func IsValidDocumentType(t DocumentType) bool {
	for _, rt := range RequiredDocumentTypes {
		if t == rt {
			return true
		}
	}
	return false
}

// Document represents an evidence file in the ledger. Rows are immutable once
// created except for deletion; uploading a new document of the same type does
// not invalidate the old one.
type Document struct {
	ID            int64        `json:"id" db:"id"`
	StudentID     int64        `json:"studentId" db:"student_id"`
	ApplicationID *int64       `json:"applicationId,omitempty" db:"application_id"`
	DocumentType  DocumentType `json:"documentType" db:"document_type"`
	FileName      string       `json:"fileName" db:"file_name"`
	FilePath      string       `json:"filePath" db:"file_path"`
	FileURL       string       `json:"fileUrl" db:"file_url"`
	FileSize      int64        `json:"fileSize" db:"file_size"`
	MimeType      string       `json:"mimeType" db:"mime_type"`
	UploadedBy    int64        `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
}
