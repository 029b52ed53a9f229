package filestorage

import "mime/multipart"

// StoredFile describes where an upload landed and what it is. The funding
// core only ever reads the type and existence of a document; the storage
// mechanics live entirely behind this boundary.
type StoredFile struct {
	Path     string // relative path under the storage root
	URL      string // externally accessible URL
	Size     int64  // size in bytes
	MimeType string // MIME type as reported by the upload
}

// Storage is the document-storage collaborator interface
type Storage interface {
	// Save stores an uploaded file under subPath and returns its metadata
	Save(fileHeader *multipart.FileHeader, subPath string) (*StoredFile, error)

	// Delete removes a stored file; deleting a missing file is not an error
	Delete(filePath string) error
}
