package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Application lifecycle errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("unknown application status")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrIncompleteDocuments = errors.New("required documents are missing")
)

// Student errors
var (
	ErrStudentNotFound = errors.New("student not found")
)

// Field review errors
var (
	ErrFieldReviewNotFound = errors.New("field review not found")
	ErrNotAFieldOfficer    = errors.New("assignee does not hold the field officer role")
)

// Funding errors
var (
	ErrSponsorshipNotFound    = errors.New("sponsorship not found")
	ErrApplicationNotApproved = errors.New("student has no approved application")
	ErrInsufficientFunds      = errors.New("amount exceeds undisbursed balance")
	ErrDisbursementNotFound   = errors.New("disbursement not found")
)

// Messaging errors
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrSponsorshipRequired  = errors.New("messaging requires an active sponsorship")
	ErrNotAParticipant      = errors.New("user is not a participant in this conversation")
)

// Content errors
var (
	ErrInvalidFormat = errors.New("invalid token format")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a new custom error for malformed input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewIncompleteDocumentsError reports which required document types are still
// missing so the caller can render a precise remediation request.
func NewIncompleteDocumentsError(missing []string) error {
	return &CustomError{
		Err:     ErrIncompleteDocuments,
		Message: "application cannot be approved while required documents are missing",
		Details: map[string]interface{}{"missing": missing},
	}
}

// MissingDocuments extracts the missing-type list from an incomplete-documents
// error, if present.
func MissingDocuments(err error) []string {
	var ce *CustomError
	if !errors.As(err, &ce) || ce.Details == nil {
		return nil
	}
	missing, _ := ce.Details["missing"].([]string)
	return missing
}
