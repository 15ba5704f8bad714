package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeDependency    = "DEPENDENCY_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
	ErrUnsupportedFileType   = NewDomainError(ErrCodeValidation, "unsupported file type")
	ErrInvalidDocumentStatus = NewDomainError(ErrCodeValidation, "invalid document status")
	ErrInvalidRiskScore      = NewDomainError(ErrCodeValidation, "invalid risk score")
	ErrEmbeddingDimension    = NewDomainError(ErrCodeValidation, "embedding has wrong dimensionality")
)

// Not found errors
var (
	ErrUserNotFound     = NewDomainError(ErrCodeNotFound, "user not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "contract not found")
)

// Conflict errors
var (
	ErrDuplicateEmail = NewDomainError(ErrCodeConflict, "email already registered")
)

// Authorization errors
var (
	ErrInvalidCredentials = NewDomainError(ErrCodeUnauthorized, "invalid credentials")
	ErrInvalidToken       = NewDomainError(ErrCodeUnauthorized, "invalid token")
)

// Dependency errors (parsing, embedding, answer synthesis)
var (
	ErrParsingFailed   = NewDomainError(ErrCodeDependency, "document parsing failed")
	ErrEmbeddingFailed = NewDomainError(ErrCodeDependency, "embedding generation failed")
	ErrSynthesisFailed = NewDomainError(ErrCodeDependency, "answer synthesis failed")
)
