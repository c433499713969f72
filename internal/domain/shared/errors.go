package shared

// Error codes used across the domain. The unit-of-work runner translates
// raw store errors into these before they leave the core.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION"
	CodeConflict         = "CONFLICT"
	CodeTenantIsolation  = "TENANT_ISOLATION_VIOLATION"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, shared.ErrNotFound) works on wrapped and derived errors.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation       = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConflict         = NewDomainError(CodeConflict, "Operation conflicts with current state")
	ErrTenantIsolation  = NewDomainError(CodeTenantIsolation, "Tenant context not activated or mismatched")
	ErrStoreUnavailable = NewDomainError(CodeStoreUnavailable, "Datastore unavailable")
)

// NewValidationError creates a VALIDATION error with a specific message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewConflictError creates a CONFLICT error with a specific message
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// NewNotFoundError creates a NOT_FOUND error with a specific message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}
