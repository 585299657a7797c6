package cli

// Error codes for structured error responses. These codes are stable and
// can be relied upon by scripts and agents.
const (
	// Workspace errors
	ErrWorkspaceNotFound     = "WORKSPACE_NOT_FOUND"
	ErrWorkspaceNotSpecified = "WORKSPACE_NOT_SPECIFIED"
	ErrConfigInvalid         = "CONFIG_INVALID"

	// Schema errors
	ErrEntityNotFound   = "ENTITY_NOT_FOUND"
	ErrPropertyNotFound = "PROPERTY_NOT_FOUND"
	ErrSchemaInvalid    = "SCHEMA_INVALID"
	ErrCircularRef      = "CIRCULAR_REFERENCE"

	// Record errors
	ErrRecordNotFound   = "RECORD_NOT_FOUND"
	ErrValidationFailed = "VALIDATION_FAILED"

	// Query errors
	ErrQueryNotFound = "QUERY_NOT_FOUND"
	ErrQueryInvalid  = "QUERY_INVALID"

	// Database errors
	ErrDatabaseError = "DATABASE_ERROR"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"
	ErrFileRead     = "FILE_READ_ERROR"
)
