// api/errors/resource_errors.go
package errors

import "errors"

var (
	ErrResourceNotFound  = errors.New("resource not found")
	ErrInvalidPlanData   = errors.New("invalid plan feature data")
	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
	ErrInvalidResource   = errors.New("unknown resource name")
	ErrInvalidCredential = errors.New("invalid credentials")
)
