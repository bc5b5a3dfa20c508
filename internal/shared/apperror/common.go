package apperror

import "net/http"

// Generic errors for requests that no feature catalogue claims. Feature
// packages keep their own, more specific entries under <feature>/errors.
var (
	// ErrNotFound answers routes the router does not know.
	ErrNotFound = New(CodeNotFound, "Resource not found", http.StatusNotFound)

	ErrForbidden = New(CodeForbidden, "You do not have permission to access this resource", http.StatusForbidden)

	ErrUnauthorized = New(CodeUnauthorized, "Authentication is required", http.StatusUnauthorized)

	// ErrInvalidInput is reported for request bodies that fail to decode at
	// all, before any field rule can run.
	ErrInvalidInput = New(CodeInvalidInput, "The provided input is invalid", http.StatusBadRequest)

	ErrInternal = New(CodeInternalError, "An unexpected error occurred", http.StatusInternalServerError)
)
