package errs

import "net/http"

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewBadRequestError creates a 400 error, optionally carrying field errors.
func NewBadRequestError(message string, errors []FieldError) *HTTPError {
	err := newHTTPError(http.StatusBadRequest, message)
	err.Errors = errors
	return err
}

// NewUnauthorizedError creates a 401 error.
func NewUnauthorizedError(message string) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message)
}

// NewForbiddenError creates a 403 error.
func NewForbiddenError(message string) *HTTPError {
	return newHTTPError(http.StatusForbidden, message)
}

// NewNotFoundError creates a 404 error.
func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewConflictError creates a 409 error.
func NewConflictError(message string) *HTTPError {
	return newHTTPError(http.StatusConflict, message)
}

// NewServiceUnavailableError creates a 503 error.
func NewServiceUnavailableError(message string) *HTTPError {
	return newHTTPError(http.StatusServiceUnavailable, message)
}

// NewInternalServerError creates a 500 error with the generic status text.
// The underlying cause is logged by the caller, never sent to the client.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
