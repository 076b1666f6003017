package models

import "net/http"

// AppError tags a failure with the HTTP status it should surface as. Errors
// without a tag are treated as internal and reported with status 500.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string { return e.Message }

// Status satisfies the responder's status-carrier check.
func (e *AppError) Status() int { return e.Code }

func InvalidInput(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message}
}

func Internal(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message}
}
