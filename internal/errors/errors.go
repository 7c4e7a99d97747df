// Package errors defines the typed error taxonomy returned by the attendance core.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// APIError represents a structured API error with HTTP status mapping.
// Details carries contextual fields (e.g. measured distance and allowed radius
// for geofence violations) so callers can decide whether to offer an override.
type APIError struct {
	HTTPStatus int            `json:"-"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Predefined errors
var (
	ErrBadRequest      = &APIError{HTTPStatus: http.StatusBadRequest, Code: "BAD_REQUEST", Message: "Invalid request parameters"}
	ErrInvalidJSON     = &APIError{HTTPStatus: http.StatusBadRequest, Code: "INVALID_JSON", Message: "Invalid JSON payload"}
	ErrValidation      = &APIError{HTTPStatus: http.StatusBadRequest, Code: "VALIDATION_FAILED", Message: "Validation failed"}
	ErrInvalidState    = &APIError{HTTPStatus: http.StatusConflict, Code: "INVALID_STATE", Message: "Operation not permitted in the current state"}
	ErrConflict        = &APIError{HTTPStatus: http.StatusConflict, Code: "CONFLICT", Message: "Resource conflict"}
	ErrOutsideGeofence = &APIError{HTTPStatus: http.StatusForbidden, Code: "OUTSIDE_GEOFENCE", Message: "Clock-in location is outside the facility geofence"}
	ErrResourceNotFound = &APIError{HTTPStatus: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrUnauthorized    = &APIError{HTTPStatus: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Authentication required"}
	ErrDatabase        = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "DATABASE_ERROR", Message: "Database operation failed"}
	ErrInternalServer  = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error"}
)

// NewAPIError creates a new APIError based on a predefined error with a custom message.
func NewAPIError(base *APIError, message string) *APIError {
	return &APIError{
		HTTPStatus: base.HTTPStatus,
		Code:       base.Code,
		Message:    message,
	}
}

// NewValidationError creates a validation error with a custom message.
func NewValidationError(message string) *APIError {
	return NewAPIError(ErrValidation, message)
}

// NewInvalidStateError creates an invalid-state error with a custom message.
func NewInvalidStateError(message string) *APIError {
	return NewAPIError(ErrInvalidState, message)
}

// NewConflictError creates a conflict error with a custom message.
func NewConflictError(message string) *APIError {
	return NewAPIError(ErrConflict, message)
}

// NewNotFoundError creates a not-found error with a custom message.
func NewNotFoundError(message string) *APIError {
	return NewAPIError(ErrResourceNotFound, message)
}

// NewOutsideGeofenceError creates a geofence violation error carrying the
// measured distance and the allowed radius as details.
func NewOutsideGeofenceError(distanceMeters, allowedRadiusMeters float64) *APIError {
	return &APIError{
		HTTPStatus: ErrOutsideGeofence.HTTPStatus,
		Code:       ErrOutsideGeofence.Code,
		Message:    fmt.Sprintf("Clock-in location is %.0fm from the facility, outside the allowed %.0fm radius", distanceMeters, allowedRadiusMeters),
		Details: map[string]any{
			"distance_meters":       distanceMeters,
			"allowed_radius_meters": allowedRadiusMeters,
		},
	}
}

// MySQL and PostgreSQL duplicate-key error codes.
const (
	mysqlDuplicateEntry = 1062
	pgUniqueViolation   = "23505"
)

// ParseDBError translates a database error into an APIError. Unique constraint
// violations map to CONFLICT so persistence-level uniqueness (one active entry
// per user, one timesheet per period) surfaces with the same taxonomy as the
// service-level checks.
func ParseDBError(err error) *APIError {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResourceNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return ErrConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrConflict
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}

	return NewAPIError(ErrDatabase, err.Error())
}
