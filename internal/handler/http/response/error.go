package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrManagerAccessRequired):
		Forbidden(w, "Manager or admin access required")
	case errors.Is(err, auth.ErrSelfOrManagerRequired):
		Forbidden(w, "You can only view your own analytics")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		slog.Error("Unhandled request error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
