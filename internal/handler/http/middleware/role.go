package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-analytics/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/jwt"
)

// RequireManager requires manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := jwt.ClaimsFromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrManagerAccessRequired)
			return
		}

		if !claims.IsManagement() {
			response.HandleError(w, auth.ErrManagerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireSelfOrManager lets managers through and otherwise requires the
// employee_id claim to match the URL parameter.
func RequireSelfOrManager(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := jwt.ClaimsFromContext(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrSelfOrManagerRequired)
				return
			}

			if claims.IsManagement() {
				next.ServeHTTP(w, r)
				return
			}

			if claims.EmployeeID == "" || claims.EmployeeID != chi.URLParam(r, param) {
				response.HandleError(w, auth.ErrSelfOrManagerRequired)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
