package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-analytics/internal/handler/http/response"
	jwtpkg "github.com/cmlabs-hris/workforce-analytics/internal/pkg/jwt"
)

// AuthRequired rejects requests whose verified token is missing, expired or
// not an access token. It must run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				if errors.Is(err, jwtauth.ErrExpired) {
					response.HandleError(w, auth.ErrTokenExpired)
					return
				}
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != jwtpkg.TokenTypeAccess || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
