package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
)

const TokenTypeAccess = "access"

// Claims is the subset of the access token the analytics endpoints read
type Claims struct {
	UserID     string
	EmployeeID string
	Role       employee.Role
}

// IsManagement reports whether the caller may see company-wide analytics
func (c Claims) IsManagement() bool {
	return c.Role.IsManagement()
}

type Service interface {
	GenerateAccessToken(userID string, employeeID string, role employee.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService verifies tokens issued by the HR platform's auth service,
// which signs them with the shared HS256 secret.
func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken mints a token with the same claim layout the auth
// service issues. Used by tooling and tests.
func (j *JWTService) GenerateAccessToken(userID string, employeeID string, role employee.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     userID,
		"employee_id": employeeID,
		"role":        string(role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ClaimsFromContext reads the verified token claims placed on ctx by
// jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, auth.ErrInvalidToken
	}

	role, ok := raw["role"].(string)
	if !ok || role == "" {
		return Claims{}, auth.ErrInvalidToken
	}

	claims := Claims{Role: employee.Role(role)}
	claims.UserID, _ = raw["user_id"].(string)
	claims.EmployeeID, _ = raw["employee_id"].(string)
	return claims, nil
}
