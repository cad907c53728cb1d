package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTokenExpired          = errors.New("token has expired")
	ErrManagerAccessRequired = errors.New("manager or admin access required")
	ErrSelfOrManagerRequired = errors.New("access restricted to the employee or a manager")
)
