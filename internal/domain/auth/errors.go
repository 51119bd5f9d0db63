package auth

import "errors"

// Auth domain errors
var (
	ErrInvalidCredentials  = errors.New("invalid employee code or password")
	ErrInvalidToken        = errors.New("invalid or missing token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
	ErrEmployeeInactive    = errors.New("employee is not active")
)
