package auth

import (
	"context"
)

// AuthService defines login and token lifecycle operations.
type AuthService interface {
	// Login authenticates an employee by code and password
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// Refresh exchanges a valid refresh token for a new token pair
	Refresh(ctx context.Context, refreshToken string) (TokenResponse, error)

	// Logout revokes the refresh token
	Logout(ctx context.Context, refreshToken string) error
}
