package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/auth"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	employee.EmployeeRepository
	jwt.Service
}

func NewAuthService(employeeRepository employee.EmployeeRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		EmployeeRepository: employeeRepository,
		Service:            jwtService,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByCode(ctx, req.EmployeeCode)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get employee by code: %w", err)
	}

	if emp.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*emp.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if emp.Status != employee.StatusActive {
		return auth.TokenResponse{}, auth.ErrEmployeeInactive
	}

	return a.tokenPair(emp)
}

// Refresh implements auth.AuthService.
func (a *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (auth.TokenResponse, error) {
	token, err := jwtauth.VerifyToken(a.JWTAuth(), refreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	claims, err := token.AsMap(ctx)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	if a.IsTokenRevoked(refreshToken) {
		return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	if emp.Status != employee.StatusActive {
		return auth.TokenResponse{}, auth.ErrEmployeeInactive
	}

	// Rotate the pair: the presented refresh token is spent.
	a.RevokeToken(refreshToken)

	return a.tokenPair(emp)
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	a.RevokeToken(refreshToken)
	return nil
}

func (a *AuthServiceImpl) tokenPair(emp employee.Employee) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse
	var err error

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.GenerateAccessToken(emp.ID, emp.Code, emp.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.GenerateRefreshToken(emp.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	tokenResponse.Role = string(emp.Role)
	tokenResponse.EmployeeID = emp.ID

	return tokenResponse, nil
}
