package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/auth"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/handler/http/response"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/jwt"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
	}
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	refreshTokenCookie := a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn)
	http.SetCookie(w, refreshTokenCookie)
	slog.Info("Employee logged in", "employee_id", tokenResponse.EmployeeID)
	response.SuccessWithMessage(w, "Logged in successfully", tokenResponse)
}

// Refresh implements AuthHandler.
func (a *AuthHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	tokenResponse, err := a.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("Refresh service error", "error", err)
		response.HandleError(w, err)
		return
	}

	refreshTokenCookie := a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn)
	http.SetCookie(w, refreshTokenCookie)
	response.SuccessWithMessage(w, "Token refreshed", tokenResponse)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err == nil {
		if err := a.authService.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("Logout service error", "error", err)
			response.HandleError(w, err)
			return
		}
	}

	// Expire the cookie regardless of whether one was presented
	expired := a.jwtService.RefreshTokenCookie("", time.Now().Add(-time.Hour).Unix())
	http.SetCookie(w, expired)
	response.SuccessWithMessage(w, "Logged out successfully", nil)
}
