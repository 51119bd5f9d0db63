package middleware

import (
	"net/http"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireManager requires manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, employee.ErrManagerAccessRequired)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, employee.ErrManagerAccessRequired)
			return
		}

		role := employee.Role(roleStr)
		if role != employee.RoleManager && role != employee.RoleAdmin {
			response.HandleError(w, employee.ErrManagerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, employee.ErrAdminAccessRequired)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok || employee.Role(roleStr) != employee.RoleAdmin {
			response.HandleError(w, employee.ErrAdminAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
