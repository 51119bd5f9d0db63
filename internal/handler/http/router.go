package http

import (
	"log/slog"
	"os"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/handler/http/middleware"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	appEnv string,
	jwtService jwt.Service,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	regularizationHandler RegularizationHandler,
	employeeHandler EmployeeHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "fieldforce-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", appEnv),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Get("/my", attendanceHandler.GetMyAttendance)
				r.Get("/summary", attendanceHandler.WeeklySummary)
			})

			r.Route("/regularizations", func(r chi.Router) {
				r.Post("/", regularizationHandler.Submit)
				r.Get("/my", regularizationHandler.ListMy)
				r.Get("/quota", regularizationHandler.MyQuota)

				// Manager or admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/pending", regularizationHandler.ListPending)
					r.Post("/{id}/approve", regularizationHandler.Approve)
					r.Post("/{id}/reject", regularizationHandler.Reject)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", employeeHandler.Create)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/team", employeeHandler.ListTeam)
				})
			})
		})
	})
	return r
}
