package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/config"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/attendance"
	appHTTP "github.com/fieldforce-hq/fieldforce-backend-go/internal/handler/http"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/cron"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/database"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/jwt"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/repository/postgresql"
	attendanceService "github.com/fieldforce-hq/fieldforce-backend-go/internal/service/attendance"
	authService "github.com/fieldforce-hq/fieldforce-backend-go/internal/service/auth"
	employeeService "github.com/fieldforce-hq/fieldforce-backend-go/internal/service/employee"
	regularizationService "github.com/fieldforce-hq/fieldforce-backend-go/internal/service/regularization"
)

func policyFromConfig(cfg config.AttendanceConfig) attendance.Policy {
	// Validated at config load, cannot fail here
	cutoff, _ := time.Parse("15:04", cfg.LateCutoff)

	return attendance.Policy{
		LateCutoff:                 time.Duration(cutoff.Hour())*time.Hour + time.Duration(cutoff.Minute())*time.Minute,
		MinimumDailyDuration:       cfg.MinimumDailyDuration,
		WeeklyExpected:             cfg.WeeklyExpectedHours,
		MonthlyRegularizationLimit: cfg.MonthlyRegularizationLimit,
		NewHireGraceDays:           cfg.NewHireGraceDays,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	counterRepo := postgresql.NewWeeklyCounterRepository(db)
	regularizationRepo := postgresql.NewRegularizationRepository(db)

	policy := policyFromConfig(cfg.Attendance)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	authSvc := authService.NewAuthService(employeeRepo, jwtService)
	attendanceSvc := attendanceService.NewAttendanceService(db, policy, attendanceRepo, counterRepo)
	regularizationSvc := regularizationService.NewRegularizationService(db, policy, regularizationRepo, employeeRepo)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	regularizationHandler := appHTTP.NewRegularizationHandler(regularizationSvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)

	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(attendanceRepo, counterRepo, employeeRepo)
	attendanceJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg.App.Env,
		jwtService,
		authHandler,
		attendanceHandler,
		regularizationHandler,
		employeeHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
