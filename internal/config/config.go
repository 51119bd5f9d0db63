package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// AttendanceConfig holds the attendance policy parameters. Defaults match
// the field handbook: arrivals at or after 13:00 are late, a day needs at
// least 3h45m of work, a week is expected to total 40h, regularization is
// capped at 5 approvals per month except during the 30-day new-hire grace
// period.
type AttendanceConfig struct {
	LateCutoff                 string // "HH:MM", local time of day
	MinimumDailyDuration       time.Duration
	WeeklyExpectedHours        time.Duration
	MonthlyRegularizationLimit int
	NewHireGraceDays           int
}

func Load() (*Config, error) {
	// A missing .env is fine in production, env vars are read directly.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "fieldforce"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance policy configuration
	minDaily, err := time.ParseDuration(getEnv("ATTENDANCE_MIN_DAILY_DURATION", "3h45m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_MIN_DAILY_DURATION: %w", err)
	}

	weeklyExpected, err := time.ParseDuration(getEnv("ATTENDANCE_WEEKLY_EXPECTED_HOURS", "40h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_WEEKLY_EXPECTED_HOURS: %w", err)
	}

	monthlyLimit, err := strconv.Atoi(getEnv("REGULARIZATION_MONTHLY_LIMIT", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGULARIZATION_MONTHLY_LIMIT: %w", err)
	}

	graceDays, err := strconv.Atoi(getEnv("NEW_HIRE_GRACE_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid NEW_HIRE_GRACE_DAYS: %w", err)
	}

	config.Attendance = AttendanceConfig{
		LateCutoff:                 getEnv("ATTENDANCE_LATE_CUTOFF", "13:00"),
		MinimumDailyDuration:       minDaily,
		WeeklyExpectedHours:        weeklyExpected,
		MonthlyRegularizationLimit: monthlyLimit,
		NewHireGraceDays:           graceDays,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.Parse("15:04", c.Attendance.LateCutoff); err != nil {
		return fmt.Errorf("ATTENDANCE_LATE_CUTOFF must be HH:MM: %w", err)
	}
	if c.Attendance.MinimumDailyDuration <= 0 {
		return fmt.Errorf("ATTENDANCE_MIN_DAILY_DURATION must be positive")
	}
	if c.Attendance.MonthlyRegularizationLimit < 0 {
		return fmt.Errorf("REGULARIZATION_MONTHLY_LIMIT must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
