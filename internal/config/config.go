package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	DatabasePath    string
	UploadPath      string // Base path for expense proof files
	JWTSecret       string
	AllowedOrigin   string
	MaintenanceSpec string // Cron expression for the maintenance sweeper

	// SMTP settings for outbound mail. When SMTPHost is empty the
	// service falls back to log-only delivery.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
}

// Load loads configuration from environment variables or sets defaults.
// A local .env file is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./roomshare.db"),
		UploadPath:      getEnv("UPLOAD_PATH", "./uploads"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		MaintenanceSpec: getEnv("MAINTENANCE_CRON", "*/5 * * * *"),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        smtpPort,
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPass:        getEnv("SMTP_PASS", ""),
		MailFrom:        getEnv("MAIL_FROM", "Roomshare <no-reply@roomshare.local>"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
