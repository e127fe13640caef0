package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment-sourced setting. Credentials are injected
// here at startup; nothing below internal/config reads the environment.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"ref_check"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	// Comma-separated list of allowed CORS origins. "*" allows everything.
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Secret for signing login session tokens.
	TokenSecret string `envconfig:"TOKEN_SECRET" default:"dev-secret-change-me"`

	// Gemini scoring callout. An empty key disables scoring.
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash-exp"`

	// SendGrid notification callout. An empty key disables email.
	SendGridAPIKey  string `envconfig:"SENDGRID_API_KEY"`
	SendGridBaseURL string `envconfig:"SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
	MailFromEmail   string `envconfig:"MAIL_FROM_EMAIL" default:"noreply@ref-check.local"`
	MailFromName    string `envconfig:"MAIL_FROM_NAME" default:"Reference Checker"`

	// Testing-mode gate: when NotifyOverrideEmail is set, every notification
	// goes to AdminEmail instead of the resolved corresponding author.
	AdminEmail          string `envconfig:"ADMIN_EMAIL"`
	NotifyOverrideEmail bool   `envconfig:"NOTIFY_OVERRIDE_EMAIL" default:"false"`

	CalloutTimeoutSeconds int `envconfig:"CALLOUT_TIMEOUT_SECONDS" default:"20"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DSN returns the Postgres data source name.
func (c *Config) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBName, c.DBSSLMode)
	if c.DBPassword != "" {
		dsn += " password=" + c.DBPassword
	}
	return dsn
}

// CalloutTimeout is the per-request timeout for the scoring and email callouts.
func (c *Config) CalloutTimeout() time.Duration {
	return time.Duration(c.CalloutTimeoutSeconds) * time.Second
}

// Origins splits AllowedOrigins into a slice for the CORS middleware.
func (c *Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
