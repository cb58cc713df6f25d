package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (tokens are issued by the auth service, we only verify them)
	JWTSecret string

	// Admin
	AdminEmails    string
	AdminUserIDs   string
	AdminToken     string
	ModeratorRoles string

	// Moderation
	AgingThreshold      time.Duration
	AuditRetries        int
	AuditRetryDelay     time.Duration
	RecentActivityLimit int

	// Observability
	SentryDSN        string
	AppEnv           string
	LogFile          string
	LogMaxSizeMB     int
	LogRetentionDays int

	// Server
	Port        string
	CORSOrigins string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "venue_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminEmails:    getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs:   getEnv("ADMIN_USER_IDS", ""),
		AdminToken:     getEnv("ADMIN_TOKEN", ""),
		ModeratorRoles: getEnv("MODERATOR_ROLES", "admin,moderator"),

		AgingThreshold:      parseDuration(getEnv("MODERATION_AGING_THRESHOLD", "48h"), 48*time.Hour),
		AuditRetries:        parseInt(getEnv("MODERATION_AUDIT_RETRIES", "3"), 3),
		AuditRetryDelay:     parseDuration(getEnv("MODERATION_AUDIT_RETRY_DELAY", "200ms"), 200*time.Millisecond),
		RecentActivityLimit: parseInt(getEnv("MODERATION_RECENT_ACTIVITY", "10"), 10),

		SentryDSN:        getEnv("SENTRY_DSN", ""),
		AppEnv:           getEnv("APP_ENV", "development"),
		LogFile:          getEnv("LOG_FILE", ""),
		LogMaxSizeMB:     parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// ModeratorRoleSet returns the user roles allowed into the moderation panel.
func (c *Config) ModeratorRoleSet() map[string]bool {
	roles := make(map[string]bool)
	for _, r := range strings.Split(c.ModeratorRoles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles[r] = true
		}
	}
	return roles
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
