package config

import (
	"os"
	"strings"

	"gorm.io/gorm/logger"
)

type Config struct {
	DBPath         string
	Addr           string
	JWTSecret      string
	AllowedOrigins []string
	LegacyFile     string
	LegacyClear    bool
	AdminUsername  string
	AdminPassword  string
	GeminiAPIKey   string
	DBLogLevelName string
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func New() Config {
	return Config{
		DBPath:         getenv("DB_PATH", "dispatch.db"),
		Addr:           getenv("ADDR", ":8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LegacyFile:     os.Getenv("LEGACY_FILE"),
		LegacyClear:    getenv("LEGACY_CLEAR", "true") == "true",
		AdminUsername:  getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		DBLogLevelName: getenv("DB_LOG_LEVEL", "warn"),
	}
}

// DBLogLevel maps DB_LOG_LEVEL onto GORM's logger levels. Unknown names mean warn.
func (c Config) DBLogLevel() logger.LogLevel {
	switch strings.ToLower(c.DBLogLevelName) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
