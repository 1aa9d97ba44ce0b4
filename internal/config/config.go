package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Form relay
	FormRelayURL   string
	RelayTimeout   time.Duration
	FallbackEmail  string
	NoticeDuration time.Duration

	// HTTP edge
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	// TrustProxyHeaders takes the client address from X-Real-IP or
	// X-Forwarded-For. Only enable it behind a proxy that overwrites those
	// headers; otherwise any caller can pick its own rate-limit key.
	TrustProxyHeaders bool

	DatabaseURL      string
	AdminJWTSecret   string
	AdminJWTAudience string

	// Background workers recording, archiving, and announcing leads
	FollowUpWorkers int
	FollowUpBacklog int

	// Operator email
	EmailProvider    string
	SendGridAPIKey   string
	EmailFrom        string
	EmailFromName    string
	LeadNotifyEmails []string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	LeadArchiveBucket   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FormRelayURL:   getEnv("FORM_RELAY_URL", ""),
		RelayTimeout:   getEnvAsDuration("RELAY_TIMEOUT", 15*time.Second),
		FallbackEmail:  getEnv("FALLBACK_EMAIL", "hello@katalux.agency"),
		NoticeDuration: getEnvAsDuration("NOTICE_DURATION", 5*time.Second),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 5),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		TrustProxyHeaders:  getEnvAsBool("TRUST_PROXY_HEADERS", false),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		AdminJWTSecret:   getEnv("ADMIN_JWT_SECRET", ""),
		AdminJWTAudience: getEnv("ADMIN_JWT_AUDIENCE", "katalux-leads-admin"),

		FollowUpWorkers: getEnvAsInt("FOLLOW_UP_WORKERS", 2),
		FollowUpBacklog: getEnvAsInt("FOLLOW_UP_BACKLOG", 256),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:        getEnv("EMAIL_FROM", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Katalux Leads"),
		LeadNotifyEmails: getEnvAsList("LEAD_NOTIFY_EMAILS"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		LeadArchiveBucket:   getEnv("LEAD_ARCHIVE_BUCKET", ""),
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	return env == "production" || env == "prod"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
