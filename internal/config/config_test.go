package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "RELAY_TIMEOUT", "NOTICE_DURATION", "FALLBACK_EMAIL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REDIS_ADDR", "EMAIL_PROVIDER", "CORS_ALLOWED_ORIGINS", "LEAD_NOTIFY_EMAILS", "TRUST_PROXY_HEADERS", "ADMIN_JWT_AUDIENCE", "FOLLOW_UP_WORKERS", "FOLLOW_UP_BACKLOG"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.RelayTimeout != 15*time.Second {
		t.Fatalf("expected default relay timeout, got %s", cfg.RelayTimeout)
	}
	if cfg.NoticeDuration != 5*time.Second {
		t.Fatalf("expected default notice duration, got %s", cfg.NoticeDuration)
	}
	if cfg.FallbackEmail != "hello@katalux.agency" {
		t.Fatalf("expected default fallback email, got %s", cfg.FallbackEmail)
	}
	if cfg.RateLimitRPS != 1 || cfg.RateLimitBurst != 5 {
		t.Fatalf("unexpected rate limit defaults %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected stub email provider, got %s", cfg.EmailProvider)
	}
	if len(cfg.CORSAllowedOrigins) != 0 || len(cfg.LeadNotifyEmails) != 0 {
		t.Fatalf("expected empty lists, got %v %v", cfg.CORSAllowedOrigins, cfg.LeadNotifyEmails)
	}
	if cfg.TrustProxyHeaders {
		t.Fatal("proxy headers must not be trusted unless configured")
	}
	if cfg.AdminJWTAudience != "katalux-leads-admin" {
		t.Fatalf("expected default admin audience, got %q", cfg.AdminJWTAudience)
	}
	if cfg.FollowUpWorkers != 2 || cfg.FollowUpBacklog != 256 {
		t.Fatalf("unexpected follow-up sizing %d/%d", cfg.FollowUpWorkers, cfg.FollowUpBacklog)
	}
	if cfg.IsProduction() {
		t.Fatal("development should not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("FORM_RELAY_URL", "https://formspree.io/f/abc")
	t.Setenv("RELAY_TIMEOUT", "-1s")
	t.Setenv("NOTICE_DURATION", "2500ms")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("EMAIL_PROVIDER", " SES ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://katalux.agency, ,https://www.katalux.agency")
	t.Setenv("LEAD_NOTIFY_EMAILS", "crew@katalux.agency")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	t.Setenv("ADMIN_JWT_AUDIENCE", "leads-dashboard")
	t.Setenv("FOLLOW_UP_WORKERS", "4")
	cfg := Load()
	if !cfg.TrustProxyHeaders || cfg.AdminJWTAudience != "leads-dashboard" || cfg.FollowUpWorkers != 4 {
		t.Fatalf("unexpected edge overrides %v %q %d", cfg.TrustProxyHeaders, cfg.AdminJWTAudience, cfg.FollowUpWorkers)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production")
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.FormRelayURL != "https://formspree.io/f/abc" {
		t.Fatalf("expected relay override, got %s", cfg.FormRelayURL)
	}
	if cfg.RelayTimeout != -time.Second {
		t.Fatalf("expected negative relay timeout, got %s", cfg.RelayTimeout)
	}
	if cfg.NoticeDuration != 2500*time.Millisecond {
		t.Fatalf("expected notice override, got %s", cfg.NoticeDuration)
	}
	if cfg.RateLimitRPS != 0.5 || cfg.RateLimitBurst != 3 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.EmailProvider != "ses" {
		t.Fatalf("expected normalized provider, got %q", cfg.EmailProvider)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://www.katalux.agency" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.LeadNotifyEmails) != 1 {
		t.Fatalf("unexpected notify list %v", cfg.LeadNotifyEmails)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RELAY_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_BURST", "many")
	t.Setenv("REDIS_TLS", "maybe")
	cfg := Load()
	if cfg.RelayTimeout != 15*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.RelayTimeout)
	}
	if cfg.RateLimitBurst != 5 {
		t.Fatalf("expected fallback burst, got %d", cfg.RateLimitBurst)
	}
	if cfg.RedisTLS {
		t.Fatal("expected redis tls false")
	}
}
