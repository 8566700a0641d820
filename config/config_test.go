package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/accounts?parseTime=true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_RequiresMySQLDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when MYSQL_DSN is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/accounts?parseTime=true")
	t.Setenv("SESSION_TOKEN_TTL", "")
	t.Setenv("RESET_TOKEN_TTL", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("PASSWORD_MIN_LENGTH", "")
	t.Setenv("MAIL_FROM_NAME", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.JWT.SessionTTL != 30*time.Minute {
		t.Errorf("expected default session TTL of 30m, got %v", cfg.JWT.SessionTTL)
	}
	if cfg.Tokens.ResetTTL != time.Hour {
		t.Errorf("expected default reset TTL of 1h, got %v", cfg.Tokens.ResetTTL)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.HTTP.Port)
	}
	if cfg.Password.Policy.MinLength != 8 {
		t.Errorf("expected default min length 8, got %d", cfg.Password.Policy.MinLength)
	}
	if cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != "587" {
		t.Errorf("unexpected mail defaults: %q:%q", cfg.Mail.Host, cfg.Mail.Port)
	}
	if !cfg.Mail.StartTLS {
		t.Error("expected STARTTLS enabled by default")
	}
	if cfg.Mail.FrontendURL != "http://localhost:8081" {
		t.Errorf("unexpected frontend URL default: %q", cfg.Mail.FrontendURL)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %q/%q", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/accounts?parseTime=true")
	t.Setenv("SESSION_TOKEN_TTL", "15")
	t.Setenv("RESET_TOKEN_TTL", "120")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PASSWORD_MIN_LENGTH", "12")
	t.Setenv("PASSWORD_REQUIRE_NUMBER", "true")
	t.Setenv("MAIL_STARTTLS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.JWT.SessionTTL != 15*time.Minute {
		t.Errorf("expected session TTL 15m, got %v", cfg.JWT.SessionTTL)
	}
	if cfg.Tokens.ResetTTL != 2*time.Hour {
		t.Errorf("expected reset TTL 2h, got %v", cfg.Tokens.ResetTTL)
	}
	if cfg.HTTP.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.HTTP.Port)
	}
	if cfg.Password.Policy.MinLength != 12 || !cfg.Password.Policy.RequireNumber {
		t.Errorf("unexpected password policy: %+v", cfg.Password.Policy)
	}
	if cfg.Mail.StartTLS {
		t.Error("expected STARTTLS disabled")
	}
	if cfg.DSN() != "user:pass@tcp(db:3306)/accounts?parseTime=true" {
		t.Errorf("unexpected DSN: %q", cfg.DSN())
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/accounts?parseTime=true")
	t.Setenv("SESSION_TOKEN_TTL", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWT.SessionTTL != 30*time.Minute {
		t.Errorf("expected fallback to 30m, got %v", cfg.JWT.SessionTTL)
	}
}

func TestPasswordPolicy_MinLength(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8}

	if err := policy.Validate("short"); err == nil {
		t.Fatal("expected error for short password")
	}
	if err := policy.Validate("exactly8"); err != nil {
		t.Fatalf("expected 8-character password to pass, got %v", err)
	}
}

func TestPasswordPolicy_CharacterClasses(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
		RequireSpecial:   true,
	}

	if err := policy.Validate("alllowercase"); err == nil {
		t.Fatal("expected error for password missing classes")
	}
	if err := policy.Validate("Valid1pass!"); err != nil {
		t.Fatalf("expected compliant password to pass, got %v", err)
	}
}

func TestPasswordPolicy_NoClassRequirements(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8}

	if err := policy.Validate("lowercaseonly"); err != nil {
		t.Fatalf("expected password to pass with no class requirements, got %v", err)
	}
}
