package config

import (
	"os"
	"testing"
)

func TestGet_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_SSL_MODE", "")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("RATE_LIMIT_REQUESTS", "")
	t.Setenv("CRON_ENABLED", "")
	t.Setenv("GO_ENV", "")

	env, err := Get()
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if env.PORT != 8080 {
		t.Errorf("expected default port 8080, got %d", env.PORT)
	}
	if env.DB_HOST != "localhost" || env.DB_PORT != "5432" || env.DB_SSL_MODE != "disable" {
		t.Errorf("unexpected database defaults: %s:%s sslmode=%s", env.DB_HOST, env.DB_PORT, env.DB_SSL_MODE)
	}
	if env.JWT_ISSUER != "school-admin-api" {
		t.Errorf("unexpected issuer %q", env.JWT_ISSUER)
	}
	if env.RATE_LIMIT_REQUESTS != 100 {
		t.Errorf("expected rate limit 100, got %d", env.RATE_LIMIT_REQUESTS)
	}
	if !env.CRON_ENABLED {
		t.Error("cron should be enabled by default")
	}
	if env.IsProduction() {
		t.Error("empty GO_ENV must not be production")
	}
}

func TestGet_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CRON_ENABLED", "false")
	t.Setenv("GO_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://school:secret@db:5432/school")

	env, err := Get()
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if env.PORT != 9090 {
		t.Errorf("expected port 9090, got %d", env.PORT)
	}
	if env.CRON_ENABLED {
		t.Error("cron should be disabled")
	}
	if !env.IsProduction() {
		t.Error("expected production mode")
	}
	if env.DATABASE_URL != "postgres://school:secret@db:5432/school" {
		t.Errorf("unexpected DATABASE_URL %q", env.DATABASE_URL)
	}
}

func TestLoadENV_MissingFileIsTolerated(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if err := LoadENV(); err != nil {
		t.Fatalf("LoadENV should tolerate a missing .env, got %v", err)
	}
}
