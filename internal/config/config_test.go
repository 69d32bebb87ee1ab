package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadFailsWithoutJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()

	if !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("expected ErrMissingJWTSecret, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()

	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d", cfg.Port)
	}

	if cfg.JWTTTL != 12*time.Hour {
		t.Errorf("JWTTTL = %v", cfg.JWTTTL)
	}

	if cfg.CookieName != "auth-token" {
		t.Errorf("CookieName = %q", cfg.CookieName)
	}

	want := Routes{LoginPath: "/login", AdminPrefix: "/dashboard", ClientPrefix: "/client"}

	if cfg.Routes != want {
		t.Errorf("Routes = %+v", cfg.Routes)
	}
}

func TestRouteOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ROUTE_ADMIN_PREFIX", "/portal/admin")
	t.Setenv("ROUTE_CLIENT_PREFIX", "/portal/client")

	cfg, err := Load()

	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Routes.AdminPrefix != "/portal/admin" || cfg.Routes.ClientPrefix != "/portal/client" {
		t.Fatalf("Routes = %+v", cfg.Routes)
	}
}

func TestDatabaseURLWinsOverParts(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("DB_HOST", "ignored")

	cfg, err := Load()

	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBURL != "postgres://u:p@db:5432/x" {
		t.Fatalf("DBURL = %q", cfg.DBURL)
	}
}
