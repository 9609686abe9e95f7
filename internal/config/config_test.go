package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.AuthCookieName != "Authentication" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		wantOK bool
	}{
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres", "JWT_SECRET": "s"}, false},
		{"postgres with url", map[string]string{"DB_DRIVER": "postgres", "DATABASE_URL": "postgres://x", "JWT_SECRET": "s"}, true},
		{"sqlite", map[string]string{"DB_DRIVER": "SQLite", "JWT_SECRET": "s"}, true},
		{"unknown driver", map[string]string{"DB_DRIVER": "mongo", "JWT_SECRET": "s"}, false},
		{"missing secret", map[string]string{"DB_DRIVER": "memory", "JWT_SECRET": ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if (err == nil) != tt.wantOK {
				t.Fatalf("Load err = %v, wantOK %v", err, tt.wantOK)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Setenv("X_DUR", "90")
	t.Setenv("X_LIST", " a, ,b ")
	t.Setenv("X_INT", "nope")

	if got := getDuration("X_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("getDuration = %v", got)
	}
	if got := getList("X_LIST", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("getList = %v", got)
	}
	if got := getInt("X_INT", 7); got != 7 {
		t.Fatalf("getInt = %d", got)
	}
}
