// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"log/slog"
	"strings"
	"testing"
)

// allEnvVars lists every variable Load reads.
var allEnvVars = []string{
	"APP_ENV", "LOG_LEVEL",
	"NJYOT_STORE", "NJYOT_DATA_FILE", "NJYOT_SQLITE_PATH", "NJYOT_SNAPSHOT_KEY",
	"NJYOT_EPHEMERAL", "VERCEL", "NJYOT_ADMIN_PASSWORD",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET",
}

// clearEnv sets every variable to "" which envOrDefault treats as unset.
// t.Setenv restores the previous values when the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	check("Env", cfg.Env, "development")
	check("StoreBackend", cfg.StoreBackend, BackendFile)
	check("DataFile", cfg.DataFile, "njyot.json")
	check("SQLitePath", cfg.SQLitePath, "njyot.db")
	check("SnapshotKey", cfg.SnapshotKey, "njyot/snapshot.json")
	check("DBHost", cfg.DBHost, "localhost")
	check("DBPort", cfg.DBPort, "5432")
	check("DBUser", cfg.DBUser, "njyot")
	check("DBPassword", cfg.DBPassword, "changeme")
	check("DBName", cfg.DBName, "njyot")
	check("ValkeyHost", cfg.ValkeyHost, "localhost")
	check("ValkeyPort", cfg.ValkeyPort, "6379")
	check("S3Region", cfg.S3Region, "fsn1")
	check("S3Bucket", cfg.S3Bucket, "njyot")
	check("AdminPassword", cfg.AdminPassword, DefaultAdminPassword)

	if cfg.Ephemeral {
		t.Error("Ephemeral should default to false outside serverless hosts")
	}
	if !cfg.IsDev() {
		t.Error("IsDev() should be true by default")
	}
}

// TestLoad_EnvOverrides verifies that environment variables override the
// defaults.
func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	overrides := map[string]string{
		"APP_ENV":            "testing",
		"NJYOT_STORE":        "SQLite",
		"NJYOT_SQLITE_PATH":  "/var/lib/njyot/shop.db",
		"NJYOT_SNAPSHOT_KEY": "shop/state.json",
		"POSTGRES_HOST":      "db.example.com",
		"POSTGRES_USER":      "shop",
		"VALKEY_PASSWORD":    "secret",
		"S3_BUCKET":          "backups",
	}
	for k, v := range overrides {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Env != "testing" {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Errorf("StoreBackend should be lower-cased, got %q", cfg.StoreBackend)
	}
	if cfg.SQLitePath != "/var/lib/njyot/shop.db" {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
	if cfg.SnapshotKey != "shop/state.json" {
		t.Errorf("SnapshotKey = %q", cfg.SnapshotKey)
	}
	if cfg.DBHost != "db.example.com" || cfg.DBUser != "shop" {
		t.Errorf("postgres overrides not applied: %+v", cfg)
	}
	if cfg.ValkeyPassword != "secret" {
		t.Errorf("ValkeyPassword = %q", cfg.ValkeyPassword)
	}
	if cfg.S3Bucket != "backups" {
		t.Errorf("S3Bucket = %q", cfg.S3Bucket)
	}
}

func TestLoad_Ephemeral(t *testing.T) {
	tests := []struct {
		name      string
		vercel    string
		ephemeral string
		want      bool
		wantErr   bool
	}{
		{name: "local default", want: false},
		{name: "vercel implies ephemeral", vercel: "1", want: true},
		{name: "explicit override on vercel", vercel: "1", ephemeral: "false", want: false},
		{name: "explicit ephemeral", ephemeral: "true", want: true},
		{name: "invalid bool", ephemeral: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("VERCEL", tt.vercel)
			t.Setenv("NJYOT_EPHEMERAL", tt.ephemeral)

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), "NJYOT_EPHEMERAL") {
					t.Errorf("error should name the variable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Ephemeral != tt.want {
				t.Errorf("Ephemeral = %v, want %v", cfg.Ephemeral, tt.want)
			}
		})
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("NJYOT_STORE", "mongodb")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

// TestLoad_ProductionGuards verifies that default credentials are rejected
// in production.
func TestLoad_ProductionGuards(t *testing.T) {
	t.Run("default admin password", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "NJYOT_ADMIN_PASSWORD") {
			t.Fatalf("expected admin password error, got %v", err)
		}
	})

	t.Run("default postgres password", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("NJYOT_ADMIN_PASSWORD", "s3cret!")
		t.Setenv("NJYOT_STORE", "postgres")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
			t.Fatalf("expected postgres password error, got %v", err)
		}
	})

	t.Run("file backend with admin password", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("NJYOT_ADMIN_PASSWORD", "s3cret!")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.IsDev() {
			t.Error("IsDev() should be false in production")
		}
	})
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "1", DBName: "d"}
	want := "postgres://u:p@h:1/d?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		env   string
		level string
		want  slog.Level
	}{
		{"development", "", slog.LevelDebug},
		{"production", "", slog.LevelInfo},
		{"production", "debug", slog.LevelDebug},
		{"development", "WARN", slog.LevelWarn},
		{"development", "error", slog.LevelError},
		{"testing", "bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{Env: tt.env, LogLevel: tt.level}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(env=%q, level=%q) = %v, want %v", tt.env, tt.level, got, tt.want)
		}
	}
}
