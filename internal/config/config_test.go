package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfigFile(t *testing.T) {
	cfg, err := Load("../../config")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("expected API port 8080, got %d", cfg.API.Port)
	}
	if cfg.API.MaxUploadSize != 10485760 {
		t.Errorf("expected max upload size 10485760, got %d", cfg.API.MaxUploadSize)
	}
	if len(cfg.API.CORSOrigins) != 2 {
		t.Errorf("expected 2 CORS origins, got %v", cfg.API.CORSOrigins)
	}
	if cfg.Database.PoolMax != 10 {
		t.Errorf("expected pool max 10, got %d", cfg.Database.PoolMax)
	}
	if cfg.Database.ConnectTimeout != 5*time.Second {
		t.Errorf("expected connect timeout 5s, got %v", cfg.Database.ConnectTimeout)
	}
	if cfg.Assets.Folder != "newsletters" {
		t.Errorf("expected assets folder newsletters, got %s", cfg.Assets.Folder)
	}
	if cfg.Mail.Provider != "stdout" {
		t.Errorf("expected mail provider stdout, got %s", cfg.Mail.Provider)
	}
	if cfg.Broadcast.Concurrency != 16 {
		t.Errorf("expected broadcast concurrency 16, got %d", cfg.Broadcast.Concurrency)
	}
	if cfg.Broadcast.DeliveryTimeout != 30*time.Second {
		t.Errorf("expected delivery timeout 30s, got %v", cfg.Broadcast.DeliveryTimeout)
	}
	if cfg.Auth.TokenExpiry != time.Hour {
		t.Errorf("expected token expiry 1h, got %v", cfg.Auth.TokenExpiry)
	}
}

func TestLoad_DefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	content := []byte("api:\n  port: 9090\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("expected API port 9090, got %d", cfg.API.Port)
	}
	if cfg.Broadcast.Concurrency != 16 {
		t.Errorf("expected default concurrency 16, got %d", cfg.Broadcast.Concurrency)
	}
	if cfg.Broadcast.DeliveryTimeout != 30*time.Second {
		t.Errorf("expected default delivery timeout 30s, got %v", cfg.Broadcast.DeliveryTimeout)
	}
	if cfg.Assets.Type != "local" {
		t.Errorf("expected default assets type local, got %s", cfg.Assets.Type)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if cfg.Assets.PublicBaseURL != "http://localhost:9090/uploads" {
		t.Errorf("expected derived public base url, got %q", cfg.Assets.PublicBaseURL)
	}
}

func TestLoad_PublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"explicit host", "api:\n  host: news.example.com\n  port: 8443\n", "http://news.example.com:8443/uploads"},
		{"configured url kept", "assets:\n  public_base_url: https://cdn.example.com/u\n", "https://cdn.example.com/u"},
		{"s3 not derived", "assets:\n  type: s3\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.yaml), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			cfg, err := Load(dir)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cfg.Assets.PublicBaseURL != tt.want {
				t.Errorf("public base url = %q, want %q", cfg.Assets.PublicBaseURL, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("NEWSLETTER_DATABASE_URL", "postgres://override@db:5432/news")
	t.Setenv("NEWSLETTER_MAIL_PROVIDER", "ses")
	t.Setenv("NEWSLETTER_BROADCAST_CONCURRENCY", "4")

	cfg, err := Load("../../config")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Database.URL != "postgres://override@db:5432/news" {
		t.Errorf("expected overridden database URL, got %s", cfg.Database.URL)
	}
	if cfg.Mail.Provider != "ses" {
		t.Errorf("expected overridden mail provider ses, got %s", cfg.Mail.Provider)
	}
	if cfg.Broadcast.Concurrency != 4 {
		t.Errorf("expected overridden concurrency 4, got %d", cfg.Broadcast.Concurrency)
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
