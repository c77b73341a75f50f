package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"TASKVAULT_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TASKVAULT_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":5000" || cfg.Store != StoreSQLite || cfg.SuggestTimeout != 4*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadReadsDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TASKVAULT_SUGGEST_TIMEOUT=2s\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	t.Setenv("TASKVAULT_SUGGEST_TIMEOUT", "")
	os.Unsetenv("TASKVAULT_SUGGEST_TIMEOUT")
	t.Cleanup(func() { os.Unsetenv("TASKVAULT_SUGGEST_TIMEOUT") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SuggestTimeout != 2*time.Second {
		t.Fatalf("expected timeout from dotenv, got %v", cfg.SuggestTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Store: StoreSQLite, DBPath: "x.db", SuggestTimeout: time.Second}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	mongo := base
	mongo.Store = StoreMongo
	if err := mongo.Validate(); err == nil {
		t.Error("expected mongo without uri to fail")
	}

	unknown := base
	unknown.Store = "redis"
	if err := unknown.Validate(); err == nil {
		t.Error("expected unknown store to fail")
	}
}

func TestValidateOrigins(t *testing.T) {
	base := Config{Store: StoreSQLite, DBPath: "x.db", SuggestTimeout: time.Second}

	tests := []struct {
		name     string
		origins  []string
		frontend string
		wantErr  bool
	}{
		{"defaults", []string{"http://localhost:3000", "http://localhost:5173"}, "", false},
		{"https frontend", nil, "https://vault.example.com/", false},
		{"frontend without scheme", nil, "example.com", true},
		{"origin without scheme", []string{"http://localhost:3000", "localhost:5173"}, "", true},
		{"unsupported scheme", []string{"ftp://files.example.com"}, "", true},
		{"scheme only", []string{"https://"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.CORSOrigins = tt.origins
			cfg.FrontendURL = tt.frontend
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: []string{"http://localhost:3000", " "}, FrontendURL: "https://vault.example.com/"}
	want := []string{"http://localhost:3000", "https://vault.example.com"}
	if got := cfg.AllowedOrigins(); !reflect.DeepEqual(got, want) {
		t.Fatalf("AllowedOrigins() = %v, want %v", got, want)
	}
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	Config{LogLevel: "debug", LogFormat: "json"}.NewLogger(&buf).Debug("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
}
