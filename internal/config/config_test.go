package config

import (
	"flag"
	"io"
	"os"
	"testing"
	"time"
)

func loadWithArgs(t *testing.T, args ...string) *Config {
	t.Helper()

	if len(args) == 0 {
		args = []string{"test"}
	}

	oldCommandLine := flag.CommandLine
	oldArgs := os.Args

	flag.CommandLine = flag.NewFlagSet(args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
	os.Args = args

	t.Cleanup(func() {
		flag.CommandLine = oldCommandLine
		os.Args = oldArgs
	})

	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadWithArgs(t, "test")

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.Server.HTTPAddr)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Database.Database != "videa" {
		t.Errorf("Database.Database = %q, want videa", cfg.Database.Database)
	}
	if cfg.Auth.JWTIssuer != "videa" {
		t.Errorf("Auth.JWTIssuer = %q, want videa", cfg.Auth.JWTIssuer)
	}
	if cfg.LLM.RunTimeout != time.Minute {
		t.Errorf("LLM.RunTimeout = %v, want 1m", cfg.LLM.RunTimeout)
	}
	if cfg.LLM.PollInterval != time.Second {
		t.Errorf("LLM.PollInterval = %v, want 1s", cfg.LLM.PollInterval)
	}
}

func TestLoad_Flags(t *testing.T) {
	cfg := loadWithArgs(t, "test",
		"-http", ":9000",
		"-cache-backend", "redis",
		"-cache-ttl", "30m",
		"-db-name", "videa_staging",
	)

	if cfg.Server.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Database.Database != "videa_staging" {
		t.Errorf("Database.Database = %q", cfg.Database.Database)
	}
}

func TestLoad_EnvOverridesFlags(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("CACHE_TTL", "2h")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := loadWithArgs(t, "test", "-http", ":9000")

	if cfg.Server.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q, want env to win", cfg.Server.HTTPAddr)
	}
	if cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("Database.Port = %d", cfg.Database.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_APIKeys(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("OPENAI_ASSISTANT_ID", "asst_123")
	t.Setenv("AUTH_JWT_SECRET", "super-secret")

	cfg := loadWithArgs(t, "test")

	if cfg.YouTube.APIKey != "yt-key" {
		t.Errorf("YouTube.APIKey = %q", cfg.YouTube.APIKey)
	}
	if cfg.LLM.APIKey != "oa-key" {
		t.Errorf("LLM.APIKey = %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.AssistantID != "asst_123" {
		t.Errorf("LLM.AssistantID = %q", cfg.LLM.AssistantID)
	}
	if cfg.Auth.JWTSecret != "super-secret" {
		t.Errorf("Auth.JWTSecret = %q", cfg.Auth.JWTSecret)
	}
}

func TestLoad_InvalidDurationIgnored(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg := loadWithArgs(t, "test")

	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want default 1h", cfg.Cache.TTL)
	}
}
