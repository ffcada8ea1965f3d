package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "ENV", "OBJECT_STORE", "LLM_PROVIDER", "MAX_UPLOAD_BYTES", "PARSE_TIMEOUT", "OCR_LANG"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" || cfg.Env != "dev" || cfg.ObjectStoreType != "local" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected openai provider, got %q", cfg.LLMProvider)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.ParseTimeout != 90*time.Second {
		t.Fatalf("expected 90s parse timeout, got %s", cfg.ParseTimeout)
	}
	if cfg.OCRLang != "eng" {
		t.Fatalf("expected eng OCR language, got %q", cfg.OCRLang)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("PARSE_TIMEOUT", "45")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.Env != "production" || cfg.ObjectStoreType != "s3" || cfg.LLMProvider != "gemini" {
		t.Fatalf("unexpected normalization: %+v", cfg)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
	if cfg.MaxUploadBytes != 2048 {
		t.Fatalf("unexpected upload limit %d", cfg.MaxUploadBytes)
	}
	if cfg.ParseTimeout != 45*time.Second {
		t.Fatalf("unexpected parse timeout %s", cfg.ParseTimeout)
	}
	if cfg.OpenAITimeout != 60*time.Second {
		t.Fatalf("expected invalid timeout to fall back, got %s", cfg.OpenAITimeout)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "LLM_MODEL=gpt-4o-mini\nPORT=9999\n# comment\nOCR_LANG=\"deu\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("OCR_LANG", "")
	os.Unsetenv("LLM_MODEL")
	os.Unsetenv("OCR_LANG")

	cfg := Load()
	if cfg.Port != "7000" {
		t.Fatalf("environment should win over .env, got %q", cfg.Port)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Fatalf("expected model from .env, got %q", cfg.LLMModel)
	}
	if cfg.OCRLang != "deu" {
		t.Fatalf("expected quoted value to be unwrapped, got %q", cfg.OCRLang)
	}
}
