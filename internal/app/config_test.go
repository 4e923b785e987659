package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ANALYSIS_PROVIDER", "")
	t.Setenv("ANALYSIS_LOCK_TTL_SECONDS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := LoadConfig(nil)
	if cfg.AnalysisProvider != ProviderOpenAI {
		t.Fatalf("AnalysisProvider: got %q", cfg.AnalysisProvider)
	}
	if cfg.LockTTL != 90*time.Second {
		t.Fatalf("LockTTL: got %v", cfg.LockTTL)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ANALYSIS_PROVIDER", "Anthropic")
	t.Setenv("ANALYSIS_LOCK_TTL_SECONDS", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("OTEL_SAMPLE_PERCENT", "25")
	cfg := LoadConfig(nil)
	if cfg.AnalysisProvider != ProviderAnthropic {
		t.Fatalf("AnalysisProvider: got %q", cfg.AnalysisProvider)
	}
	if cfg.LockTTL != 30*time.Second {
		t.Fatalf("LockTTL: got %v", cfg.LockTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
	if cfg.Otel.SampleRatio != 0.25 {
		t.Fatalf("SampleRatio: got %v", cfg.Otel.SampleRatio)
	}
}

func TestLoadConfigUnknownProviderFallsBack(t *testing.T) {
	t.Setenv("ANALYSIS_PROVIDER", "gemini")
	if got := LoadConfig(nil).AnalysisProvider; got != ProviderOpenAI {
		t.Fatalf("AnalysisProvider: got %q", got)
	}
}
