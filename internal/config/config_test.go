package config

import "testing"

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown LLM_PROVIDER")
	}
}

func TestLoad_RejectsMissingKeyForProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing GEMINI_API_KEY")
	}
}

func TestLoad_RejectsBadResolution(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEFAULT_RESOLUTION", "1024")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported resolution")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEFAULT_RESOLUTION", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultFPS != 25 {
		t.Errorf("DefaultFPS = %d, want 25", cfg.DefaultFPS)
	}
	if cfg.DefaultStylePreset != "calm_tech" {
		t.Errorf("DefaultStylePreset = %q, want calm_tech", cfg.DefaultStylePreset)
	}
}
