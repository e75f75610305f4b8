package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("NOTIFY_FORWARD_EVENTS", "")
	t.Setenv("NOTIFY_CHANNEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != "8069" {
		t.Errorf("Port = %q, want 8069", cfg.App.Port)
	}
	if cfg.Classifier.ModelEnabled() {
		t.Error("model should be disabled without OPENAI_API_KEY")
	}
	if cfg.Classifier.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %q", cfg.Classifier.Model)
	}
	if !cfg.Notification.ForwardEvents || cfg.Notification.Channel != "helpdesk.ticket-events" {
		t.Errorf("Notification = %+v", cfg.Notification)
	}
	if cfg.Support.DefaultActorID != SystemUserID {
		t.Errorf("DefaultActorID = %q", cfg.Support.DefaultActorID)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MAX_TOKENS", "64")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Classifier.ModelEnabled() {
		t.Error("model should be enabled")
	}
	if cfg.Classifier.MaxTokens != 64 {
		t.Errorf("MaxTokens = %d, want 64", cfg.Classifier.MaxTokens)
	}
	if got := cfg.App.RequestTimeout(); got != 5*time.Second {
		t.Errorf("RequestTimeout = %v", got)
	}
}

func TestLoadRejectsBadTemperature(t *testing.T) {
	t.Setenv("OPENAI_TEMPERATURE", "warm")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid OPENAI_TEMPERATURE")
	}
}
