package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Negotiation.MessageBudget != 50 {
		t.Errorf("MessageBudget = %d, want 50", cfg.Negotiation.MessageBudget)
	}
	if cfg.Negotiation.RetryBound != 2 {
		t.Errorf("RetryBound = %d, want 2", cfg.Negotiation.RetryBound)
	}
	if cfg.Negotiation.AgreementMarker != "【合意確定】" {
		t.Errorf("AgreementMarker = %q", cfg.Negotiation.AgreementMarker)
	}
	if cfg.Negotiation.FinalPlanMarker != "【最終合意プラン】" {
		t.Errorf("FinalPlanMarker = %q", cfg.Negotiation.FinalPlanMarker)
	}
	if len(cfg.Negotiation.AffirmPhrases) != 3 {
		t.Errorf("AffirmPhrases = %v, want 3 phrases", cfg.Negotiation.AffirmPhrases)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Server.Addr = %q, want :8000", cfg.Server.Addr)
	}
}

func TestOverride(t *testing.T) {
	viper.Reset()
	SetDefaults()
	viper.Set("negotiation.message_budget", 6)
	viper.Set("negotiation.retry_bound", 0)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Negotiation.MessageBudget != 6 {
		t.Errorf("MessageBudget = %d, want 6", cfg.Negotiation.MessageBudget)
	}
	if cfg.Negotiation.RetryBound != 0 {
		t.Errorf("RetryBound = %d, want 0", cfg.Negotiation.RetryBound)
	}
}

func TestCompletionTimeout(t *testing.T) {
	c := CompletionConfig{TimeoutSeconds: 30}
	if c.Timeout().Seconds() != 30 {
		t.Errorf("Timeout = %v, want 30s", c.Timeout())
	}
	c.TimeoutSeconds = 0
	if c.Timeout().Seconds() != 120 {
		t.Errorf("zero timeout should default to 120s, got %v", c.Timeout())
	}
}
