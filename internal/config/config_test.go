package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != "farmgate" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.API.BaseURL == "" {
		t.Error("API.BaseURL should have a default")
	}
	if cfg.Pricing.DeliveryFlatFee != 4.99 {
		t.Errorf("DeliveryFlatFee = %v, want 4.99", cfg.Pricing.DeliveryFlatFee)
	}
	if cfg.Pricing.FreeDeliveryThreshold != 50.0 {
		t.Errorf("FreeDeliveryThreshold = %v, want 50", cfg.Pricing.FreeDeliveryThreshold)
	}
	if cfg.Pricing.TaxRate != 0.08 {
		t.Errorf("TaxRate = %v, want 0.08", cfg.Pricing.TaxRate)
	}
	if cfg.Logging.DebugMode {
		t.Error("DebugMode should default to off")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if cfg.Pricing.DeliveryFlatFee != 4.99 {
		t.Errorf("missing file should yield defaults, got fee %v", cfg.Pricing.DeliveryFlatFee)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://api.example.com"
	cfg.API.Timeout = "3s"
	cfg.Pricing.TaxRate = 0.10

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.API.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", loaded.API.BaseURL)
	}
	if loaded.Pricing.TaxRate != 0.10 {
		t.Errorf("TaxRate = %v", loaded.Pricing.TaxRate)
	}
	if loaded.RequestTimeout() != 3*time.Second {
		t.Errorf("RequestTimeout = %v", loaded.RequestTimeout())
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on malformed yaml")
	}
}

func TestRequestTimeoutFallback(t *testing.T) {
	tests := []struct {
		timeout string
		want    time.Duration
	}{
		{"5s", 5 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"", 10 * time.Second},
		{"garbage", 10 * time.Second},
		{"-1s", 10 * time.Second},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.API.Timeout = tt.timeout
		if got := cfg.RequestTimeout(); got != tt.want {
			t.Errorf("RequestTimeout(%q) = %v, want %v", tt.timeout, got, tt.want)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FARMGATE_API_BASE_URL", "https://override.example.com")
	t.Setenv("FARMGATE_API_TIMEOUT", "2s")
	t.Setenv("FARMGATE_DEBUG", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://override.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.RequestTimeout() != 2*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout())
	}
	if !cfg.Logging.DebugMode {
		t.Error("FARMGATE_DEBUG=1 should enable debug mode")
	}
}
