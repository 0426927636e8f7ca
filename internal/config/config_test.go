package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDecodeDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cfg.Dynamic {
		t.Fatalf("expected dynamic mode on by default")
	}
	if cfg.DefaultSource != "prologue" {
		t.Fatalf("DefaultSource = %q", cfg.DefaultSource)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected no timeout by default, got %v", cfg.HTTPTimeout)
	}
	if cfg.StorageType != "none" {
		t.Fatalf("StorageType = %q", cfg.StorageType)
	}
	if cfg.StorageCleanupInterval != 12*time.Hour {
		t.Fatalf("StorageCleanupInterval = %v", cfg.StorageCleanupInterval)
	}
}

func TestDecodeOverridesTimeoutAndMode(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("http_timeout_seconds", 20)
	v.Set("dynamic", false)

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.HTTPTimeout != 20*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.Dynamic {
		t.Fatalf("expected dynamic mode off")
	}
}

func TestDecodeRejectsInvalidValues(t *testing.T) {
	cases := map[string]any{
		"http_timeout_seconds": -1,
		"storage_ttl_seconds":  0,
		"default_source":       "  ",
		"http_addr":            "",
		"log_output":           "syslog",
	}
	for key, val := range cases {
		v := viper.New()
		setDefaults(v)
		v.Set(key, val)
		if _, err := decode(v); err == nil {
			t.Errorf("expected error for %s=%v", key, val)
		}
	}
}
