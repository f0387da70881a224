package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port == 0 {
		t.Error("expected non-zero default server port")
	}
	if cfg.Progress.Backend != "memory" {
		t.Errorf("default progress backend = %q, want memory", cfg.Progress.Backend)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
}

func TestValidateRejectsUnknownProgressBackend(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg.Progress.Backend = "etcd"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown progress backend")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "40123")
	t.Setenv("PROGRESS_BACKEND", "valkey")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 40123 {
		t.Errorf("server port = %d, want 40123", cfg.Server.Port)
	}
	if cfg.Progress.Backend != "valkey" {
		t.Errorf("progress backend = %q, want valkey", cfg.Progress.Backend)
	}
}
