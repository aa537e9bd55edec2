package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Threshold != 0.8 {
		t.Errorf("Threshold = %v, want 0.8", cfg.Threshold)
	}
	if cfg.MinKeywords != 10 {
		t.Errorf("MinKeywords = %d, want 10", cfg.MinKeywords)
	}
	if cfg.ServerPort != "8090" {
		t.Errorf("ServerPort = %q, want 8090", cfg.ServerPort)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PAGINAS_THRESHOLD", "0.65")
	t.Setenv("PAGINAS_MIN_KEYWORDS", "5")
	t.Setenv("PAGINAS_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Threshold != 0.65 {
		t.Errorf("Threshold = %v, want 0.65", cfg.Threshold)
	}
	if cfg.MinKeywords != 5 {
		t.Errorf("MinKeywords = %d, want 5", cfg.MinKeywords)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("PAGINAS_THRESHOLD", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("Load() with bad threshold should fail")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "threshold: 0.5\nmin_keywords: 3\nserver_port: \"9999\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PAGINAS_CONFIG", path)
	t.Setenv("PAGINAS_MIN_KEYWORDS", "7") // env beats file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Threshold != 0.5 {
		t.Errorf("Threshold = %v, want file value 0.5", cfg.Threshold)
	}
	if cfg.ServerPort != "9999" {
		t.Errorf("ServerPort = %q, want file value 9999", cfg.ServerPort)
	}
	if cfg.MinKeywords != 7 {
		t.Errorf("MinKeywords = %d, want env value 7", cfg.MinKeywords)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("PAGINAS_CONFIG", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Error("Load() with missing config file should fail")
	}
}
