package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate runs the test in an empty working directory with a private user
// config dir and no testhtml environment.
func isolate(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Chdir(tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tempDir, "home"))
	for _, k := range []string{"TESTHTML_REPORT", "TESTHTML_SELF_CONTAINED", "TESTHTML_DEBUG", "NO_COLOR"} {
		t.Setenv(k, "")
	}
	return tempDir
}

func TestGetConfigPath_ReturnsLocalConfig_When_FileExists(t *testing.T) {
	tempDir := isolate(t)
	if err := os.WriteFile(filepath.Join(tempDir, FileName), []byte("title: test\n"), 0o600); err != nil {
		t.Fatalf("failed to write local config: %v", err)
	}

	if got := getConfigPath(); got != FileName {
		t.Fatalf("expected local config path, got %q", got)
	}
}

func TestGetConfigPath_UsesXDGPath_When_LocalMissing(t *testing.T) {
	tempDir := isolate(t)
	configHome := filepath.Join(tempDir, "xdg", "testhtml")
	if err := os.MkdirAll(configHome, 0o755); err != nil {
		t.Fatalf("failed to create XDG config directory: %v", err)
	}
	configPath := filepath.Join(configHome, FileName)
	if err := os.WriteFile(configPath, []byte("title: xdg\n"), 0o600); err != nil {
		t.Fatalf("failed to write XDG config: %v", err)
	}

	if got := getConfigPath(); got != configPath {
		t.Fatalf("expected XDG config path %q, got %q", configPath, got)
	}
}

func TestGetConfigPath_Empty_When_NoConfig(t *testing.T) {
	isolate(t)
	if got := getConfigPath(); got != "" {
		t.Fatalf("expected no config path, got %q", got)
	}
}

func TestLoadConfig_ParsesEveryKey(t *testing.T) {
	tempDir := isolate(t)
	yml := `report_path: out/r.html
self_contained_html: true
css: [a.css, b.css]
environment_table_redact_list: ["^SECRET", "TOKEN"]
max_asset_filename_length: 32
render_collapsed: failed,error
title: Nightly
ansi: strip
metadata:
  Branch: main
  Build: 42
theme: orca
`
	if err := os.WriteFile(filepath.Join(tempDir, FileName), []byte(yml), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, path, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if path != FileName {
		t.Errorf("path = %q", path)
	}
	if cfg.ReportPath != "out/r.html" || !cfg.SelfContainedHTML || cfg.Title != "Nightly" || cfg.ANSI != "strip" || cfg.Theme != "orca" {
		t.Errorf("scalar keys not loaded: %+v", cfg)
	}
	if len(cfg.CSS) != 2 || len(cfg.RedactList) != 2 {
		t.Errorf("list keys not loaded: %+v", cfg)
	}
	if cfg.MaxAssetFilenameLength == nil || *cfg.MaxAssetFilenameLength != 32 {
		t.Errorf("max_asset_filename_length = %v", cfg.MaxAssetFilenameLength)
	}
	if cfg.RenderCollapsed != "failed,error" {
		t.Errorf("render_collapsed = %q", cfg.RenderCollapsed)
	}
	if cfg.Metadata["Branch"] != "main" || cfg.Metadata["Build"] != 42 {
		t.Errorf("metadata = %v", cfg.Metadata)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tempDir := isolate(t)
	if err := os.WriteFile(filepath.Join(tempDir, FileName), []byte("css: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}
