package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/dkoosis/testhtml/pkg/htmlutil"
)

// Sources recorded on ResolvedConfig.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// ResolvedConfig holds the final configuration after applying all
// priority rules.
type ResolvedConfig struct {
	ReportPath             string
	SelfContained          bool
	CSS                    []string
	RedactList             []string
	MaxAssetFilenameLength int
	RenderCollapsed        string
	Title                  string
	ANSI                   htmlutil.ANSIMode
	Metadata               map[string]any
	ThemeName              string
	NoColor                bool
	Debug                  bool

	// Resolution metadata (for debugging)
	ConfigPath          string
	ReportPathSource    string
	SelfContainedSource string
}

// ResolveConfig resolves configuration from all sources with explicit
// priority order: CLI > environment > file > defaults.
func ResolveConfig(cliFlags CliFlags) (*ResolvedConfig, error) {
	appCfg, path, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return resolve(cliFlags, appCfg, path)
}

func resolve(cliFlags CliFlags, appCfg *AppConfig, path string) (*ResolvedConfig, error) {
	resolved := &ResolvedConfig{
		ReportPath:             DefaultReportPath,
		MaxAssetFilenameLength: DefaultMaxAssetFilenameLength,
		ThemeName:              DefaultThemeName,
		Metadata:               map[string]any{},
		ConfigPath:             path,
		ReportPathSource:       SourceDefault,
		SelfContainedSource:    SourceDefault,
	}
	ansi := DefaultANSI

	// File
	if appCfg.ReportPath != "" {
		resolved.ReportPath = appCfg.ReportPath
		resolved.ReportPathSource = SourceFile
	}
	if appCfg.SelfContainedHTML {
		resolved.SelfContained = true
		resolved.SelfContainedSource = SourceFile
	}
	resolved.CSS = appCfg.CSS
	resolved.RedactList = appCfg.RedactList
	if appCfg.MaxAssetFilenameLength != nil {
		resolved.MaxAssetFilenameLength = *appCfg.MaxAssetFilenameLength
	}
	resolved.RenderCollapsed = appCfg.RenderCollapsed
	resolved.Title = appCfg.Title
	if appCfg.ANSI != "" {
		ansi = appCfg.ANSI
	}
	for k, v := range appCfg.Metadata {
		resolved.Metadata[k] = v
	}
	if appCfg.Theme != "" {
		resolved.ThemeName = appCfg.Theme
	}

	// Environment
	if v := os.Getenv("TESTHTML_REPORT"); v != "" {
		resolved.ReportPath = v
		resolved.ReportPathSource = SourceEnv
	}
	if b := getEnvBool("TESTHTML_SELF_CONTAINED"); b != nil {
		resolved.SelfContained = *b
		resolved.SelfContainedSource = SourceEnv
	}
	resolved.Debug = os.Getenv("TESTHTML_DEBUG") != ""
	resolved.NoColor = os.Getenv("NO_COLOR") != ""

	// CLI
	if cliFlags.ReportPathSet {
		resolved.ReportPath = cliFlags.ReportPath
		resolved.ReportPathSource = SourceCLI
	}
	if cliFlags.SelfContainedSet {
		resolved.SelfContained = cliFlags.SelfContained
		resolved.SelfContainedSource = SourceCLI
	}
	if len(cliFlags.CSS) > 0 {
		resolved.CSS = cliFlags.CSS
	}
	if cliFlags.TitleSet {
		resolved.Title = cliFlags.Title
	}
	if cliFlags.CollapsedSet {
		resolved.RenderCollapsed = cliFlags.Collapsed
	}
	if cliFlags.ANSISet {
		ansi = cliFlags.ANSI
	}
	if cliFlags.ThemeName != "" {
		resolved.ThemeName = cliFlags.ThemeName
	}
	if resolved.NoColor {
		resolved.ThemeName = "mono"
	}

	mode, err := htmlutil.ParseANSIMode(ansi)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	resolved.ANSI = mode

	if err := validateResolvedConfig(resolved); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return resolved, nil
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set to a parseable value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

// validateResolvedConfig validates the resolved configuration and returns errors for invalid states.
func validateResolvedConfig(cfg *ResolvedConfig) error {
	if cfg.ReportPath == "" {
		return errors.New("report path cannot be empty")
	}
	if cfg.MaxAssetFilenameLength <= 0 {
		return fmt.Errorf("max_asset_filename_length must be positive, got: %d", cfg.MaxAssetFilenameLength)
	}
	for _, p := range cfg.RedactList {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid environment_table_redact_list entry %q: %w", p, err)
		}
	}
	validThemes := map[string]bool{"default": true, "orca": true, "mono": true}
	if !validThemes[cfg.ThemeName] {
		return fmt.Errorf("invalid theme value: %s (must be: default, orca, mono)", cfg.ThemeName)
	}
	return nil
}
