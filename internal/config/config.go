package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the YAML config file.
const FileName = ".testhtml.yaml"

// Constants for default values.
const (
	DefaultReportPath             = "report.html"
	DefaultMaxAssetFilenameLength = 255
	DefaultANSI                   = "html"
	DefaultThemeName              = "default"
)

// CliFlags holds the values of command-line flags.
type CliFlags struct {
	ReportPath    string
	SelfContained bool
	CSS           []string
	Title         string
	Collapsed     string
	ANSI          string
	ThemeName     string

	// Flags to track if they were explicitly set by the user
	ReportPathSet    bool
	SelfContainedSet bool
	TitleSet         bool
	CollapsedSet     bool
	ANSISet          bool
}

// AppConfig represents the contents of .testhtml.yaml.
type AppConfig struct {
	ReportPath             string         `yaml:"report_path"`
	SelfContainedHTML      bool           `yaml:"self_contained_html"`
	CSS                    []string       `yaml:"css"`
	RedactList             []string       `yaml:"environment_table_redact_list"`
	MaxAssetFilenameLength *int           `yaml:"max_asset_filename_length"`
	RenderCollapsed        string         `yaml:"render_collapsed"`
	Title                  string         `yaml:"title"`
	ANSI                   string         `yaml:"ansi"`
	Metadata               map[string]any `yaml:"metadata"`
	Theme                  string         `yaml:"theme"`
}

// LoadConfig reads the first config file found. It returns an empty config
// and no path when there is none.
func LoadConfig() (*AppConfig, string, error) {
	appCfg := &AppConfig{}

	configPath := getConfigPath()
	if configPath == "" {
		slog.Debug("no config file found, using defaults")
		return appCfg, "", nil
	}

	yamlFile, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return appCfg, "", nil
		}
		return nil, configPath, fmt.Errorf("reading config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(yamlFile, appCfg); err != nil {
		return nil, configPath, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}
	slog.Debug("loaded config", "path", configPath)
	return appCfg, configPath, nil
}

// getConfigPath tries to find the config file in the working directory
// first, then under the user config directory.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		slog.Debug("user config dir unavailable", "err", err, "path", configHome)
		return ""
	}
	xdgPath := filepath.Join(configHome, "testhtml", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
